// Package validator は入力チェック。クライアントのusecaseとstoreapiのserviceで共通
package validator

import (
	"errors"
	"regexp"
	"strings"
)

const (
	MinAge            = 18
	MinPasswordLength = 8
)

var (
	ErrInvalidEmail     = errors.New("invalid email")
	ErrPasswordRequired = errors.New("password required")
	ErrPasswordTooShort = errors.New("password too short")
	ErrNameRequired     = errors.New("first name and last name required")
	ErrUnderage         = errors.New("must be at least 18 years old")
	ErrTitleRequired    = errors.New("title required")
	ErrCodeRequired     = errors.New("code required")
	ErrInvalidPrice     = errors.New("price must be >= 0")
	ErrInvalidStock     = errors.New("stock must be >= 0")
	ErrInvalidQuantity  = errors.New("quantity must be >= 1")
	ErrInvalidRole      = errors.New("invalid role")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// 簡易メール形式
func IsEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// ログインの入力を検証
func ValidateLogin(email, password string) error {
	if !IsEmail(email) {
		return ErrInvalidEmail
	}
	if password == "" {
		return ErrPasswordRequired
	}
	return nil
}

// 会員登録の入力を検証
func ValidateRegister(firstName, lastName, email, password string, age int, role string) error {
	if err := ValidateProfile(firstName, lastName, age); err != nil {
		return err
	}
	if !IsEmail(email) {
		return ErrInvalidEmail
	}
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	switch role {
	case "", "user", "admin":
	default:
		return ErrInvalidRole
	}
	return nil
}

// プロフィール（名前・苗字必須、18歳以上）
func ValidateProfile(firstName, lastName string, age int) error {
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return ErrNameRequired
	}
	if age < MinAge {
		return ErrUnderage
	}
	return nil
}

// 商品の作成・更新
func ValidateProduct(title, code string, price float64, stock int) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(code) == "" {
		return ErrCodeRequired
	}
	if price < 0 {
		return ErrInvalidPrice
	}
	if stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

func ValidateQuantity(qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

// IsValidationは上のどれかならtrue
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidEmail, ErrPasswordRequired, ErrPasswordTooShort, ErrNameRequired, ErrUnderage,
		ErrTitleRequired, ErrCodeRequired, ErrInvalidPrice, ErrInvalidStock, ErrInvalidQuantity, ErrInvalidRole,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
