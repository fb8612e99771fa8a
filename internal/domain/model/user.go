package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// セッションのユーザー。cartは1ユーザーにつき1つ。
// PasswordHash・TokenVersionはstoreapiだけが使う（JSONには出さない）
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	FirstName    string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string    `gorm:"type:varchar(100);not null" json:"last_name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Age          int       `json:"age,omitempty"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	CartID       string    `gorm:"type:varchar(36);index" json:"cart"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	TokenVersion int       `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// 名前と苗字の頭文字（大文字）
func (u User) Initials() string {
	var b strings.Builder
	for _, s := range []string{u.FirstName, u.LastName} {
		for _, r := range s {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToUpper(b.String())
}
