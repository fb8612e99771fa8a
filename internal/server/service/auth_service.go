package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/server/store"
	"storefront/internal/validator"

	"github.com/labstack/gommon/log"
)

// 会員登録の入力
type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// プロフィール更新の入力（email・roleは変更不可）
type ProfileInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       int    `json:"age"`
}

// handlerがcookieに詰める値
type LoginResult struct {
	User      model.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	store      store.Store
	hasher     PasswordHasher
	verifier   PasswordVerifier
	issuer     AccessTokenIssuer
	idGen      IDGenerator
	clock      Clock
	allowAdmin bool
	logger     *log.Logger
}

type AuthOptions struct {
	// role=adminの登録を許可するか
	AllowAdminSignup bool
	Logger           *log.Logger
}

// DI
func NewAuthService(
	s store.Store,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	opts AuthOptions,
) *AuthService {
	return &AuthService{
		store:      s,
		hasher:     hasher,
		verifier:   verifier,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		allowAdmin: opts.AllowAdminSignup,
		logger:     loggerOrDiscard(opts.Logger),
	}
}

// 会員登録。ユーザーとカートを同じtxで作る
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	if in.Role == string(model.RoleAdmin) && !s.allowAdmin {
		return model.User{}, NewHTTPError(http.StatusForbidden, "admin signup is disabled")
	}
	return s.createUser(ctx, in)
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput) (model.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	//入力検証
	if err := validator.ValidateRegister(in.FirstName, in.LastName, in.Email, in.Password, in.Age, in.Role); err != nil {
		return model.User{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	role := model.RoleUser
	if in.Role == string(model.RoleAdmin) {
		role = model.RoleAdmin
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := model.User{
		ID:           s.idGen.NewID(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Age:          in.Age,
		Role:         role,
		CartID:       s.idGen.NewID(),
		PasswordHash: hash,
	}

	err = s.store.WithinTx(ctx, func(r store.Repos) error {
		if err := r.Carts().Create(ctx, user.CartID); err != nil {
			return err
		}
		return r.Users().Create(ctx, &user)
	})
	if errors.Is(err, store.ErrConflict) {
		return model.User{}, NewHTTPError(http.StatusConflict, "email already registered")
	}
	if err != nil {
		return model.User{}, dbError()
	}

	s.logger.Infof("user registered: id=%s role=%s", user.ID, user.Role)
	return user, nil
}

// ログイン。emailかパスワードが違えば401
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validator.ValidateLogin(email, password); err != nil {
		return LoginResult{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := s.store.Users().FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return LoginResult{}, dbError()
	}

	//パスワード照合
	if !s.verifier.Verify(password, user.PasswordHash) {
		return LoginResult{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, exp, err := s.issuer.Issue(user.ID, user.Role, user.TokenVersion, s.clock.Now())
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// セッションのユーザー。消えていたら401
func (s *AuthService) Current(ctx context.Context, userID string) (model.User, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return model.User{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return model.User{}, dbError()
	}
	return user, nil
}

func (s *AuthService) UpdateCurrent(ctx context.Context, userID string, in ProfileInput) (model.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validator.ValidateProfile(in.FirstName, in.LastName, in.Age); err != nil {
		return model.User{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := s.store.Users().Update(ctx, model.User{
		ID:        userID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Age:       in.Age,
	})
	if err != nil {
		return model.User{}, storeError(err, "user not found")
	}
	return s.Current(ctx, userID)
}

// ログアウト。token_versionを進めて発行済みトークンを無効にする
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.store.Users().BumpTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return dbError()
	}
	return nil
}
