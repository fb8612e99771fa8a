package usecase

import (
	"context"
	"strings"

	"storefront/internal/api"
	"storefront/internal/domain/model"
	"storefront/internal/notify"
	repo "storefront/internal/repository"
	"storefront/internal/session"
	"storefront/internal/validator"

	"github.com/labstack/gommon/log"
)

// ログイン・登録・ログアウト
type AuthUsecase struct {
	auth     repo.AuthRepository
	store    *session.Store
	notifier notify.Notifier
	log      *log.Logger
}

// DI
func NewAuthUsecase(auth repo.AuthRepository, store *session.Store, notifier notify.Notifier, logger *log.Logger) *AuthUsecase {
	return &AuthUsecase{
		auth:     auth,
		store:    store,
		notifier: notifier,
		log:      loggerOrDiscard(logger, "auth"),
	}
}

// Loginは成功したらセッションを読み込み直す（user → 商品・カート）
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (model.User, error) {
	email = strings.TrimSpace(email)
	if err := validator.ValidateLogin(email, password); err != nil {
		notify.Error(u.notifier, "Login failed", err.Error())
		return model.User{}, err
	}

	if err := u.auth.Login(ctx, email, password); err != nil {
		u.log.Warnf("login %s: %v", email, err)
		notify.Error(u.notifier, "Login failed", api.Message(err, "invalid credentials"))
		return model.User{}, err
	}

	if err := u.store.Load(ctx); err != nil {
		//商品・カートの失敗はuserが取れていれば続行
		if _, ok := u.store.User(); !ok {
			notify.Error(u.notifier, "Login failed", api.Message(err, "could not load your session"))
			return model.User{}, err
		}
		u.log.Warnf("load session after login: %v", err)
	}

	user, _ := u.store.User()
	notify.Success(u.notifier, "Welcome", user.FirstName)
	return user, nil
}

// 登録後はログイン画面に戻る（自動ログインはしない）
func (u *AuthUsecase) Register(ctx context.Context, in repo.RegisterInput) error {
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	if err := validator.ValidateRegister(in.FirstName, in.LastName, in.Email, in.Password, in.Age, string(in.Role)); err != nil {
		notify.Error(u.notifier, "Registration failed", err.Error())
		return err
	}

	if err := u.auth.Register(ctx, in); err != nil {
		u.log.Warnf("register %s: %v", in.Email, err)
		notify.Error(u.notifier, "Registration failed", api.Message(err, "please try again"))
		return err
	}

	notify.Success(u.notifier, "Account created", "you can sign in now")
	return nil
}

// Logoutはサーバー側が失敗してもローカルのセッションは捨てる
func (u *AuthUsecase) Logout(ctx context.Context) error {
	err := u.auth.Logout(ctx)
	u.store.Reset()
	if err != nil {
		u.log.Warnf("logout: %v", err)
		notify.Error(u.notifier, "Logout failed", api.Message(err, "session cleared locally"))
		return err
	}
	notify.Info(u.notifier, "Signed out", "")
	return nil
}

// 起動時・再読み込み時のセッション復元。未ログインはエラーにしない
func (u *AuthUsecase) Restore(ctx context.Context) error {
	err := u.store.Load(ctx)
	if err == nil {
		return nil
	}
	if _, ok := u.store.User(); !ok && api.IsUnauthorized(err) {
		return nil
	}
	return err
}
