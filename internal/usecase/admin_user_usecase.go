package usecase

import (
	"context"
	"strings"

	"storefront/internal/api"
	"storefront/internal/domain/model"
	"storefront/internal/notify"
	repo "storefront/internal/repository"
	"storefront/internal/session"

	"github.com/labstack/gommon/log"
	"golang.org/x/text/cases"
)

type AdminUserUsecase struct {
	users    repo.UserRepository
	store    *session.Store
	notifier notify.Notifier
	log      *log.Logger

	busy busy[AdminBusy]
}

// DI
func NewAdminUserUsecase(users repo.UserRepository, store *session.Store, notifier notify.Notifier, logger *log.Logger) *AdminUserUsecase {
	return &AdminUserUsecase{
		users:    users,
		store:    store,
		notifier: notifier,
		log:      loggerOrDiscard(logger, "admin"),
	}
}

func (u *AdminUserUsecase) List(ctx context.Context) ([]model.User, error) {
	users, err := u.users.List(ctx)
	if err != nil {
		u.log.Warnf("list users: %v", err)
		return nil, err
	}
	return users, nil
}

// 名前・苗字・メールの部分一致（大文字小文字無視）
func SearchUsers(users []model.User, query string) []model.User {
	q := strings.TrimSpace(query)
	if q == "" {
		return users
	}
	fold := cases.Fold()
	q = fold.String(q)

	out := make([]model.User, 0, len(users))
	for _, usr := range users {
		if strings.Contains(fold.String(usr.FirstName), q) ||
			strings.Contains(fold.String(usr.LastName), q) ||
			strings.Contains(fold.String(usr.Email), q) {
			out = append(out, usr)
		}
	}
	return out
}

// 自分自身は削除できない
func (u *AdminUserUsecase) Delete(ctx context.Context, userID string) error {
	if me, ok := u.store.User(); ok && me.ID == userID {
		notify.Error(u.notifier, "Could not delete user", ErrDeleteSelf.Error())
		return ErrDeleteSelf
	}
	if !u.busy.begin(deleting) {
		return ErrBusy
	}
	defer u.busy.end(deleting)

	if err := u.users.Delete(ctx, userID); err != nil {
		u.log.Warnf("delete user %s: %v", userID, err)
		notify.Error(u.notifier, "Could not delete user", api.Message(err, "please try again"))
		return err
	}
	notify.Success(u.notifier, "User deleted", "")
	return nil
}

func (u *AdminUserUsecase) Busy() AdminBusy {
	return u.busy.snapshot()
}
