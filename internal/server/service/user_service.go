package service

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/server/store"

	"github.com/labstack/gommon/log"
)

// 管理者のユーザー管理
type UserService struct {
	store  store.Store
	clock  Clock
	logger *log.Logger
}

// DI
func NewUserService(s store.Store, clock Clock, logger *log.Logger) *UserService {
	return &UserService{store: s, clock: clock, logger: loggerOrDiscard(logger)}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, dbError()
	}
	return users, nil
}

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 200
)

// AuditLogsは監査ログを新しい順で返す。limit=0なら既定値
func (s *UserService) AuditLogs(ctx context.Context, limit int) ([]model.AuditLog, error) {
	if limit == 0 {
		limit = DefaultAuditLimit
	}
	if limit < 1 || limit > MaxAuditLimit {
		return nil, NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 200")
	}
	logs, err := s.store.AuditLogs().List(ctx, limit)
	if err != nil {
		return nil, dbError()
	}
	return logs, nil
}

// ユーザーとカートを削除。自分自身は消せない
func (s *UserService) Delete(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return NewHTTPError(http.StatusBadRequest, "cannot delete yourself")
	}

	err := s.store.WithinTx(ctx, func(r store.Repos) error {
		user, err := r.Users().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := r.Users().Delete(ctx, userID); err != nil {
			return err
		}
		if user.CartID != "" {
			if err := r.Carts().Delete(ctx, user.CartID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}

		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionDeleteUser,
			ResourceType: model.AuditResourceUser,
			ResourceID:   userID,
			BeforeJSON:   toJSON(user),
			CreatedAt:    s.clock.Now(),
		})
	})
	if err != nil {
		return storeError(err, "user not found")
	}

	s.logger.Infof("user deleted: id=%s by=%s", userID, actorID)
	return nil
}
