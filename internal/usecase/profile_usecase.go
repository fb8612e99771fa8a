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

type ProfileUsecase struct {
	sessions repo.SessionRepository
	store    *session.Store
	notifier notify.Notifier
	log      *log.Logger
}

// DI
func NewProfileUsecase(sessions repo.SessionRepository, store *session.Store, notifier notify.Notifier, logger *log.Logger) *ProfileUsecase {
	return &ProfileUsecase{
		sessions: sessions,
		store:    store,
		notifier: notifier,
		log:      loggerOrDiscard(logger, "profile"),
	}
}

// Updateは名前・苗字・年齢を更新して、ストアのuserにマージする
func (u *ProfileUsecase) Update(ctx context.Context, in repo.ProfileInput) (model.User, error) {
	current, ok := u.store.User()
	if !ok {
		return model.User{}, session.ErrNoUser
	}

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validator.ValidateProfile(in.FirstName, in.LastName, in.Age); err != nil {
		notify.Error(u.notifier, "Could not update profile", err.Error())
		return model.User{}, err
	}

	updated, err := u.sessions.UpdateCurrent(ctx, in)
	if err != nil {
		u.log.Warnf("update profile %s: %v", current.ID, err)
		notify.Error(u.notifier, "Could not update profile", api.Message(err, "please try again"))
		return model.User{}, err
	}

	merged := mergeUser(current, updated, in)
	u.store.SetUser(&merged)
	notify.Success(u.notifier, "Profile updated", "")
	return merged, nil
}

// レスポンスに無い項目（cartなど）は今のuserの値を残す
func mergeUser(current, updated model.User, in repo.ProfileInput) model.User {
	merged := current
	merged.FirstName = in.FirstName
	merged.LastName = in.LastName
	merged.Age = in.Age
	if updated.FirstName != "" {
		merged.FirstName = updated.FirstName
	}
	if updated.LastName != "" {
		merged.LastName = updated.LastName
	}
	if updated.Age != 0 {
		merged.Age = updated.Age
	}
	if updated.CartID != "" {
		merged.CartID = updated.CartID
	}
	return merged
}
