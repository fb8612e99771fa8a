package rest

import (
	"context"

	"storefront/internal/api"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// /users/current
type SessionRestRepository struct {
	c *api.Client
}

func NewSessionRestRepository(c *api.Client) *SessionRestRepository {
	return &SessionRestRepository{c: c}
}

var _ repo.SessionRepository = (*SessionRestRepository)(nil)

func (r *SessionRestRepository) Current(ctx context.Context) (model.User, error) {
	var u model.User
	if err := r.c.Get(ctx, "/users/current", &u); err != nil {
		return model.User{}, translate(err)
	}
	return u, nil
}

func (r *SessionRestRepository) UpdateCurrent(ctx context.Context, in repo.ProfileInput) (model.User, error) {
	var u model.User
	if err := r.c.Put(ctx, "/users/current", in, &u); err != nil {
		return model.User{}, translate(err)
	}
	return u, nil
}

// /auth/*
type AuthRestRepository struct {
	c *api.Client
}

func NewAuthRestRepository(c *api.Client) *AuthRestRepository {
	return &AuthRestRepository{c: c}
}

var _ repo.AuthRepository = (*AuthRestRepository)(nil)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// 成功するとcookie jarにセッションが入る
func (r *AuthRestRepository) Login(ctx context.Context, email, password string) error {
	return translate(r.c.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, nil))
}

func (r *AuthRestRepository) Register(ctx context.Context, in repo.RegisterInput) error {
	return translate(r.c.Post(ctx, "/auth/register", in, nil))
}

func (r *AuthRestRepository) Logout(ctx context.Context) error {
	return translate(r.c.Post(ctx, "/auth/logout", nil, nil))
}

// /admin/users
type UserRestRepository struct {
	c *api.Client
}

func NewUserRestRepository(c *api.Client) *UserRestRepository {
	return &UserRestRepository{c: c}
}

var _ repo.UserRepository = (*UserRestRepository)(nil)

func (r *UserRestRepository) List(ctx context.Context) ([]model.User, error) {
	var out []model.User
	if err := r.c.Get(ctx, "/admin/users", &out); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *UserRestRepository) Delete(ctx context.Context, userID string) error {
	return translate(r.c.Delete(ctx, api.Path("admin", "users", userID), nil))
}
