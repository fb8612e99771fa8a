package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// プロフィール更新の入力（email・roleは変更不可）
type ProfileInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       int    `json:"age"`
}

// 会員登録の入力
type RegisterInput struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Age       int        `json:"age"`
	Password  string     `json:"password"`
	Role      model.Role `json:"role"`
}

// セッションユーザー（/users/current）
type SessionRepository interface {
	Current(ctx context.Context) (model.User, error)
	UpdateCurrent(ctx context.Context, in ProfileInput) (model.User, error)
}

// /auth/*
type AuthRepository interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, in RegisterInput) error
	Logout(ctx context.Context) error
}

// 管理者のユーザー管理（/admin/users）
type UserRepository interface {
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, userID string) error
}
