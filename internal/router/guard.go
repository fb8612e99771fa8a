// Package router は画面のパスとアクセス制御（ガード）。
package router

import "storefront/internal/domain/model"

const (
	PathHome          = "/"
	PathLogin         = "/auth/login"
	PathRegister      = "/auth/register"
	PathProduct       = "/products/:pid"
	PathCart          = "/cart"
	PathProfile       = "/profile"
	PathAdminProducts = "/admin/products"
	PathAdminUsers    = "/admin/users"
)

// ガードが見るセッション（session.Storeが満たす）
type Session interface {
	User() (model.User, bool)
}

// Guardは通すならok=true、弾くならリダイレクト先を返す
type Guard func(s Session) (redirect string, ok bool)

// 未ログインはログイン画面へ
func RequireAuth() Guard {
	return func(s Session) (string, bool) {
		if _, ok := s.User(); !ok {
			return PathLogin, false
		}
		return "", true
	}
}

// 管理者以外はホームへ（未ログインはログイン画面へ）
func RequireAdmin() Guard {
	return Chain(RequireAuth(), func(s Session) (string, bool) {
		u, _ := s.User()
		if !u.IsAdmin() {
			return PathHome, false
		}
		return "", true
	})
}

// ログイン済みでログイン・登録画面を開いたらホームへ
func RequireGuest() Guard {
	return func(s Session) (string, bool) {
		if _, ok := s.User(); ok {
			return PathHome, false
		}
		return "", true
	}
}

// Chainは順に評価して最初に弾いたガードの結果を返す
func Chain(guards ...Guard) Guard {
	return func(s Session) (string, bool) {
		for _, g := range guards {
			if redirect, ok := g(s); !ok {
				return redirect, false
			}
		}
		return "", true
	}
}
