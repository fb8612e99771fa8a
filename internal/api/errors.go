package api

import (
	"errors"
	"fmt"
	"net/http"
)

// 失敗の種類
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindTimeout
	KindUnauthorized // 401: 未ログイン扱い
	KindForbidden    // 403
	KindNotFound     // 404
	KindValidation   // その他の4xx（サーバーのメッセージ付き）
	KindServer       // 5xx・パースできないレスポンス
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Errorは1回のAPI呼び出しの失敗
type Error struct {
	Kind    Kind
	Status  int    // HTTPステータス（ネットワーク系は0）
	Message string // サーバーの {"error": "..."}
	Op      string // "GET /users/current"
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s: %d: %s", e.Op, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func AsError(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}

func IsKind(err error, k Kind) bool {
	ae, ok := AsError(err)
	return ok && ae.Kind == k
}

// 401はログイン画面へ
func IsUnauthorized(err error) bool {
	return IsKind(err, KindUnauthorized)
}

func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}

// Messageはサーバーのメッセージ、無ければfallbackを返す
func Message(err error, fallback string) string {
	if ae, ok := AsError(err); ok && ae.Message != "" {
		return ae.Message
	}
	return fallback
}

func kindFromStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindServer
	}
}
