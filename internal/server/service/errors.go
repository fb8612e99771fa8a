package service

import (
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/server/store"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func dbError() error {
	return NewHTTPError(http.StatusInternalServerError, "db error")
}

// storeのエラーをHTTPErrorにする。nil・HTTPErrorはそのまま返す
func storeError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return NewHTTPError(http.StatusNotFound, notFound)
	case errors.Is(err, store.ErrConflict):
		return NewHTTPError(http.StatusConflict, "already exists")
	default:
		return dbError()
	}
}
