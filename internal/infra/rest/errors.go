package rest

import (
	"storefront/internal/api"
	repo "storefront/internal/repository"
)

// 404はrepository.ErrNotFoundに寄せる。それ以外はapi.Errorのまま返す
func translate(err error) error {
	if err == nil {
		return nil
	}
	if api.IsNotFound(err) {
		return &notFoundError{cause: err}
	}
	return err
}

type notFoundError struct {
	cause error
}

func (e *notFoundError) Error() string { return e.cause.Error() }

// errors.Is(err, repo.ErrNotFound) と api.AsError の両方で判定できる
func (e *notFoundError) Is(target error) bool { return target == repo.ErrNotFound }
func (e *notFoundError) Unwrap() error        { return e.cause }
