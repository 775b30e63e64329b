package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("storage: not found")
	ErrInvalidOperation = errors.New("storage: invalid operation")
)

type Journal interface {
	Record(ctx context.Context, in Run) (Run, error)
	Get(ctx context.Context, id string) (Run, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter RunFilter) ([]Run, error)
	Close() error
}
