package api

import (
	"errors"
	"fmt"
)

// Error kinds returned by the HTTP layer.
var (
	ErrNilMux          = errors.New("mux is nil")
	ErrNilDependencies = errors.New("dependencies are nil")
	ErrBadRequest      = errors.New("bad request")
)

// NewKind annotates a sentinel error with the operation that produced it.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind attaches both an error kind and an underlying cause.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %v", op, kind, err)
}
