package repository

import "errors"

// Sentinel kinds for submission store errors.
var (
	ErrNotFound    = errors.New("submission not found")
	ErrEmptyUserID = errors.New("empty user id")
	ErrEmptySeason = errors.New("empty season")
)
