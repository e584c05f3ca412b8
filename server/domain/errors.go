package domain

import "errors"

var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrUpstreamUnavailable     = errors.New("upstream unavailable")
	ErrUpstreamInvalidResponse = errors.New("upstream invalid response")
	ErrStorageFailure          = errors.New("storage failure")
	ErrNotFound                = errors.New("not found")
	ErrUserNotFound            = errors.New("user not found")
)
