package services

import "errors"

// Operation outcome sentinels. Handlers match them with errors.Is to pick
// HTTP status codes; services wrap them with %w to add detail.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrOutOfStock = errors.New("out of stock")
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
)
