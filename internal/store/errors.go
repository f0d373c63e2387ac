package store

import "errors"

var (
	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique constraint rejects a create,
	// typically a duplicate username or email.
	ErrDuplicate = errors.New("record already exists")
)
