package errors

import "errors"

var (
	ErrNotFound = errors.New("facility not found")

	ErrInvalidHours = errors.New("operating hours must open before they close")
)
