package payment

import "errors"

var (
	ErrOrderNotFound = errors.New("payment order not found")

	ErrNotesTooLarge = errors.New("order notes exceed provider limits")
)
