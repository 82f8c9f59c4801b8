package orders

import "errors"

var (
	ErrNotFound      = errors.New("order not found")
	ErrAlreadyExists = errors.New("order already exists")
	ErrConflict      = errors.New("status precondition not met")
	ErrSessionSet    = errors.New("payment session already set")
	ErrDuplicate     = errors.New("duplicate gateway event")
)
