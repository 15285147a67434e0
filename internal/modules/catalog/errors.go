package catalog

import "errors"

var (
	ErrNotFound  = errors.New("product not found")
	ErrDuplicate = errors.New("product name already exists")
)
