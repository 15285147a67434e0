package table

import "errors"

var (
	ErrNotFound      = errors.New("table not found")
	ErrTableInactive = errors.New("table is not active")
	ErrNickInvalid   = errors.New("nickname not allowed")
	ErrNickBanned    = errors.New("nickname is banned")
	ErrNickTaken     = errors.New("nickname already in use")
)
