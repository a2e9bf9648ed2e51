package process

import "errors"

var (
	ErrUnknownAddress = errors.New("process: unknown address")
	ErrInvalidSize    = errors.New("process: invalid size")
)
