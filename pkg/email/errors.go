package email

import "errors"

var (
	ErrFailedToSend  = errors.New("email: failed to send")
	ErrInvalidParams = errors.New("email: invalid send parameters")
	ErrInvalidConfig = errors.New("email: invalid configuration")
)
