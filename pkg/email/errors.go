package email

import "errors"

var (
	ErrInvalidConfig = errors.New("email: invalid configuration")
	ErrInvalidParams = errors.New("email: invalid send parameters")
	ErrSendFailed    = errors.New("email: failed to send")
	ErrRenderBody    = errors.New("email: failed to render body")
)
