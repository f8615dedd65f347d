package errors

import "fmt"

var (
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidRequest     = fmt.Errorf("invalid request")
	ErrEmptyBody          = fmt.Errorf("message body is empty")
	ErrMissingRecipient   = fmt.Errorf("recipient is required")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrCorruptRecord      = fmt.Errorf("stored record is corrupt")
)
