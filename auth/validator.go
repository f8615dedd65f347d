package auth

import (
	"fmt"

	apperrors "chatline/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RegisterRequest carries the fields a registration must provide.
// Limits match the public contract: usernames of at least 3 characters,
// credentials of at least 6.
type RegisterRequest struct {
	Username   string `validate:"required,min=3,max=32"`
	Credential string `validate:"required,min=6,max=72"`
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err)
	}
	return nil
}
