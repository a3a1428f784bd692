package serverutils

import (
	"fmt"
	"strings"

	"ai-webchat-be/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and reports failures as a
// single ValidationFailure naming every offending field.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.Wrap(apperror.ErrValidationFailure, err)
	}

	fields := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return apperror.Wrapf(apperror.ErrValidationFailure, "invalid fields: %s", strings.Join(fields, ", "))
}
