package core

import (
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"agripredict/internal/types"
)

// Validator wraps go-playground/validator so that handler code receives
// structured AppErrors instead of raw validator errors.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a new Validator. Field names in error details are taken
// from the json struct tag so that clients see the wire-level field names.
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validate: v,
		logger:   logger,
	}
}

// ValidateStruct validates s against its struct tags. On failure it returns a
// *types.AppError whose Details map each offending field to the violated
// constraint. The error code is validation_missing_required_field when any
// required field is absent, validation_invalid_field otherwise.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// InvalidValidationError: s was not a validatable value. This is a
		// programming error, not a client error.
		return types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"request could not be validated",
			err,
		)
	}

	details := make(map[string]any, len(validationErrs))
	code := types.ErrCodeValidationInvalidField
	for _, fe := range validationErrs {
		details[fe.Field()] = fe.Tag()
		if fe.Tag() == "required" {
			code = types.ErrCodeValidationMissingField
		}
	}

	return types.NewAppErrorWithDetails(
		code,
		"request validation failed",
		err,
		details,
	)
}
