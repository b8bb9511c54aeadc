package user

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domain "user-service/internal/domain/user"
	pkgerrors "user-service/pkg/errors"
)

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize trims the name and trims and lowercases the email. It is the only place
// user input is normalized before storage.
func Normalize(in CreateUserRequest) CreateUserRequest {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	return in
}

// Validate normalizes in and checks it against the user rules: name present and non-blank,
// email present and well formed, age absent or within [0, 120]. Every violation is reported,
// in field order. On success it returns a new active user ready to be inserted.
func Validate(v *validator.Validate, in CreateUserRequest) (*domain.User, error) {
	in = Normalize(in)

	if err := v.Struct(in); err != nil {
		return nil, formatValidationError(err)
	}

	return &domain.User{
		Name:     in.Name,
		Email:    in.Email,
		Age:      in.Age,
		IsActive: true,
	}, nil
}

// formatValidationError converts validator.ValidationErrors into a structured validation error.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return pkgerrors.NewInternalError("validate user", err)
	}

	out := &pkgerrors.ValidationError{}
	for _, e := range validationErrors {
		var msg string
		switch e.Tag() {
		case "required":
			msg = "is required"
		case "email":
			msg = "must be a valid email"
		case "min":
			msg = fmt.Sprintf("must be at least %s", e.Param())
		case "max":
			msg = fmt.Sprintf("must be at most %s", e.Param())
		default:
			msg = "is invalid"
		}
		out.Add(e.Field(), msg)
	}
	return out
}
