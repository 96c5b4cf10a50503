package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"speite/internal/api/errors"
)

// Validator interface for domain validation
type Validator interface {
	Validate() error
}

// ValidateForm binds a form or multipart body into req and checks both the
// binding tags and, when implemented, the request's own Validate. A body read
// failure such as *http.MaxBytesError stays reachable through errors.As.
func ValidateForm(c *gin.Context, req interface{}) error {
	if err := c.ShouldBind(req); err != nil {
		var validationErrs validator.ValidationErrors
		if !stderrors.As(err, &validationErrs) {
			return errors.NewBadRequestError("Invalid form data").WithCause(err)
		}
		return errors.NewValidationError("Validation failed", fieldErrors(validationErrs))
	}

	if v, ok := req.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func fieldErrors(validationErrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(validationErrs))
	for _, fieldError := range validationErrs {
		field := strings.ToLower(fieldError.Field())

		switch fieldError.Tag() {
		case "required":
			fields[field] = "is required"
		case "oneof":
			fields[field] = "must be one of: " + fieldError.Param()
		case "max":
			fields[field] = "is too long"
		default:
			fields[field] = "is invalid"
		}
	}
	return fields
}
