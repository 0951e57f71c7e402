package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/okian/draftsim/internal/domain/types"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// getValidator returns the shared validator with the "team" rule registered
// and field names reported by their JSON keys.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("team", func(fl validator.FieldLevel) bool {
			return types.Valid(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// formatValidationError turns validation errors into a field to message map
// without leaking Go struct names.
func formatValidationError(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["error"] = "invalid request format"
		return out
	}
	for _, e := range verrs {
		field := e.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		switch e.Tag() {
		case "required":
			out[field] = "is required"
		case "team":
			out[field] = "unknown team"
		case "min":
			out[field] = fmt.Sprintf("must have at least %s", e.Param())
		case "max", "lte":
			out[field] = fmt.Sprintf("must be at most %s", e.Param())
		case "gte":
			out[field] = fmt.Sprintf("must be at least %s", e.Param())
		case "gt":
			out[field] = fmt.Sprintf("must be greater than %s", e.Param())
		default:
			out[field] = "invalid value"
		}
	}
	return out
}
