// Package validation validates request payloads with struct tags and turns
// failures into client-facing validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"go-todo-list/pkg/apierror"
)

var (
	once     sync.Once
	instance *validator.Validate
)

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("duedate", func(fl validator.FieldLevel) bool {
			_, err := ParseDueDate(fl.Field().String())
			return err == nil
		})
		instance = v
	})

	return instance
}

// Struct validates v and returns nil or a 400 *apierror.APIError naming the
// offending fields.
func Struct(v any) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierror.Validation("invalid request", "")
	}

	var missing []string
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	if len(missing) > 0 {
		verb := "is"
		if len(missing) > 1 {
			verb = "are"
		}
		return apierror.Validation(fmt.Sprintf("%s %s required", joinFields(missing), verb), strings.Join(missing, ","))
	}

	first := fieldErrs[0]
	return apierror.Validation(messageFor(first), first.Field())
}

// ParseDueDate accepts RFC 3339 timestamps, zone-less timestamps (read as
// UTC) and plain dates.
func ParseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dueDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("parse due date %q: unsupported format", raw)
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return "invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "))
	case "duedate":
		return fmt.Sprintf("%s must be an ISO 8601 date", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func joinFields(fields []string) string {
	if len(fields) == 1 {
		return fields[0]
	}

	return strings.Join(fields[:len(fields)-1], ", ") + " and " + fields[len(fields)-1]
}
