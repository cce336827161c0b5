package prefs

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "skycryptplus/internal/errors"
)

// documentValidator wraps go-playground/validator with the document's rules.
type documentValidator struct {
	v *validator.Validate
}

func newDocumentValidator() *documentValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON member names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("theme", func(fl validator.FieldLevel) bool {
		return IsTheme(fl.Field().String())
	})

	return &documentValidator{v: v}
}

// validate checks the document and returns a validation error whose Fields
// map JSON member names to a short message.
func (dv *documentValidator) validate(doc *Document) error {
	if doc == nil {
		return apperrors.Validation("document is missing", nil)
	}
	if err := dv.v.Struct(doc); err != nil {
		return dv.formatError(err)
	}
	return nil
}

func (dv *documentValidator) validateProfile(p SavedProfile) error {
	if err := dv.v.Struct(p); err != nil {
		return dv.formatError(err)
	}
	return nil
}

func (dv *documentValidator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.New(apperrors.CodeValidationFailed, "validate document", err)
	}

	fields := make(map[string]string, len(validationErrs))
	names := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := fieldPath(e.Namespace())
		fields[field] = friendlyMessage(e)
		names = append(names, field+" "+fields[field])
	}
	return apperrors.Validation("invalid document: "+strings.Join(names, "; "), fields)
}

// fieldPath drops the root struct name from a validator namespace, e.g.
// "Document.saved_profiles[0].player_name" -> "saved_profiles[0].player_name".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must not exceed %s", e.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "theme":
		return "is not a known theme"
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}
