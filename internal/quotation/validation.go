package quotation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/interport-cargo/interport/internal/shared"
)

const maxTextLength = 2000

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateSubmit checks the request form.
func ValidateSubmit(in SubmitInput) error {
	if err := structErr(validate.Struct(in)); err != nil {
		return err
	}
	for name, v := range map[string]*decimal.Decimal{
		"package_width":  in.PackageWidth,
		"package_height": in.PackageHeight,
		"package_depth":  in.PackageDepth,
	} {
		if v != nil && v.IsNegative() {
			return fmt.Errorf("%w: %s cannot be negative", shared.ErrValidation, name)
		}
	}
	for name, v := range map[string]string{
		"source":            in.Source,
		"destination":       in.Destination,
		"nature_of_package": in.NatureOfPackage,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s is required", shared.ErrValidation, name)
		}
	}
	return nil
}

// ValidatePrepare checks the officer's pricing selection.
func ValidatePrepare(in PrepareInput) error {
	if err := structErr(validate.Struct(in)); err != nil {
		return err
	}
	if !in.ContainerType.IsValid() {
		return fmt.Errorf("%w: unknown container type %q", shared.ErrValidation, in.ContainerType)
	}
	if strings.TrimSpace(in.Scope) == "" {
		return ErrScopeRequired
	}
	return nil
}

// decisionText trims a rejection message and enforces presence and length.
func decisionText(raw string, missing error) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", missing
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return "", ErrTextTooLong
	}
	return text, nil
}

func structErr(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("%w: %s failed %s", shared.ErrValidation, fe.Field(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", shared.ErrValidation, err)
}
