// Package validation wraps go-playground/validator with JSON field names and
// the user facing messages of the API.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"storefront/internal/apperror"
)

const (
	msgRequired    = "Field is required"
	msgNameSize    = "Name must be between 3 and 80 characters"
	msgDescription = "Description must be at least 10 characters"
	msgPrice       = "Price must be positive"
)

// messages is keyed by "<json field>.<tag>", falling back to "<tag>".
var messages = map[string]string{
	"required":        msgRequired,
	"notblank":        msgRequired,
	"name.min":        msgNameSize,
	"name.max":        msgNameSize,
	"description.min": msgDescription,
	"price.gt":        msgPrice,
	"quantity.gt":     "Quantity must be positive",
	"quantity.lte":    "Quantity must be at most 10000",
	"items.min":       "Order must have at least one item",
	"email":           "Invalid email address",
	"password.min":    "Password must be at least 6 characters",
	"username.min":    "Username must be between 3 and 100 characters",
	"username.max":    "Username must be between 3 and 100 characters",
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// NotBlank is a real validator shipped outside the default set.
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("validation: register notblank: %v", err))
	}
	return &Validator{validate: v}
}

// Struct validates s and returns an *apperror.Error of kind validation listing
// every failing field, or nil.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Validation("Invalid data").WithError(err)
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		path := fieldPath(fe)
		if seen[path] {
			continue
		}
		seen[path] = true
		fields = append(fields, apperror.FieldError{Field: path, Message: message(fe)})
	}
	return apperror.Validation("Invalid data", fields...)
}

// fieldPath drops the root struct name from the namespace, e.g.
// "OrderDTO.items[0].quantity" becomes "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	if m, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := messages[fe.Tag()]; ok {
		return m
	}
	return fmt.Sprintf("Field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
}
