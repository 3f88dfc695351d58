package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/eurekaclient/errors"
)

// structValidator is shared; validator caches struct metadata per type.
// Field names in errors follow the mapstructure key used in config files,
// falling back to the json name.
var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(tagName)
	return v
})

func tagName(fld reflect.StructField) string {
	for _, key := range []string{"mapstructure", "json"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return toSnakeCase(fld.Name)
}

// Validate checks s against its `validate` struct tags and returns an
// INVALID_INPUT AppError listing every failing field by its dotted config path,
// e.g. "eureka.app_name: is required".
func Validate(s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.Validation("validation failed").WithCause(err)
	}
	v := New()
	for _, e := range fieldErrs {
		v.AddError(fieldPath(e), formatValidationError(e))
	}
	return v.Validate()
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

// messages maps a validator tag to its message; "%s" is the tag parameter.
// Length tags read as characters on strings.
var messages = map[string]string{
	"required":      "is required",
	"gte":           "must be greater than or equal to %s",
	"lte":           "must be less than or equal to %s",
	"url":           "must be a valid URL",
	"ip":            "must be a valid IP address",
	"hostname_port": "must be a host:port pair",
	"oneof":         "must be one of: %s",
	"min":           "must be at least %s",
	"max":           "must be at most %s",
}

func formatValidationError(e validator.FieldError) string {
	msg, ok := messages[e.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(msg, "%s") {
		msg = fmt.Sprintf(msg, e.Param())
	}
	switch {
	case e.Tag() == "min" && (e.Kind() == reflect.String || e.Kind() == reflect.Slice),
		e.Tag() == "max" && e.Kind() == reflect.String:
		msg += " characters"
	}
	return msg
}

// toSnakeCase turns a Go field name into a config key: HeartbeatInterval
// becomes heartbeat_interval.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
