package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/kbukum/eurekaclient/errors"
)

// FieldError is one failed rule, keyed by its dotted config or request path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator collects field errors for rules struct tags cannot express, such
// as path parameters or cross-field config constraints. Every check returns
// the receiver so calls chain; the first failure does not stop later checks.
type Validator struct {
	failed []FieldError
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failure for field.
func (v *Validator) AddError(field, message string) {
	v.failed = append(v.failed, FieldError{Field: field, Message: message})
}

func (v *Validator) check(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}

func (v *Validator) HasErrors() bool { return len(v.failed) > 0 }

func (v *Validator) Errors() []FieldError { return v.failed }

// Validate folds the collected failures into one INVALID_INPUT error whose
// message reads "field: message; field: message". Nil when nothing failed.
func (v *Validator) Validate() *errors.AppError {
	if len(v.failed) == 0 {
		return nil
	}
	var b strings.Builder
	for i, f := range v.failed {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Field)
		b.WriteString(": ")
		b.WriteString(f.Message)
	}
	return errors.Validation(b.String()).WithDetails(map[string]any{"fields": v.failed})
}

// Required fails on empty or whitespace-only values.
func (v *Validator) Required(field, value string) *Validator {
	return v.check(strings.TrimSpace(value) != "", field, "is required")
}

// MaxLength counts runes, not bytes.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	return v.check(utf8.RuneCountInString(value) <= maxLen,
		field, fmt.Sprintf("must be %d characters or less", maxLen))
}

// Range checks lo <= value <= hi.
func (v *Validator) Range(field string, value, lo, hi int) *Validator {
	return v.check(value >= lo && value <= hi,
		field, fmt.Sprintf("must be between %d and %d", lo, hi))
}

// Port checks a port number kept as a string, the way Eureka's port blocks
// carry it. Empty values pass; pair with Required when the port is mandatory.
func (v *Validator) Port(field, value string) *Validator {
	if value == "" {
		return v
	}
	n, err := strconv.Atoi(value)
	return v.check(err == nil && n > 0 && n <= 65535,
		field, "must be a port number between 1 and 65535")
}

// Pattern checks value against a regular expression. Empty values pass.
// An invalid pattern fails the field rather than panicking.
func (v *Validator) Pattern(field, value, pattern string) *Validator {
	if value == "" {
		return v
	}
	re, err := compiled(pattern)
	return v.check(err == nil && re.MatchString(value), field, "does not match required format")
}

// OneOf checks value is in allowed. Empty values pass.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	return v.check(slices.Contains(allowed, value),
		field, "must be one of: "+strings.Join(allowed, ", "))
}

// Custom records message when cond is false.
func (v *Validator) Custom(cond bool, field, message string) *Validator {
	return v.check(cond, field, message)
}

var patterns sync.Map // string -> *regexp.Regexp

func compiled(pattern string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patterns.Store(pattern, re)
	return re, nil
}
