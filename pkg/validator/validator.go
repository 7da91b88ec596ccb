package validator

import (
	"regexp"
	"slices"
)

// EmailRX is a regex for sanity-checking email addresses, copied from
// https://html.spec.whatwg.org/#valid-e-mail-address.
var EmailRX = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+\\/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// Validator accumulates one error message per failed field check.
type Validator struct {
	Errors map[string]string
}

func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid reports whether any checks have failed so far.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records msg for key, if key doesn't already have an error.
func (v *Validator) AddError(key, msg string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = msg
	}
}

// Check adds msg for key if ok is false.
func (v *Validator) Check(ok bool, key, msg string) {
	if !ok {
		v.AddError(key, msg)
	}
}

// PermittedValue reports whether value is one of permittedValues.
func PermittedValue[T comparable](value T, permittedValues ...T) bool {
	return slices.Contains(permittedValues, value)
}

// Matches reports whether value satisfies rx.
func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

// Unique reports whether all values in the slice are distinct.
func Unique[T comparable](values []T) bool {
	uniqueValues := make(map[T]bool, len(values))
	for _, value := range values {
		uniqueValues[value] = true
	}
	return len(values) == len(uniqueValues)
}
