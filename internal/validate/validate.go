// Package validate checks login and registration input before anything is
// sent to the auth service.
package validate

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Mode selects which rule set applies.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

const (
	MinAge            = 16
	MinPasswordLength = 6
)

// Field names used as keys in Result.FieldErrors.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldAge             = "age"
)

// Fields lists every field in display order.
var Fields = []string{FieldUsername, FieldEmail, FieldPassword, FieldConfirmPassword, FieldAge}

var labels = map[string]string{
	FieldUsername:        "Username",
	FieldEmail:           "Email",
	FieldPassword:        "Password",
	FieldConfirmPassword: "Confirm password",
	FieldAge:             "Age",
}

// Label returns the human name of a field.
func Label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return field
}

// Input is the raw form content. Age stays a string until validated.
type Input struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Age             string
}

// Result is produced fresh for every submission attempt.
type Result struct {
	Valid       bool
	FieldErrors map[string]string
}

// Summary returns the first field error as a sentence, or "" when valid.
func (r Result) Summary() string {
	for _, f := range Fields {
		if msg, ok := r.FieldErrors[f]; ok {
			return Label(f) + " " + msg
		}
	}
	return ""
}

// Validate applies every rule for mode and collects one message per field.
func Validate(mode Mode, in Input) Result {
	errs := map[string]string{}

	if strings.TrimSpace(in.Email) == "" {
		errs[FieldEmail] = "is required"
	}

	switch {
	case strings.TrimSpace(in.Password) == "":
		errs[FieldPassword] = "is required"
	case mode == ModeRegister && utf8.RuneCountInString(in.Password) < MinPasswordLength:
		errs[FieldPassword] = "must be at least " + strconv.Itoa(MinPasswordLength) + " characters"
	}

	if mode == ModeRegister {
		if strings.TrimSpace(in.Username) == "" {
			errs[FieldUsername] = "is required"
		}
		if msg := checkAge(in.Age); msg != "" {
			errs[FieldAge] = msg
		}
		if in.Password != in.ConfirmPassword {
			errs[FieldConfirmPassword] = "passwords do not match"
		}
	}

	return Result{Valid: len(errs) == 0, FieldErrors: errs}
}

// ParseAge returns the integer age of a form value that passed validation.
func ParseAge(raw string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(raw))
}

func checkAge(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "is required"
	}
	age, err := strconv.Atoi(raw)
	if err != nil {
		return "must be a whole number"
	}
	if age < MinAge {
		return "must be at least " + strconv.Itoa(MinAge)
	}
	return ""
}
