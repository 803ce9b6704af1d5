package auth

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Registration is the sign-up form.
type Registration struct {
	FirstName       string `json:"firstName" form:"firstName" validate:"required,min=2,max=50"`
	LastName        string `json:"lastName" form:"lastName" validate:"required,min=2,max=50"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required,min=8,mixedcase"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" validate:"required,eqfield=Password"`
	Terms           bool   `json:"terms" form:"terms" validate:"eq=true"`
}

// FieldErrors maps a form field to its message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return "auth: invalid registration: " + strings.Join(parts, "; ")
}

var registrationMessages = map[string]string{
	"firstName|required":       "First name is required",
	"firstName|min":            "Too Short!",
	"firstName|max":            "Too Long!",
	"lastName|required":        "Last name is required",
	"lastName|min":             "Too Short!",
	"lastName|max":             "Too Long!",
	"email|required":           "Email is required",
	"email|email":              "Invalid email address",
	"password|required":        "Password is required",
	"password|min":             "Password must be at least 8 characters",
	"password|mixedcase":       "Password must contain at least one uppercase letter, one lowercase letter, and one number",
	"confirmPassword|required": "Confirm password is required",
	"confirmPassword|eqfield":  "Passwords must match",
	"terms|eq":                 "You must accept the terms and conditions",
}

var (
	regValidate *validator.Validate
	regOnce     sync.Once
)

func registrationValidator() *validator.Validate {
	regOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			return name
		})
		_ = v.RegisterValidation("mixedcase", func(fl validator.FieldLevel) bool {
			var upper, lower, digit bool
			for _, r := range fl.Field().String() {
				switch {
				case unicode.IsUpper(r):
					upper = true
				case unicode.IsLower(r):
					lower = true
				case unicode.IsDigit(r):
					digit = true
				}
			}
			return upper && lower && digit
		})
		regValidate = v
	})
	return regValidate
}

// Validate checks the form and returns nil or FieldErrors.
func (r Registration) Validate() error {
	err := registrationValidator().Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		if _, ok := out[fe.Field()]; ok {
			continue
		}
		msg, ok := registrationMessages[fe.Field()+"|"+fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		out[fe.Field()] = msg
	}
	return out
}

// FullName joins first and last name.
func (r Registration) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}
