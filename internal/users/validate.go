package users

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/alisproject/alis-backend/pkg/errors"
)

// MinPasswordLength is the minimum accepted plaintext password length.
const MinPasswordLength = 6

// MaxFullNameLength caps the stored display name.
const MaxFullNameLength = 200

var usernameRe = regexp.MustCompile(`^[a-z0-9_-]{1,35}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// canonical (lowercase) username shape; the chosen form is the same
	// pattern case-insensitively because the pair is derived together
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	return v
}

// checkUsername validates the canonical lowercase username.
func checkUsername(username string) error {
	if err := validate.Var(username, "username"); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid username")
	}
	return nil
}

// checkFullName validates the display-name length.
func checkFullName(fullName string) error {
	if err := validate.Var(fullName, "max=200"); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "name too long")
	}
	return nil
}

// checkEmail validates email syntax.
func checkEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	return nil
}

// checkPassword validates a plaintext password ahead of hashing.
func checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "password too short")
	}
	return nil
}
