package accounts

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// passwordSymbols is the fixed set of accepted special characters.
const passwordSymbols = "$@#%"

var (
	hasDigit = regexp.MustCompile(`\d`)
	hasUpper = regexp.MustCompile(`[A-Z]`)
	hasLower = regexp.MustCompile(`[a-z]`)

	emailPattern = regexp.MustCompile(`^(([^<>()\\.,;:\s@"]+(\.[^<>()\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)
)

// CheckPasswordStrength validates a cleartext password against the
// account policy: 6-20 characters with at least one digit, one
// uppercase letter, one lowercase letter, and one of $@#%.
// The first violated rule is reported.
func CheckPasswordStrength(passwd string) error {
	fail := func(msg string) error {
		return goerrors.New(msg, goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	if len(passwd) < 6 {
		return fail("Password length should be at least 6 characters.")
	}
	if len(passwd) > 20 {
		return fail("Password length should not be greater than 20 characters.")
	}
	if !hasDigit.MatchString(passwd) {
		return fail("Password should have at least one numeral.")
	}
	if !hasUpper.MatchString(passwd) {
		return fail("Password should have at least one uppercase letter.")
	}
	if !hasLower.MatchString(passwd) {
		return fail("Password should have at least one lowercase letter.")
	}
	if !strings.ContainsAny(passwd, passwordSymbols) {
		return fail("Password should have at least one of the symbols $@#%.")
	}

	return nil
}

// CheckEmailFormat validates an email address against the fixed
// account-service pattern.
func CheckEmailFormat(email string) error {
	if strings.TrimSpace(email) == "" || !emailPattern.MatchString(email) {
		return goerrors.New("Please enter a valid email address.", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}
	return nil
}

// PasswordStrength is an ozzo rule wrapping CheckPasswordStrength.
var PasswordStrength = validation.By(func(value any) error {
	s, _ := value.(string)
	return CheckPasswordStrength(s)
})

// EmailFormat is an ozzo rule wrapping CheckEmailFormat.
var EmailFormat = validation.By(func(value any) error {
	s, _ := value.(string)
	return CheckEmailFormat(s)
})
