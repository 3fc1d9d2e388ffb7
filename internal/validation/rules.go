package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	bookImageRegex   = regexp.MustCompile(`(?i)\.(?:jpg|jpeg|png|gif)$`)
	personNameRegex  = regexp.MustCompile(`^[A-Za-z]+(?:\s[A-Za-z]+)*$`)
	lettersOnlyRegex = regexp.MustCompile(`^[A-Za-z\s]+$`)
	phoneRegex       = regexp.MustCompile(`^\+?\d{7,15}$`)
	passwordCharset  = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,32}$`)
)

const passwordSpecials = "@$!%*?&"

var ruleMessages = map[string]string{
	"bookimage":      "must be a .jpg, .jpeg, .png or .gif file",
	"personname":     "must contain only letters and single spaces",
	"lettersonly":    "must contain only letters and spaces",
	"phone":          "must be a valid phone number",
	"futuredate":     "must be in the future",
	"strongpassword": "must be 8-32 characters with an uppercase letter, a lowercase letter, a number and one of @$!%*?&",
}

func registerRules(v *validator.Validate) {
	_ = v.RegisterValidation("bookimage", matchString(bookImageRegex))
	_ = v.RegisterValidation("personname", matchString(personNameRegex))
	_ = v.RegisterValidation("lettersonly", matchString(lettersOnlyRegex))
	_ = v.RegisterValidation("phone", matchString(phoneRegex))
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("futuredate", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && t.After(time.Now())
	})
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// IsStrongPassword reports whether p uses only the allowed characters and mixes
// upper case, lower case, digits and a special character.
func IsStrongPassword(p string) bool {
	if !passwordCharset.MatchString(p) {
		return false
	}

	var upper, lower, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return upper && lower && digit && special
}
