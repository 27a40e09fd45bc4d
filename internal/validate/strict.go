package validate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// StrictValidator is the library-backed implementation: bluemonday with an
// empty allowed-tag set for sanitization, go-playground/validator for the
// email grammar.
type StrictValidator struct {
	policy   *bluemonday.Policy
	validate *validator.Validate
}

func NewStrictValidator() *StrictValidator {
	return &StrictValidator{
		policy:   bluemonday.StrictPolicy(),
		validate: validator.New(),
	}
}

// SanitizeInput strips all markup. bluemonday entity-escapes quotes and
// ampersands in text nodes; those are harmless in plain text and are
// restored so names like O'Brien survive validation. Angle brackets stay
// escaped.
func (v *StrictValidator) SanitizeInput(raw string) string {
	s := v.policy.Sanitize(raw)
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&#34;", `"`)
	s = strings.ReplaceAll(s, "&amp;", "&")
	return strings.TrimSpace(s)
}

func (v *StrictValidator) ValidName(raw string) bool {
	name := v.SanitizeInput(raw)
	n := utf8.RuneCountInString(name)
	if n < NameMinLen || n > NameMaxLen {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' && r != '\'' {
			return false
		}
	}
	return true
}

func (v *StrictValidator) ValidEmail(raw string) bool {
	email := v.SanitizeInput(raw)
	if err := v.validate.Var(email, "required,email"); err != nil {
		return false
	}
	// require a dotted domain; the grammar alone accepts user@localhost
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}

func (v *StrictValidator) ValidPhone(raw string) bool {
	phone := v.SanitizeInput(raw)
	if phone == "" {
		return true // phone is optional
	}
	return phoneRegex.MatchString(phone)
}

func (v *StrictValidator) ValidMessage(raw string) bool {
	msg := v.SanitizeInput(raw)
	n := utf8.RuneCountInString(msg)
	return n >= MessageMinLen && n <= MessageMaxLen
}
