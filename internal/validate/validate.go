package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	StrategyStrict = "strict"
	StrategyBasic  = "basic"
)

const (
	NameMinLen    = 2
	NameMaxLen    = 100
	MessageMinLen = 5
	MessageMaxLen = 5000
)

// FieldValidator sanitizes and validates contact form fields. Predicates
// sanitize their input before checking, so raw form values can be passed
// directly. Implementations must be safe for concurrent use.
type FieldValidator interface {
	SanitizeInput(raw string) string
	ValidName(raw string) bool
	ValidEmail(raw string) bool
	ValidPhone(raw string) bool
	ValidMessage(raw string) bool
}

// New returns the validator for the configured strategy. Unknown values
// fall through to strict, the default.
func New(strategy string) FieldValidator {
	if strategy == StrategyBasic {
		return NewBasicValidator()
	}
	return NewStrictValidator()
}

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex  = regexp.MustCompile(`^[+]?[\d\s\-().]{7,20}$`)
	nameRegex   = regexp.MustCompile(`^[\p{L} '-]+$`)
	scriptRegex = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleRegex  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	tagRegex    = regexp.MustCompile(`<[^>]*>`)
)

// BasicValidator is the built-in regex implementation. It carries no
// external state and needs no construction beyond the zero value.
type BasicValidator struct{}

func NewBasicValidator() *BasicValidator {
	return &BasicValidator{}
}

// SanitizeInput strips script and style elements with their contents,
// removes remaining tags, and escapes stray angle brackets so no tag
// delimiter survives in the output.
func (v *BasicValidator) SanitizeInput(raw string) string {
	s := scriptRegex.ReplaceAllString(raw, "")
	s = styleRegex.ReplaceAllString(s, "")
	s = tagRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return strings.TrimSpace(s)
}

func (v *BasicValidator) ValidName(raw string) bool {
	name := v.SanitizeInput(raw)
	n := utf8.RuneCountInString(name)
	if n < NameMinLen || n > NameMaxLen {
		return false
	}
	return nameRegex.MatchString(name)
}

func (v *BasicValidator) ValidEmail(raw string) bool {
	email := v.SanitizeInput(raw)
	if email == "" {
		return false
	}
	return emailRegex.MatchString(email)
}

func (v *BasicValidator) ValidPhone(raw string) bool {
	phone := v.SanitizeInput(raw)
	if phone == "" {
		return true // phone is optional
	}
	return phoneRegex.MatchString(phone)
}

func (v *BasicValidator) ValidMessage(raw string) bool {
	msg := v.SanitizeInput(raw)
	n := utf8.RuneCountInString(msg)
	return n >= MessageMinLen && n <= MessageMaxLen
}
