package contact

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"folio/internal/validate"
)

// Submission is the relay payload. It is built from sanitized input at
// submit time and discarded once the upstream call resolves.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// FormInput carries the raw form fields plus the hidden honeypot field.
type FormInput struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Message string `json:"message" form:"message"`
	Website string `json:"website" form:"website"`
}

// Terminal states of one submission attempt. These values are stored in
// the journal's status column.
const (
	StateRelayed   = "relayed"
	StateRejected  = "rejected"
	StateDiscarded = "discarded"
	StateFailed    = "failed"
)

const (
	errName    = "Please enter a valid name (2-100 characters, letters only)."
	errEmail   = "Please enter a valid email address."
	errPhone   = "Please enter a valid phone number or leave it empty."
	errMessage = "Please enter a message between 5 and 5000 characters."

	successMessage  = "Thanks for reaching out! I'll get back to you soon."
	fallbackMessage = "Something went wrong sending your message. Please try again later."
)

var wittyPrefixes = [8]string{
	"Whoops! Let's double-check a few things:",
	"Almost there! Just a couple of tweaks needed:",
	"Hold on a second, something needs fixing:",
	"So close! Mind taking another look?",
	"Hmm, the form gremlins flagged a few fields:",
	"Not quite ready to send yet:",
	"A few details need your attention:",
	"Quick fix needed before this can go out:",
}

// Outcome is the result of one submission attempt. Witty, Fields and
// Errors are only set for rejected attempts; Message carries the
// user-facing modal text for relayed and failed ones. Detail holds the
// operator-facing error for the journal.
type Outcome struct {
	State      string
	Witty      string
	Fields     []string
	Errors     []string
	Message    string
	HTTPStatus int
	LatencyMs  int64
	Detail     string
	Submission *Submission
}

// Controller orchestrates one submission lifecycle: sanitize, validate,
// relay. Attempts are independent; no state is shared across calls.
type Controller struct {
	validator validate.FieldValidator
	relay     *Relay
}

func NewController(v validate.FieldValidator, relay *Relay) *Controller {
	return &Controller{validator: v, relay: relay}
}

// Process runs one submission attempt. A populated honeypot discards the
// attempt without validation feedback or an upstream call. Validation
// failures report every failing field at once. At most one upstream POST
// is issued, and only for valid submissions.
func (fc *Controller) Process(ctx context.Context, in FormInput) Outcome {
	sub := &Submission{
		Name:    fc.validator.SanitizeInput(in.Name),
		Email:   fc.validator.SanitizeInput(in.Email),
		Phone:   fc.validator.SanitizeInput(in.Phone),
		Message: fc.validator.SanitizeInput(in.Message),
	}

	if strings.TrimSpace(in.Website) != "" {
		return Outcome{State: StateDiscarded, Detail: "honeypot field populated", Submission: sub}
	}

	var fields, errs []string
	if !fc.validator.ValidName(sub.Name) {
		fields = append(fields, "name")
		errs = append(errs, errName)
	}
	if !fc.validator.ValidEmail(sub.Email) {
		fields = append(fields, "email")
		errs = append(errs, errEmail)
	}
	if !fc.validator.ValidPhone(sub.Phone) {
		fields = append(fields, "phone")
		errs = append(errs, errPhone)
	}
	if !fc.validator.ValidMessage(sub.Message) {
		fields = append(fields, "message")
		errs = append(errs, errMessage)
	}
	if len(errs) > 0 {
		return Outcome{
			State:      StateRejected,
			Witty:      wittyPrefixes[rand.IntN(len(wittyPrefixes))],
			Fields:     fields,
			Errors:     errs,
			Detail:     fmt.Sprintf("validation failed: %s", strings.Join(fields, ", ")),
			Submission: sub,
		}
	}

	result, err := fc.relay.Send(ctx, *sub)
	if err != nil {
		return Outcome{
			State:      StateFailed,
			Message:    fallbackMessage,
			Detail:     err.Error(),
			Submission: sub,
		}
	}

	if result.StatusCode >= 200 && result.StatusCode < 300 {
		return Outcome{
			State:      StateRelayed,
			Message:    successMessage,
			HTTPStatus: result.StatusCode,
			LatencyMs:  result.LatencyMs,
			Submission: sub,
		}
	}

	msg := result.Message
	if msg == "" {
		msg = fallbackMessage
	}
	detail := result.Message
	if detail == "" {
		detail = fmt.Sprintf("upstream returned status %d", result.StatusCode)
	}
	return Outcome{
		State:      StateFailed,
		Message:    msg,
		HTTPStatus: result.StatusCode,
		LatencyMs:  result.LatencyMs,
		Detail:     detail,
		Submission: sub,
	}
}
