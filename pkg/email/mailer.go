package email

import (
	"context"
	"fmt"
	"regexp"
)

// Sender delivers a single transactional email. Delivery is
// fire-and-forget from the caller's perspective: a failed send is
// logged, never rolled back into the triggering operation.
type Sender interface {
	Send(ctx context.Context, params SendParams) error
}

// SendParams represents the parameters for sending an email.
type SendParams struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	Tag      string `json:"tag,omitempty"`
}

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks the minimum requirements for a deliverable message.
func (p SendParams) Validate() error {
	if p.To == "" || !emailRegex.MatchString(p.To) {
		return fmt.Errorf("%w: invalid recipient address", ErrInvalidParams)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	}
	if p.BodyHTML == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidParams)
	}
	return nil
}
