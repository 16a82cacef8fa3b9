package email

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

// Sender delivers a transactional email. Implementations classify failures
// with the package sentinel errors.
type Sender interface {
	Send(ctx context.Context, params SendParams) error
}

// SendParams describes one outbound message.
type SendParams struct {
	To       string
	Subject  string
	BodyHTML string
	// Tag groups messages in the provider dashboard ("ticket-resolved").
	Tag string
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate rejects params a provider would bounce anyway.
func (p SendParams) Validate() error {
	var errs []error
	if p.To == "" || !emailRegex.MatchString(p.To) {
		errs = append(errs, fmt.Errorf("invalid recipient %q", p.To))
	}
	if strings.TrimSpace(p.Subject) == "" {
		errs = append(errs, errors.New("subject is required"))
	}
	if strings.TrimSpace(p.BodyHTML) == "" {
		errs = append(errs, errors.New("body is required"))
	}
	if len(errs) > 0 {
		return errors.Join(ErrInvalidParams, errors.Join(errs...))
	}
	return nil
}

// RenderBody renders a templ component into the HTML string SendParams
// carries, so views double as email templates.
func RenderBody(ctx context.Context, component templ.Component) (string, error) {
	var sb strings.Builder
	if err := component.Render(ctx, &sb); err != nil {
		return "", errors.Join(ErrRenderBody, err)
	}
	return sb.String(), nil
}
