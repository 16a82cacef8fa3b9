package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/opsdesk/opsdesk/pkg/toast"
)

// ToastList renders the session's toasts. It is patched into the layout's
// toast region on every store mutation, so dismissed toasts stay in the
// DOM (hidden) until their removal timer fires.
func ToastList(toasts []toast.Toast) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, t := range toasts {
			hidden := ""
			if !t.Open {
				hidden = ` hidden`
			}
			if _, err := fmt.Fprintf(w,
				`<div class="toast toast-%s" id="toast-%s"%s role="status">`+
					`<strong>%s</strong>`,
				templ.EscapeString(string(t.Level)),
				templ.EscapeString(t.ID),
				hidden,
				templ.EscapeString(t.Title),
			); err != nil {
				return err
			}
			if t.Description != "" {
				if _, err := fmt.Fprintf(w, `<p>%s</p>`, templ.EscapeString(t.Description)); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w,
				`<button data-on-click="@post('/notifications/%s/dismiss')">×</button></div>`,
				templ.EscapeString(t.ID),
			); err != nil {
				return err
			}
		}
		return nil
	})
}
