package web

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

// ToastRegionID is the DOM id the notification stream patches toasts into.
const ToastRegionID = "toast-region"

const datastarScript = `<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@main/bundles/datastar.js"></script>`

// Layout wraps body in the shared page chrome: document head with the
// datastar bundle, top navigation, and the toast region that subscribes to
// the notification stream on load.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!doctype html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title>%s</head><body>`,
			templ.EscapeString(title), datastarScript,
		); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w,
			`<nav class="topnav"><a href="/">OpsDesk</a> <a href="/tickets">Tickets</a> <a href="/dashboard">Dashboard</a></nav>`+
				`<div id="%s" class="toasts" data-on-load="@get('/notifications/stream')"></div><main>`,
			ToastRegionID,
		); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// NotFoundPage is the full 404 page.
func NotFoundPage(path string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<section class="error-page"><h1>404</h1><p>No page at %s.</p><p><a href="/">Back to the dashboard</a></p></section>`,
			templ.EscapeString(path))
		return err
	})
	return Layout("Not found", body)
}

// NotFoundHandler renders the 404 page for unmatched routes.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_ = NotFoundPage(r.URL.Path).Render(r.Context(), w)
	}
}
