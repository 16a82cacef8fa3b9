// Package notify delivers toast notifications to the browser over a
// per-session Server-Sent Events stream and handles the dismiss callbacks
// the rendered toasts post back.
package notify
