package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/opsdesk/opsdesk/pkg/logger"
	"github.com/opsdesk/opsdesk/pkg/toast"
)

// errorInfo is a classified error ready for rendering.
type errorInfo struct {
	status   int
	message  string
	level    toast.Level
	logLevel slog.Level
}

func classifyError(err error) errorInfo {
	info := errorInfo{
		status:  http.StatusInternalServerError,
		message: "Something went wrong processing your request",
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		info.status = httpErr.Code
		info.message = httpErr.Key
	}

	var validationErr ValidationError
	if errors.As(err, &validationErr) {
		info.status = http.StatusBadRequest
		info.message = validationErr.Error()
	}

	switch {
	case info.status >= http.StatusInternalServerError:
		info.level = toast.LevelError
		info.logLevel = slog.LevelError
	case info.status >= http.StatusBadRequest:
		info.level = toast.LevelWarning
		info.logLevel = slog.LevelWarn
	default:
		info.level = toast.LevelInfo
		info.logLevel = slog.LevelInfo
	}
	return info
}

// NewErrorHandler builds the application error handler. Failures are logged;
// datastar requests get an error toast pushed into the caller's session
// store (delivered over the notification stream), plain requests get a
// standard HTTP error response.
func NewErrorHandler[C Context](log *slog.Logger, toasts *toast.Hub) ErrorHandler[C] {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx C, err error) {
		info := classifyError(err)
		r := ctx.Request()
		sessionID := SessionID(r.Context())

		log.LogAttrs(r.Context(), info.logLevel, "request failed",
			logger.Error(err),
			slog.Int("status_code", info.status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.SessionID(sessionID),
			logger.Component("web"),
		)

		if IsDataStar(r) && toasts != nil && sessionID != "" {
			toasts.Store(sessionID).Show(toast.Payload{
				Level:       info.level,
				Title:       "Request failed",
				Description: info.message,
			})
			return
		}

		http.Error(ctx.ResponseWriter(), info.message, info.status)
	}
}
