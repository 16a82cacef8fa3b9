package web_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk/pkg/toast"
	"github.com/opsdesk/opsdesk/pkg/web"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestErrorHandler_PlainRequestGetsStatusPage(t *testing.T) {
	t.Parallel()

	handle := web.NewErrorHandler[web.Context](discardLogger(), nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/tickets/missing", nil)
	handle(web.NewContext(w, r), web.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestErrorHandler_ValidationErrorIs400(t *testing.T) {
	t.Parallel()

	handle := web.NewErrorHandler[web.Context](discardLogger(), nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/tickets", nil)
	handle(web.NewContext(w, r), web.ValidationError{"subject": {"is required"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "subject: is required")
}

func TestErrorHandler_DataStarPushesSessionToast(t *testing.T) {
	t.Parallel()

	hub := toast.NewHub()
	defer hub.Close()
	handle := web.NewErrorHandler[web.Context](discardLogger(), hub)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/tickets", nil)
	r.Header.Set("Accept", "text/event-stream")
	r = r.WithContext(web.WithSessionID(r.Context(), "sess-1"))

	handle(web.NewContext(w, r), web.ErrForbidden)

	got := hub.Store("sess-1").Toasts()
	require.Len(t, got, 1)
	assert.Equal(t, toast.LevelWarning, got[0].Level)
	assert.Equal(t, "forbidden", got[0].Description)

	// 5xx escalates the toast level.
	handle(web.NewContext(httptest.NewRecorder(), r), web.ErrInternalServerError)
	got = hub.Store("sess-1").Toasts()
	require.NotEmpty(t, got)
	assert.Equal(t, toast.LevelError, got[0].Level)
}
