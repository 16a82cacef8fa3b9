package binder_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk/pkg/binder"
)

type listRequest struct {
	Status string   `query:"status"`
	Page   int      `query:"page"`
	Tags   []string `query:"tags"`
	Open   *bool    `query:"open"`
	Skip   string   `query:"-"`
}

func TestQuery(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/tickets?status=open&page=3&tags=vpn&tags=printer&open=true", nil)

	var req listRequest
	require.NoError(t, binder.Query()(r, &req))

	assert.Equal(t, "open", req.Status)
	assert.Equal(t, 3, req.Page)
	assert.Equal(t, []string{"vpn", "printer"}, req.Tags)
	require.NotNil(t, req.Open)
	assert.True(t, *req.Open)
	assert.Empty(t, req.Skip)
}

func TestQuery_InvalidInt(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/tickets?page=nope", nil)

	var req listRequest
	err := binder.Query()(r, &req)
	assert.ErrorIs(t, err, binder.ErrInvalidQuery)
}

func TestForm(t *testing.T) {
	t.Parallel()

	type fileRequest struct {
		Subject  string `form:"subject"`
		Priority int    `form:"priority"`
	}

	body := strings.NewReader("subject=VPN+down&priority=2")
	r := httptest.NewRequest(http.MethodPost, "/tickets", body)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var req fileRequest
	require.NoError(t, binder.Form()(r, &req))
	assert.Equal(t, "VPN down", req.Subject)
	assert.Equal(t, 2, req.Priority)
}

func TestForm_NotApplicable(t *testing.T) {
	t.Parallel()

	var req struct{}

	get := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	assert.ErrorIs(t, binder.Form()(get, &req), binder.ErrNotApplicable)

	jsonPost := httptest.NewRequest(http.MethodPost, "/tickets", strings.NewReader("{}"))
	jsonPost.Header.Set("Content-Type", "application/json")
	assert.ErrorIs(t, binder.Form()(jsonPost, &req), binder.ErrNotApplicable)
}

func TestPath(t *testing.T) {
	t.Parallel()

	type showRequest struct {
		ID string `path:"id"`
	}

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", "tkt-42")

	r := httptest.NewRequest(http.MethodGet, "/tickets/tkt-42", nil)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))

	var req showRequest
	require.NoError(t, binder.Path()(r, &req))
	assert.Equal(t, "tkt-42", req.ID)
}

func TestPath_OutsideRouter(t *testing.T) {
	t.Parallel()

	var req struct{}
	r := httptest.NewRequest(http.MethodGet, "/tickets/1", nil)
	assert.ErrorIs(t, binder.Path()(r, &req), binder.ErrNotApplicable)
}

func TestJSON(t *testing.T) {
	t.Parallel()

	type commentRequest struct {
		Body string `json:"body"`
	}

	r := httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(`{"body":"restarted the router"}`))
	r.Header.Set("Content-Type", "application/json")

	var req commentRequest
	require.NoError(t, binder.JSON()(r, &req))
	assert.Equal(t, "restarted the router", req.Body)
}

func TestJSON_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	var req struct {
		Body string `json:"body"`
	}
	r := httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(`{"body":"x","sneaky":true}`))
	r.Header.Set("Content-Type", "application/json")

	assert.ErrorIs(t, binder.JSON()(r, &req), binder.ErrInvalidJSON)
}

func TestJSON_NotApplicableForForms(t *testing.T) {
	t.Parallel()

	var req struct{}
	r := httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader("a=b"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	assert.ErrorIs(t, binder.JSON()(r, &req), binder.ErrNotApplicable)
}

func TestBindTargetMustBePointer(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/?status=open", nil)

	var req listRequest
	err := binder.Query()(r, req)
	assert.ErrorIs(t, err, binder.ErrTargetMustBePointer)
}
