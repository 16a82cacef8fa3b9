package datastore_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk/pkg/datastore"
)

func newRESTClient(t *testing.T, handler http.HandlerFunc) *datastore.REST {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := datastore.NewREST(datastore.RESTConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func TestREST_SelectEncodesQuery(t *testing.T) {
	t.Parallel()

	client := newRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/tickets", r.URL.Path)
		assert.Equal(t, "eq.open", r.URL.Query().Get("status"))
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "t1", "status": "open"},
		})
	})

	rows, err := client.Select(context.Background(), "tickets",
		datastore.Q().Eq("status", "open").OrderBy("created_at", true).Limit(20))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "t1", rows[0]["id"])
}

func TestREST_InsertReturnsRepresentation(t *testing.T) {
	t.Parallel()

	client := newRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Printer on fire", body["subject"])

		body["id"] = "t9"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode([]map[string]any{body})
	})

	row, err := client.Insert(context.Background(), "tickets",
		datastore.Row{"subject": "Printer on fire"})
	require.NoError(t, err)
	assert.Equal(t, "t9", row["id"])
	assert.Equal(t, "Printer on fire", row["subject"])
}

func TestREST_UpdateCountsAffectedRows(t *testing.T) {
	t.Parallel()

	client := newRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.t1", r.URL.Query().Get("id"))

		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "t1", "status": "resolved"},
		})
	})

	affected, err := client.Update(context.Background(), "tickets",
		datastore.Q().Eq("id", "t1"),
		datastore.Row{"status": "resolved"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)
}

func TestREST_DeleteMatchingNothing(t *testing.T) {
	t.Parallel()

	client := newRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	})

	affected, err := client.Delete(context.Background(), "tickets",
		datastore.Q().Eq("id", "ghost"))
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestREST_ErrorStatus(t *testing.T) {
	t.Parallel()

	client := newRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "permission denied", http.StatusForbidden)
	})

	_, err := client.Select(context.Background(), "tickets", datastore.Q())
	require.Error(t, err)
	assert.ErrorIs(t, err, datastore.ErrRequest)
	assert.Contains(t, err.Error(), "403")
}

func TestNewREST_RequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := datastore.NewREST(datastore.RESTConfig{})
	assert.ErrorIs(t, err, datastore.ErrConnect)
}
