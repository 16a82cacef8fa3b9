package web

import (
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
)

const (
	// datastarAcceptHeader marks a request expecting Server-Sent Events.
	datastarAcceptHeader = "text/event-stream"

	// datastarQueryParam carries datastar signals on GET requests.
	datastarQueryParam = "datastar"
)

// Patch mode aliases so callers don't import datastar directly.
const (
	PatchOuter   = datastar.ElementPatchModeOuter
	PatchInner   = datastar.ElementPatchModeInner
	PatchReplace = datastar.ElementPatchModeReplace
	PatchRemove  = datastar.ElementPatchModeRemove
	PatchAppend  = datastar.ElementPatchModeAppend
	PatchPrepend = datastar.ElementPatchModePrepend
	PatchBefore  = datastar.ElementPatchModeBefore
	PatchAfter   = datastar.ElementPatchModeAfter
)

// IsDataStar reports whether the request came from the datastar client:
// it either accepts SSE, carries the signals query parameter, or posts a
// datastar content type.
func IsDataStar(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), datastarAcceptHeader) {
		return true
	}
	if r.URL.Query().Has(datastarQueryParam) {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/x-datastar")
}

// NewSSE creates a Server-Sent Event generator for datastar responses.
func NewSSE(w http.ResponseWriter, r *http.Request) *datastar.ServerSentEventGenerator {
	return datastar.NewSSE(w, r)
}
