package web

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the envelope every JSON endpoint returns.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail carries machine-readable error information.
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

// WithJSONStatus overrides the 200 default.
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// WithJSONMeta attaches metadata (paging, counts) to the envelope.
func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) {
		r.body.Meta = meta
	}
}

// JSON wraps v in the standard envelope. An error value lands in the error
// field with a status derived from it; anything else is data.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK}

	switch val := v.(type) {
	case ValidationError:
		r.status = http.StatusBadRequest
		r.body.Error = &ErrorDetail{Code: "validation_failed", Message: val.Error(), Details: val}
	case HTTPError:
		r.status = val.Code
		r.body.Error = &ErrorDetail{Code: val.Key, Message: val.Key}
	case error:
		r.status = http.StatusInternalServerError
		r.body.Error = &ErrorDetail{Code: "internal_error", Message: val.Error()}
	default:
		r.body.Data = val
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}
