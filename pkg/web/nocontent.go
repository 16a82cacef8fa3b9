package web

import "net/http"

type noContentResponse struct{}

func (noContentResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// NoContent responds 204 with an empty body, for action endpoints whose
// effect reaches the client through another channel.
func NoContent() Response {
	return noContentResponse{}
}
