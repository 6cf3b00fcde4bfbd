package handler

import "net/http"

// HandlePing answers with 204 and no body. The call exists so clients can
// refresh the sliding session window; the session middleware does the
// actual work.
func HandlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
