package handler

import "net/http"

// HandleRoot answers the bare domain. The API is private; the banner says so.
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Hello! You've reached a private API. Go away."))
}

// HandleHealthCheck is the liveness probe.
//
// HTTP: GET /health_check
func HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Healthy"))
}
