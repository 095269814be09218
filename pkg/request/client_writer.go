package request

import "net/http"

// ClientWriter wraps a http.ResponseWriter and records the status code
// written, so middleware can report it after the handler has run.
type ClientWriter struct {
	http.ResponseWriter

	statusCode int
}

// NewClientWriter creates a new ClientWriter.
func NewClientWriter(w http.ResponseWriter) *ClientWriter {
	return &ClientWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader records the status code and forwards it.
func (w *ClientWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// StatusCode returns the status code written, defaulting to 200.
func (w *ClientWriter) StatusCode() int {
	return w.statusCode
}
