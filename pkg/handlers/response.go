package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON shape of every failed API call.
// Clients display Detail; Error is a stable code for programmatic handling.
type ErrorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// ErrorResponse writes an ErrorBody with the given status and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, detail string) error {
	setJSONHeaders(w)
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(ErrorBody{Error: errorCode, Detail: detail})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	setJSONHeaders(w)
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// API responses carry session-scoped catalog data and must not be cached.
func setJSONHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
}
