package middleware

import (
	"encoding/json"
	"net/http"
)

// APIError is the JSON body of every non-envelope error response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteErrorResponse writes apiErr as JSON with statusCode.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErr)
}

// WriteInternalServerError writes a generic 500. Details belong in the logs.
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &APIError{
		Code:    "internal_error",
		Message: "Internal server error",
	})
}
