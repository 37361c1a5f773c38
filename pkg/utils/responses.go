package utils

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the failure body: a machine-readable type plus a
// human-readable message.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
}

func ResponseJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// ------------- Success responses -------------

// returns 200 OK
func ResponseSuccess(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusOK, Response{Message: message, Data: data})
}

// returns 201 Created
func ResponseCreated(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusCreated, Response{Message: message, Data: data})
}

// ------------- Error responses -------------

// returns 400 Bad Request
func ResponseBadRequest(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusBadRequest, ErrorResponse{Type: "AuthError", Message: message})
}

// returns 401 Unauthorized
func ResponseUnauthorized(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusUnauthorized, ErrorResponse{Type: "Unauthorized", Message: message})
}

// returns 422 Unprocessable Entity with per-field validation errors
func ResponseValidationError(w http.ResponseWriter, errors map[string]string) {
	ResponseJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Type:    "ValidationError",
		Message: "Validation failed",
		Errors:  errors,
	})
}

// returns 500 Internal Server Error
func ResponseInternalError(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusInternalServerError, ErrorResponse{Type: "InternalServerError", Message: message})
}

// ResponseAppError maps a typed service error to status code and body.
func ResponseAppError(w http.ResponseWriter, err error) {
	kind := KindOf(err)
	message := MessageOf(err)

	switch kind {
	case KindNotFound:
		ResponseJSON(w, http.StatusNotFound, ErrorResponse{Type: "AuthError", Message: message})
	case KindInvalidCredential:
		ResponseJSON(w, http.StatusUnauthorized, ErrorResponse{Type: "AuthError", Message: message})
	case KindUnauthorized:
		ResponseJSON(w, http.StatusUnauthorized, ErrorResponse{Type: "Unauthorized", Message: message})
	case KindConflict:
		ResponseJSON(w, http.StatusConflict, ErrorResponse{Type: "AuthError", Message: message})
	case KindConfiguration:
		ResponseJSON(w, http.StatusInternalServerError, ErrorResponse{Type: "ConfigurationError", Message: message})
	case KindTransport:
		ResponseJSON(w, http.StatusInternalServerError, ErrorResponse{Type: "TransportError", Message: message})
	default:
		ResponseInternalError(w, "Internal server error")
	}
}
