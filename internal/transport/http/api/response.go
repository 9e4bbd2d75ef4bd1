package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	MessageInvalid  = "The given data was invalid."
	MessageInternal = "internal server error"
)

// Envelope is the body of every JSON response. Failures carry a message and,
// for validation failures, the violated fields with their reasons.
type Envelope struct {
	Status    string              `json:"status"`
	Data      any                 `json:"data,omitempty"`
	Message   string              `json:"message,omitempty"`
	Code      string              `json:"code,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Status: StatusSuccess, Data: data, RequestID: requestID})
}

func Message(w http.ResponseWriter, message, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Message: message, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Status: StatusError, Code: code, Message: message, RequestID: requestID})
}

func FailValidation(w http.ResponseWriter, fields map[string][]string, requestID string) {
	WriteJSON(w, http.StatusUnprocessableEntity, Envelope{
		Status:    StatusError,
		Code:      "validation_error",
		Message:   MessageInvalid,
		Errors:    fields,
		RequestID: requestID,
	})
}

func Internal(w http.ResponseWriter, requestID string) {
	Fail(w, http.StatusInternalServerError, "internal_error", MessageInternal, requestID)
}
