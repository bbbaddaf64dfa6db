package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/lmguild/lootkeeper/internal/domain"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	buf.Reset()
	bufferPool.Put(buf)
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgNotAuthorizedError = "You are not authorized to perform this action"
	ErrMsgNotFoundError      = "Resource not found"
	ErrMsgMemberNotFoundErr  = "Member not found"
	ErrMsgItemNotFoundError  = "Item not found"
	ErrMsgRankNotFoundError  = "Rank not found"
)

// respondServiceError maps domain errors onto HTTP status codes. Internal
// detail stays in the logs; clients get the sanitized message.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotAuthorized):
		respondError(w, http.StatusForbidden, ErrMsgNotAuthorizedError)
	case errors.Is(err, domain.ErrMemberNotFound):
		respondError(w, http.StatusNotFound, ErrMsgMemberNotFoundErr)
	case errors.Is(err, domain.ErrItemNotFound):
		respondError(w, http.StatusNotFound, ErrMsgItemNotFoundError)
	case errors.Is(err, domain.ErrRankNotFound):
		respondError(w, http.StatusNotFound, ErrMsgRankNotFoundError)
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, ErrMsgNotFoundError)
	default:
		respondError(w, http.StatusInternalServerError, ErrMsgGenericServerError)
	}
}
