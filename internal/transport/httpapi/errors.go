package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/keepson/keepson/internal/domain"
)

type errorCode string

const (
	codeBadRequest         errorCode = "bad_request"
	codeValidationFailed   errorCode = "validation_failed"
	codeUnauthorized       errorCode = "unauthorized"
	codeForbidden          errorCode = "forbidden"
	codeNotFound           errorCode = "not_found"
	codeRecordNotFound     errorCode = "record_not_found"
	codeFileNotFound       errorCode = "file_not_found"
	codeFileTooLarge       errorCode = "file_too_large"
	codeOracleUnavailable  errorCode = "oracle_unavailable"
	codeSummaryUnavailable errorCode = "summary_unavailable"
	codeInternalError      errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrUnauthorized,
		domain.ErrForbidden,
		domain.ErrRecordNotFound,
		domain.ErrFileNotFound,
		domain.ErrNotFound,
		domain.ErrFileTooLarge,
		domain.ErrOracleUnavailable,
		domain.ErrSummaryUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// fileTooLargeHandler handles ErrFileTooLarge with the configured cap in the body.
func fileTooLargeHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrFileTooLarge) {
		return false
	}
	var fte *domain.FileTooLargeError
	if errors.As(err, &fte) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
			"code":      codeFileTooLarge,
			"message":   msg,
			"max_bytes": fte.MaxBytes,
		})
		return true
	}
	writeError(w, http.StatusRequestEntityTooLarge, codeFileTooLarge, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
