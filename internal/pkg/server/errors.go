package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/anicoll/home-bridge/internal/pkg/rf"
	"github.com/anicoll/home-bridge/internal/pkg/temperature"
	"github.com/anicoll/home-bridge/internal/pkg/tradfri"
)

const (
	codeBadRequest    = "bad_request"
	codeUnauthorised  = "unauthorised"
	codeNotFound      = "not_found"
	codeGatewayFailed = "gateway_failed"
	codeInternal      = "internal_error"
)

// Error is the body of every failed request.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, "OK")
}

// handleError maps domain errors to their status code.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var transportErr *tradfri.TransportError
	var sendErr *rf.SendError
	switch {
	case tradfri.IsInputError(err), errors.Is(err, errBadRequest):
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
	case tradfri.IsNotFound(err),
		errors.Is(err, rf.ErrOutletNotFound),
		errors.Is(err, rf.ErrShutterNotFound),
		errors.Is(err, temperature.ErrSensorNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.As(err, &transportErr), errors.As(err, &sendErr):
		s.logger.Error("device request failed", zap.Error(err), zap.String("path", r.URL.Path))
		writeError(w, http.StatusBadGateway, codeGatewayFailed, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err), zap.String("path", r.URL.Path))
		writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}
