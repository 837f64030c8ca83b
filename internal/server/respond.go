package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// errorBody is the failure envelope shared by every endpoint.
type errorBody struct {
	Success           bool           `json:"success"`
	Error             string         `json:"error"`
	AvailableProducts []string       `json:"availableProducts,omitempty"`
	DebugInfo         map[string]any `json:"debugInfo,omitempty"`
	Message           string         `json:"message,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn("response encode failed", zap.Error(err))
	}
}

// badRequest is the 400 tier: the caller sent a missing or unsupported
// required parameter.
func (s *Server) badRequest(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusBadRequest, errorBody{Error: message})
}

// configError is the 500 tier: a credential the endpoint requires is not
// configured. The message names the missing environment variable.
func (s *Server) configError(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: message})
}

// internalError is the 500 tier for unexpected failures.
func (s *Server) internalError(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: message})
}

// noData is the 200 tier: the upstream answered but yielded nothing usable
// and no synthetic substitute applies. The UI renders an empty state.
func (s *Server) noData(w http.ResponseWriter, message string, debug map[string]any) {
	s.writeJSON(w, http.StatusOK, errorBody{Error: message, Message: message, DebugInfo: debug})
}
