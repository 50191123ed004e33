package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// Error codes carried alongside the human-readable message so drag-and-drop
// clients can branch without string matching.
const (
	codeUnauthorized    = "unauthorized"
	codeInvalidBody     = "invalid_body"
	codeNotFound        = "not_found"
	codeEmptyPatch      = "empty_patch"
	codeInvalidPosition = "invalid_position"
	codeCyclicMove      = "cyclic_move"
	codeInvalidTarget   = "invalid_target"
	codeMissingQuery    = "missing_query"
	codeLLMDisabled     = "llm_disabled"
	codeLLMFailed       = "llm_failed"
	codeInternal        = "internal"
)

type errResponse struct {
	Error string `json:"error" validate:"required"`
	Code  string `json:"code" example:"not_found" validate:"required"`
}

func errorBody(code, msg string) errResponse {
	return errResponse{Error: msg, Code: code}
}
