package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type handlers struct {
	analyzer Analyzer
	logger   *zap.Logger
}

type analyzeRequest struct {
	Text string `json:"text"`
	// URL optionally records where the text came from. It is not fetched.
	URL string `json:"url,omitempty"`
}

type analyzeURLRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) analyzeText(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	result := h.analyzer.AnalyzeText(r.Context(), req.Text)
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) analyzeURL(w http.ResponseWriter, r *http.Request) {
	var req analyzeURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url is required"})
		return
	}

	result := h.analyzer.AnalyzeURL(r.Context(), req.URL)
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "SIFT API",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("write response failed", zap.Error(err))
	}
}
