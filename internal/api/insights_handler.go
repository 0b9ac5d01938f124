// File path: internal/api/insights_handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nicodishanthj/propinsight/internal/common"
	"github.com/nicodishanthj/propinsight/internal/insights"
	"github.com/nicodishanthj/propinsight/internal/property"
)

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req insightsRequest
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		logger.Warn("api: insights decode failed", "error", err)
		writeError(w, http.StatusBadRequest, msgInvalidPayload, fmt.Errorf("decode request: %w", err))
		return
	}
	logger.Info("api: insights request received", "question_length", len(req.Question), "property_bytes", len(req.PropertyData))

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()
	result, err := s.pipeline.Answer(ctx, insights.Request{
		Question:     req.Question,
		PropertyData: req.PropertyData,
	})
	if err != nil {
		if errors.Is(err, property.ErrInvalidPayload) {
			writeError(w, http.StatusBadRequest, msgInvalidPayload, err)
			return
		}
		writeError(w, http.StatusInternalServerError, msgInsightsFailed, err)
		return
	}
	w.Header().Set("X-Trace-Id", result.TraceID)
	logger.Info("api: insights request succeeded", "category", result.QuestionType, "trace_id", result.TraceID)
	writeJSON(w, http.StatusOK, result)
}

// handleReadiness always answers 200; degraded backends are reported in the
// body.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	readiness := s.pipeline.Warmup(r.Context())
	writeJSON(w, http.StatusOK, readiness)
}
