// File path: internal/api/types.go
package api

import (
	"encoding/json"

	"github.com/nicodishanthj/propinsight/internal/common"
)

const (
	msgInvalidPayload = "Invalid request payload"
	msgInsightsFailed = "Failed to generate property insights"
)

type insightsRequest struct {
	Question     string          `json:"question"`
	PropertyData json.RawMessage `json:"propertyData"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type logsResponse struct {
	Entries []common.LogEntry `json:"entries"`
}
