package api

import (
	"encoding/json"
	"time"
)

// ReviewRequest carries raw artifact text plus an optional kind hint
// (auto|yaml|sh, defaulting to auto).
type ReviewRequest struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

// RiskItem is one ranked finding in a review response.
type RiskItem struct {
	Severity       string `json:"severity"`
	Code           string `json:"code"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

// ReviewResponse is the formatted review plus the raw engine result.
type ReviewResponse struct {
	Decision string          `json:"decision"`
	Summary  map[string]int  `json:"summary"`
	TopRisks []RiskItem      `json:"top_risks"`
	Markdown string          `json:"markdown"`
	Result   json.RawMessage `json:"result"`
}

// ReviewHistoryItem is one persisted review in the history listing.
type ReviewHistoryItem struct {
	ID        string         `json:"id"`
	Service   string         `json:"service"`
	Kind      string         `json:"kind"`
	Decision  string         `json:"decision"`
	Score     int            `json:"score"`
	Summary   map[string]int `json:"summary"`
	CreatedAt time.Time      `json:"created_at"`
}

// ErrorResponse carries a hard failure (parse error, policy violation) back
// to the caller with the offending detail intact.
type ErrorResponse struct {
	Error string `json:"error"`
}
