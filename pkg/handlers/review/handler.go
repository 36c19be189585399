package review

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ops-tools/run-sentinel/pkg/models/api"
	"github.com/ops-tools/run-sentinel/pkg/models/domain"
	storemodels "github.com/ops-tools/run-sentinel/pkg/models/store"
	"github.com/ops-tools/run-sentinel/pkg/services/generate"
	reviewsvc "github.com/ops-tools/run-sentinel/pkg/services/review"
	"github.com/ops-tools/run-sentinel/pkg/services/review/format"
	"github.com/ops-tools/run-sentinel/pkg/services/secrets"
	reviewstore "github.com/ops-tools/run-sentinel/pkg/store/duckdb/review"
)

const defaultHistoryLimit = 20

type Handler struct {
	store reviewstore.Store // optional; nil disables history
}

func NewHandler(store reviewstore.Store) *Handler {
	return &Handler{store: store}
}

// CreateReview runs the policy engine over the posted artifact text and
// returns the formatted verdict together with the raw engine result. The
// outcome is persisted to the history store when one is configured.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}

	result, err := reviewsvc.Review(req.Text, req.Kind)
	if err != nil {
		// Parse failures and bad kind hints are hard errors, not clean reports.
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	formatted, err := format.Format(result)
	if err != nil {
		logger.Error().Err(err).Msg("failed to format review")
		writeError(w, http.StatusInternalServerError, "failed to format review")
		return
	}

	if h.store != nil {
		record := toRecord(result, formatted)
		if err := h.store.Add(ctx, record); err != nil {
			// History is best effort; the review itself already succeeded.
			logger.Error().Err(err).Str("review_id", record.ID).Msg("failed to persist review")
		}
	}

	raw, err := json.Marshal(result)
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode review result")
		writeError(w, http.StatusInternalServerError, "failed to encode review result")
		return
	}

	resp := api.ReviewResponse{
		Decision: string(formatted.Decision),
		Summary:  summaryToAPI(formatted.Summary),
		TopRisks: risksToAPI(formatted.TopRisks),
		Markdown: formatted.Markdown,
		Result:   raw,
	}
	writeJSON(w, logger, http.StatusOK, resp)
}

// ListReviews returns the most recent persisted reviews.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	if h.store == nil {
		writeJSON(w, logger, http.StatusOK, []api.ReviewHistoryItem{})
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.store.List(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list reviews")
		writeError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	items := make([]api.ReviewHistoryItem, 0, len(records))
	for _, rec := range records {
		items = append(items, api.ReviewHistoryItem{
			ID:        rec.ID,
			Service:   rec.Service,
			Kind:      rec.Kind,
			Decision:  rec.Decision,
			Score:     rec.Score,
			Summary:   rec.Summary,
			CreatedAt: rec.CreatedAt,
		})
	}
	writeJSON(w, logger, http.StatusOK, items)
}

// CreateTemplates builds the deployment templates for the posted
// configuration. Policy violations and structural invariant failures come
// back as 422 with the offending field in the message.
func (h *Handler) CreateTemplates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var cfg domain.CloudRunConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	artifacts, err := generate.Build(cfg)
	if err != nil {
		var vErr *generate.ValidationError
		var pErr *secrets.PolicyViolationError
		if errors.As(err, &vErr) || errors.As(err, &pErr) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		logger.Error().Err(err).Msg("failed to build templates")
		writeError(w, http.StatusInternalServerError, "failed to build templates")
		return
	}

	resp := api.GenerateResponse{
		Files: map[string]string{
			"service.yaml":       artifacts.ServiceYAML,
			"cloudrun_deploy.sh": artifacts.DeployScript,
			"README_cloudrun.md": artifacts.Readme,
		},
		Notes: "Generated Cloud Run config templates (no secrets). Use DRY_RUN=true for validation; set IMAGE after build+push.",
	}
	writeJSON(w, logger, http.StatusOK, resp)
}

func toRecord(result domain.ReviewResult, formatted domain.FormattedReview) storemodels.ReviewRecord {
	service := "multiple"
	kind := string(domain.ReportKindAuto)
	score := 0
	if !result.IsAuto() {
		service = result.Report.Service
		kind = string(result.Report.Kind)
		score = result.Report.Score
	} else {
		for _, sub := range result.Auto {
			if !sub.Skipped && sub.Report != nil {
				score += sub.Report.Score
			}
		}
	}

	return storemodels.ReviewRecord{
		ID:       uuid.NewString(),
		Service:  service,
		Kind:     kind,
		Decision: string(formatted.Decision),
		Score:    score,
		Summary:  summaryToAPI(formatted.Summary),
		Markdown: formatted.Markdown,
	}
}

func summaryToAPI(summary map[domain.Severity]int) map[string]int {
	out := make(map[string]int, len(summary))
	for sev, n := range summary {
		out[string(sev)] = n
	}
	return out
}

func risksToAPI(risks []domain.RankedFinding) []api.RiskItem {
	out := make([]api.RiskItem, 0, len(risks))
	for _, risk := range risks {
		out = append(out, api.RiskItem{
			Severity:       string(risk.Severity),
			Code:           risk.Code,
			Message:        risk.Message,
			Recommendation: risk.Recommendation,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: msg})
}
