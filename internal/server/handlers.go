package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/EmrahFidan/MissingLink/internal/observability/metrics"
	"github.com/EmrahFidan/MissingLink/internal/privacy"
	"github.com/EmrahFidan/MissingLink/pkg/errors"
	"github.com/EmrahFidan/MissingLink/pkg/models"
)

// Build information, set by the main package at startup
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// API boundary limits. The engine itself accepts any positive epsilon; the
// HTTP surface narrows the range to keep obviously useless or reckless
// budgets out of a service deployment.
const (
	minEpsilon = 0.01
	maxEpsilon = 10.0
	minDelta   = 1e-10
	maxDelta   = 0.1
	minK       = 2
)

// Handlers holds the HTTP handler dependencies
type Handlers struct {
	engine    *privacy.Engine
	analyzer  *privacy.KAnonymityAnalyzer
	config    *Config
	metrics   *metrics.PrometheusMetrics
	logger    *logrus.Logger
	startTime time.Time
}

// NewHandlers creates the handler set around one engine instance
func NewHandlers(engine *privacy.Engine, config *Config, pm *metrics.PrometheusMetrics, logger *logrus.Logger) *Handlers {
	if logger == nil {
		logger = logrus.New()
	}
	if config == nil {
		config = DefaultConfig()
	}
	return &Handlers{
		engine:    engine,
		analyzer:  privacy.NewKAnonymityAnalyzer(logger),
		config:    config,
		metrics:   pm,
		logger:    logger,
		startTime: time.Now(),
	}
}

type applyNoiseRequest struct {
	Data        map[string]json.RawMessage `json:"data"`
	Mechanism   string                     `json:"mechanism"`
	Epsilon     float64                    `json:"epsilon"`
	Delta       float64                    `json:"delta"`
	Columns     []string                   `json:"columns,omitempty"`
	Bounds      map[string]models.Bounds   `json:"bounds,omitempty"`
	Allocations map[string]float64         `json:"allocations,omitempty"`
}

type applyNoiseResponse struct {
	Data   map[string]any      `json:"data"`
	Report *models.NoiseReport `json:"report"`
}

// ApplyNoise handles POST /api/v1/privacy/apply-noise
func (h *Handlers) ApplyNoise(w http.ResponseWriter, r *http.Request) {
	var req applyNoiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.NewValidationError(errors.CodeInvalidInput, "invalid request body"))
		return
	}

	if req.Mechanism == "" {
		req.Mechanism = privacy.MechanismLaplace
	}
	if err := h.validateEpsilon(req.Epsilon); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Mechanism == privacy.MechanismGaussian {
		if req.Delta < minDelta || req.Delta > maxDelta {
			h.writeError(w, r, errors.NewValidationError(errors.CodeInvalidDelta,
				fmt.Sprintf("delta must be in [%g, %g], got %g", minDelta, maxDelta, req.Delta)))
			return
		}
	}

	ds, err := models.DatasetFromWire(req.Data)
	if err != nil {
		h.writeError(w, r, errors.NewValidationError(errors.CodeInvalidInput, err.Error()))
		return
	}

	start := time.Now()
	out, report, err := h.engine.ApplyNoise(r.Context(), ds, &privacy.NoiseConfig{
		Mechanism:   req.Mechanism,
		Epsilon:     req.Epsilon,
		Delta:       req.Delta,
		Columns:     req.Columns,
		Bounds:      req.Bounds,
		Allocations: req.Allocations,
	})
	if err != nil {
		h.metrics.RecordNoiseRelease(req.Mechanism, "error", time.Since(start), h.engine.Budget().Spent())
		h.writeError(w, r, err)
		return
	}
	h.metrics.RecordNoiseRelease(req.Mechanism, "success", time.Since(start), h.engine.Budget().Spent())

	if snapshot := h.budgetSnapshot(); snapshot.Remaining == 0 {
		h.logger.WithFields(logrus.Fields{
			"budget_spent":   snapshot.Spent,
			"budget_ceiling": snapshot.Ceiling,
			"request_id":     getRequestID(r),
		}).Warn("Privacy budget ceiling exceeded; releases are not blocked")
	}

	h.writeJSON(w, http.StatusOK, applyNoiseResponse{
		Data:   models.WireData(out),
		Report: report,
	})
}

type dpStatisticsRequest struct {
	Data           map[string]json.RawMessage `json:"data"`
	Column         string                     `json:"column"`
	Epsilon        float64                    `json:"epsilon"`
	EpsilonPerStat float64                    `json:"epsilon_per_stat,omitempty"`
}

// DPStatistics handles POST /api/v1/privacy/statistics
func (h *Handlers) DPStatistics(w http.ResponseWriter, r *http.Request) {
	var req dpStatisticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.NewValidationError(errors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := h.validateEpsilon(req.Epsilon); err != nil {
		h.writeError(w, r, err)
		return
	}

	ds, err := models.DatasetFromWire(req.Data)
	if err != nil {
		h.writeError(w, r, errors.NewValidationError(errors.CodeInvalidInput, err.Error()))
		return
	}

	stats, err := h.engine.DPStatistics(ds, req.Column, req.Epsilon, req.EpsilonPerStat)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.metrics.SetBudgetSpent(h.engine.Budget().Spent())

	h.writeJSON(w, http.StatusOK, stats)
}

type kAnonymityRequest struct {
	Data             map[string]json.RawMessage `json:"data"`
	QuasiIdentifiers []string                   `json:"quasi_identifiers"`
	K                int                        `json:"k"`
}

// CheckKAnonymity handles POST /api/v1/privacy/check-k-anonymity
func (h *Handlers) CheckKAnonymity(w http.ResponseWriter, r *http.Request) {
	var req kAnonymityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.NewValidationError(errors.CodeInvalidInput, "invalid request body"))
		return
	}

	if req.K < minK {
		h.writeError(w, r, errors.NewValidationError(errors.CodeInvalidKThreshold,
			fmt.Sprintf("k must be at least %d, got %d", minK, req.K)))
		return
	}

	ds, err := models.DatasetFromWire(req.Data)
	if err != nil {
		h.writeError(w, r, errors.NewValidationError(errors.CodeInvalidInput, err.Error()))
		return
	}

	result, err := h.analyzer.Analyze(ds, req.QuasiIdentifiers, req.K)
	if err != nil {
		h.metrics.RecordKAnonymityCheck("error", 0)
		h.writeError(w, r, err)
		return
	}
	h.metrics.RecordKAnonymityCheck("success", result.VulnerablePercentage)

	h.writeJSON(w, http.StatusOK, result)
}

type epsilonRecommendationRequest struct {
	DataSensitivity string `json:"data_sensitivity"`
	UseCase         string `json:"use_case"`
}

// EpsilonRecommendation handles POST /api/v1/privacy/epsilon-recommendation
func (h *Handlers) EpsilonRecommendation(w http.ResponseWriter, r *http.Request) {
	var req epsilonRecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.NewValidationError(errors.CodeInvalidInput, "invalid request body"))
		return
	}

	rec, err := privacy.RecommendEpsilon(req.DataSensitivity, req.UseCase)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.metrics.RecordAdvisorLookup(req.UseCase)

	h.writeJSON(w, http.StatusOK, rec)
}

type privacyLossRequest struct {
	Epsilon    float64 `json:"epsilon"`
	Delta      float64 `json:"delta,omitempty"`
	NumQueries int     `json:"num_queries"`
}

// PrivacyLoss handles POST /api/v1/privacy/privacy-loss
func (h *Handlers) PrivacyLoss(w http.ResponseWriter, r *http.Request) {
	var req privacyLossRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.NewValidationError(errors.CodeInvalidInput, "invalid request body"))
		return
	}

	if err := h.validateEpsilon(req.Epsilon); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.NumQueries < 1 {
		h.writeError(w, r, errors.NewValidationError(errors.CodeInvalidInput,
			fmt.Sprintf("num_queries must be at least 1, got %d", req.NumQueries)))
		return
	}
	if req.Delta == 0 {
		req.Delta = 1e-5
	}

	h.writeJSON(w, http.StatusOK, h.engine.Budget().PrivacyLoss(req.Epsilon, req.Delta, req.NumQueries))
}

// PrivacyLevels handles GET /api/v1/privacy/privacy-levels
func (h *Handlers) PrivacyLevels(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"levels": privacy.PrivacyLevels(),
	})
}

type budgetResponse struct {
	Spent        float64 `json:"privacy_budget_spent"`
	Remaining    float64 `json:"privacy_budget_remaining"`
	Ceiling      float64 `json:"budget_ceiling"`
	PrivacyLevel string  `json:"privacy_level"`
}

// Budget handles GET /api/v1/privacy/budget
func (h *Handlers) Budget(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.budgetSnapshot())
}

// ResetBudget handles POST /api/v1/privacy/budget/reset
func (h *Handlers) ResetBudget(w http.ResponseWriter, r *http.Request) {
	h.engine.Budget().Reset()
	h.metrics.SetBudgetSpent(0)

	h.logger.WithField("request_id", getRequestID(r)).Info("Privacy budget reset")
	h.writeJSON(w, http.StatusOK, h.budgetSnapshot())
}

func (h *Handlers) budgetSnapshot() budgetResponse {
	ceiling := h.config.BudgetCeiling
	if ceiling <= 0 {
		ceiling = privacy.DefaultBudgetCeiling
	}
	account := h.engine.Budget()
	return budgetResponse{
		Spent:        account.Spent(),
		Remaining:    account.Remaining(ceiling),
		Ceiling:      ceiling,
		PrivacyLevel: privacy.PrivacyLevelForBudget(account.Spent()),
	}
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startTime).String(),
	})
}

// Ready handles GET /health/ready
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Live handles GET /health/live
func (h *Handlers) Live(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Version handles GET /version
func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version":    Version,
		"git_commit": GitCommit,
		"build_time": BuildTime,
	})
}

// NotFound handles unmatched routes
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusNotFound, errors.ErrorResponse{
		Error: errors.NewValidationError("NOT_FOUND",
			fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path)),
		RequestID: getRequestID(r),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	})
}

func (h *Handlers) validateEpsilon(epsilon float64) error {
	if epsilon < minEpsilon || epsilon > maxEpsilon {
		return errors.NewValidationError(errors.CodeInvalidEpsilon,
			fmt.Sprintf("epsilon must be in [%g, %g], got %g", minEpsilon, maxEpsilon, epsilon))
	}
	return nil
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.WrapError(err, errors.ErrorTypeInternal, errors.CodeInternalError, "internal error")
	}

	h.logger.WithFields(logrus.Fields{
		"error_type": appErr.Type,
		"error_code": appErr.Code,
		"path":       r.URL.Path,
		"request_id": getRequestID(r),
	}).Warn(appErr.Message)

	h.writeJSON(w, errors.HTTPStatusFor(appErr), errors.ErrorResponse{
		Error:     appErr,
		RequestID: getRequestID(r),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	})
}
