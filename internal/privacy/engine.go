package privacy

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/EmrahFidan/MissingLink/pkg/errors"
	"github.com/EmrahFidan/MissingLink/pkg/models"
)

// Engine turns a tabular dataset into a differentially private release by
// calibrating and injecting noise under an explicit privacy budget. One
// engine owns one BudgetAccount; the account accumulates across releases.
type Engine struct {
	logger  *logrus.Logger
	account *BudgetAccount
	src     rand.Source
}

// NoiseConfig configures one noise release
type NoiseConfig struct {
	// Mechanism is "laplace" or "gaussian"
	Mechanism string `json:"mechanism"`
	// Epsilon is the total budget for this release, split across columns
	Epsilon float64 `json:"epsilon"`
	// Delta is the failure probability, used by the Gaussian mechanism
	Delta float64 `json:"delta"`
	// Columns are the target columns; empty means all numeric columns
	Columns []string `json:"columns,omitempty"`
	// Bounds are explicit per-column calibration ranges. Columns without an
	// entry get bounds derived from their observed min/max.
	Bounds map[string]models.Bounds `json:"bounds,omitempty"`
	// Allocations optionally overrides the equal epsilon split per column.
	// Columns without an entry keep the equal share.
	Allocations map[string]float64 `json:"allocations,omitempty"`
}

// NewEngine creates an engine with a fresh budget account and time-seeded
// randomness
func NewEngine(logger *logrus.Logger) *Engine {
	return NewEngineWithSeed(logger, uint64(time.Now().UnixNano()))
}

// NewEngineWithSeed creates an engine with deterministic randomness.
// Deterministic draws are for tests only; production callers use NewEngine.
func NewEngineWithSeed(logger *logrus.Logger, seed uint64) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{
		logger:  logger,
		account: NewBudgetAccount(),
		src:     rand.NewSource(seed),
	}
}

// Budget returns the engine's budget account
func (e *Engine) Budget() *BudgetAccount {
	return e.account
}

// resolvedColumn is a target column with its calibration decided, ready for
// noise application.
type resolvedColumn struct {
	column  *models.Column
	bounds  models.Bounds
	source  models.BoundsSource
	epsilon float64
}

// ApplyNoise produces a new dataset in which every value of every target
// column carries one independent draw of calibrated noise, clipped back into
// the column's bounds, plus the per-column and dataset-level report.
//
// Accounting is all-or-nothing: the budget account is charged only after
// every column succeeds, so a failed release leaves both the input dataset
// and the account untouched.
func (e *Engine) ApplyNoise(ctx context.Context, ds *models.Dataset, cfg *NoiseConfig) (*models.Dataset, *models.NoiseReport, error) {
	if cfg == nil {
		return nil, nil, errors.NewConfigurationError(errors.CodeInvalidInput, "noise config is required")
	}

	mech, err := NewMechanism(cfg.Mechanism, e.src)
	if err != nil {
		return nil, nil, err
	}
	if err := mech.ValidateParams(cfg.Epsilon, cfg.Delta); err != nil {
		return nil, nil, err
	}

	targets := cfg.Columns
	if len(targets) == 0 {
		targets = ds.NumericColumnNames()
	}
	if len(targets) == 0 {
		return nil, nil, errors.NewValidationError(
			errors.CodeNoTargetColumns, "dataset has no numeric columns to process")
	}

	// Equal split over the requested targets; a skipped column's share is
	// deliberately not redistributed.
	epsilonPerColumn := cfg.Epsilon / float64(len(targets))

	e.logger.WithFields(logrus.Fields{
		"rows":      ds.Rows(),
		"targets":   len(targets),
		"epsilon":   cfg.Epsilon,
		"delta":     cfg.Delta,
		"mechanism": cfg.Mechanism,
	}).Info("Applying noise to dataset")

	// Resolve every column's bounds before sampling anything, so a
	// degenerate range aborts the release with no value emitted.
	resolved := make([]resolvedColumn, 0, len(targets))
	var skipped []string
	for _, name := range targets {
		col, ok := ds.Column(name)
		if !ok || !col.IsNumeric() {
			skipped = append(skipped, name)
			continue
		}

		var explicit *models.Bounds
		if b, ok := cfg.Bounds[name]; ok {
			explicit = &b
		}
		bounds, source, err := ResolveBounds(col.Floats, explicit)
		if err != nil {
			return nil, nil, err
		}

		eps := epsilonPerColumn
		if alloc, ok := cfg.Allocations[name]; ok {
			if alloc <= 0 {
				return nil, nil, errors.NewConfigurationError(
					errors.CodeInvalidEpsilon,
					fmt.Sprintf("allocation for column %s must be positive, got %g", name, alloc))
			}
			eps = alloc
		}

		resolved = append(resolved, resolvedColumn{column: col, bounds: bounds, source: source, epsilon: eps})
	}

	out := ds.Clone()
	report := &models.NoiseReport{
		ReleaseID:        uuid.New().String(),
		Epsilon:          cfg.Epsilon,
		Delta:            cfg.Delta,
		Mechanism:        cfg.Mechanism,
		PrivacyLevel:     PrivacyLevelForBudget(cfg.Epsilon),
		ColumnsProcessed: make([]string, 0, len(resolved)),
		SkippedColumns:   skipped,
		NoiseStatistics:  make(map[string]models.ColumnNoiseStats, len(resolved)),
		ProcessedAt:      time.Now().UTC(),
	}

	for _, rc := range resolved {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		outCol, _ := out.Column(rc.column.Name)
		sensitivity := rc.bounds.Sensitivity()
		for i, v := range rc.column.Floats {
			noisy := mech.AddNoise(v, sensitivity, rc.epsilon, cfg.Delta)
			outCol.Floats[i] = Clip(noisy, rc.bounds)
		}

		originalMean := stat.Mean(rc.column.Floats, nil)
		noisyMean := stat.Mean(outCol.Floats, nil)
		magnitude := math.Abs(noisyMean - originalMean)
		relErr := 0.0
		if originalMean != 0 {
			relErr = magnitude / math.Abs(originalMean)
		}

		report.ColumnsProcessed = append(report.ColumnsProcessed, rc.column.Name)
		report.NoiseStatistics[rc.column.Name] = models.ColumnNoiseStats{
			OriginalMean:   originalMean,
			NoisyMean:      noisyMean,
			NoiseMagnitude: magnitude,
			RelativeError:  relErr,
			EpsilonUsed:    rc.epsilon,
			Bounds:         rc.bounds,
			BoundsSource:   rc.source,
		}
	}

	report.PrivacyBudgetSpent = cfg.Epsilon
	e.account.Spend(cfg.Epsilon)

	e.logger.WithFields(logrus.Fields{
		"release_id":        report.ReleaseID,
		"columns_processed": len(report.ColumnsProcessed),
		"columns_skipped":   len(skipped),
		"budget_spent":      e.account.Spent(),
	}).Info("Noise release complete")

	return out, report, nil
}

// DPStatistics computes differentially private mean, variance, standard
// deviation and median for one numeric column, spending epsilonPerStat on
// each of the four statistics. A non-positive epsilonPerStat defaults to
// totalEpsilon/4.
func (e *Engine) DPStatistics(ds *models.Dataset, column string, totalEpsilon, epsilonPerStat float64) (*models.DPStatistics, error) {
	col, ok := ds.Column(column)
	if !ok {
		return nil, errors.NewDataError(
			errors.CodeColumnNotFound, fmt.Sprintf("column not found: %s", column))
	}
	if !col.IsNumeric() {
		return nil, errors.NewDataError(
			errors.CodeColumnNotNumeric, fmt.Sprintf("column is not numeric: %s", column))
	}
	if epsilonPerStat <= 0 {
		epsilonPerStat = totalEpsilon / 4
	}
	if epsilonPerStat <= 0 {
		return nil, errors.NewConfigurationError(
			errors.CodeInvalidEpsilon, "epsilon per statistic must be positive")
	}

	bounds, _, err := ResolveBounds(col.Floats, nil)
	if err != nil {
		return nil, err
	}

	mech := &LaplaceMechanism{src: e.src}
	n := float64(col.Len())
	dataRange := bounds.Sensitivity()

	// Per-statistic sensitivities: changing one record moves the mean by at
	// most range/n, the variance by at most range^2/n, the median by at most
	// half the range.
	dpMean := mech.AddNoise(stat.Mean(col.Floats, nil), dataRange/n, epsilonPerStat, 0)
	dpVariance := mech.AddNoise(stat.Variance(col.Floats, nil), dataRange*dataRange/n, epsilonPerStat, 0)
	dpStd := mech.AddNoise(stat.StdDev(col.Floats, nil), dataRange/math.Sqrt(n), epsilonPerStat, 0)
	dpMedian := mech.AddNoise(median(col.Floats), dataRange/2, epsilonPerStat, 0)

	e.account.Spend(epsilonPerStat * 4)

	return &models.DPStatistics{
		Mean:        dpMean,
		Variance:    dpVariance,
		Std:         dpStd,
		Median:      dpMedian,
		EpsilonUsed: epsilonPerStat * 4,
	}, nil
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
