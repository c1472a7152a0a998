package privacy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EmrahFidan/MissingLink/pkg/errors"
	"github.com/EmrahFidan/MissingLink/pkg/models"
)

func ageDataset() *models.Dataset {
	return models.NewDataset(
		models.NewNumericColumn("age", []float64{10, 20, 30, 40, 50}),
	)
}

func TestApplyNoiseSingleColumn(t *testing.T) {
	engine := NewEngineWithSeed(nil, 42)
	ds := ageDataset()

	out, report, err := engine.ApplyNoise(context.Background(), ds, &NoiseConfig{
		Mechanism: MechanismLaplace,
		Epsilon:   1.0,
		Bounds:    map[string]models.Bounds{"age": {Lower: 0, Upper: 100}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"age"}, report.ColumnsProcessed)
	assert.Empty(t, report.SkippedColumns)
	assert.Equal(t, 1.0, report.PrivacyBudgetSpent)
	assert.Equal(t, PrivacyMedium, report.PrivacyLevel)
	assert.NotEmpty(t, report.ReleaseID)

	outCol, ok := out.Column("age")
	require.True(t, ok)
	require.Equal(t, 5, outCol.Len())
	for _, v := range outCol.Floats {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}

	stats, ok := report.NoiseStatistics["age"]
	require.True(t, ok)
	assert.Equal(t, 30.0, stats.OriginalMean)
	assert.Equal(t, 1.0, stats.EpsilonUsed)
	assert.Equal(t, models.Bounds{Lower: 0, Upper: 100}, stats.Bounds)
	assert.Equal(t, models.BoundsExplicit, stats.BoundsSource)

	// The input dataset is never mutated.
	inCol, _ := ds.Column("age")
	assert.Equal(t, []float64{10, 20, 30, 40, 50}, inCol.Floats)
}

func TestApplyNoiseDerivedBounds(t *testing.T) {
	engine := NewEngineWithSeed(nil, 7)

	_, report, err := engine.ApplyNoise(context.Background(), ageDataset(), &NoiseConfig{
		Mechanism: MechanismLaplace,
		Epsilon:   2.0,
	})
	require.NoError(t, err)

	stats := report.NoiseStatistics["age"]
	assert.Equal(t, models.Bounds{Lower: 10, Upper: 50}, stats.Bounds)
	assert.Equal(t, models.BoundsDerived, stats.BoundsSource)
}

func TestApplyNoiseSplitsEpsilonAcrossColumns(t *testing.T) {
	engine := NewEngineWithSeed(nil, 1)
	ds := models.NewDataset(
		models.NewNumericColumn("age", []float64{20, 30, 40}),
		models.NewNumericColumn("salary", []float64{100, 200, 300}),
		models.NewCategoricalColumn("dept", []string{"eng", "hr", "ops"}),
	)

	_, report, err := engine.ApplyNoise(context.Background(), ds, &NoiseConfig{
		Mechanism: MechanismLaplace,
		Epsilon:   1.0,
	})
	require.NoError(t, err)

	// Default targets are the numeric columns only.
	assert.ElementsMatch(t, []string{"age", "salary"}, report.ColumnsProcessed)
	assert.Equal(t, 0.5, report.NoiseStatistics["age"].EpsilonUsed)
	assert.Equal(t, 0.5, report.NoiseStatistics["salary"].EpsilonUsed)
	assert.Equal(t, 1.0, report.PrivacyBudgetSpent)
}

func TestApplyNoiseSkipsNonNumericAndAbsent(t *testing.T) {
	engine := NewEngineWithSeed(nil, 1)
	ds := models.NewDataset(
		models.NewNumericColumn("age", []float64{20, 30, 40}),
		models.NewCategoricalColumn("dept", []string{"eng", "hr", "ops"}),
	)

	_, report, err := engine.ApplyNoise(context.Background(), ds, &NoiseConfig{
		Mechanism: MechanismLaplace,
		Epsilon:   1.5,
		Columns:   []string{"age", "dept", "missing"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"age"}, report.ColumnsProcessed)
	assert.ElementsMatch(t, []string{"dept", "missing"}, report.SkippedColumns)

	// The split is over the requested targets, not the surviving ones, so a
	// skipped column's share is not redistributed.
	assert.Equal(t, 0.5, report.NoiseStatistics["age"].EpsilonUsed)
}

func TestApplyNoiseAllocationsOverrideSplit(t *testing.T) {
	engine := NewEngineWithSeed(nil, 1)
	ds := models.NewDataset(
		models.NewNumericColumn("age", []float64{20, 30, 40}),
		models.NewNumericColumn("salary", []float64{100, 200, 300}),
	)

	_, report, err := engine.ApplyNoise(context.Background(), ds, &NoiseConfig{
		Mechanism:   MechanismLaplace,
		Epsilon:     1.0,
		Allocations: map[string]float64{"salary": 0.8},
	})
	require.NoError(t, err)

	assert.Equal(t, 0.5, report.NoiseStatistics["age"].EpsilonUsed)
	assert.Equal(t, 0.8, report.NoiseStatistics["salary"].EpsilonUsed)

	_, _, err = engine.ApplyNoise(context.Background(), ds, &NoiseConfig{
		Mechanism:   MechanismLaplace,
		Epsilon:     1.0,
		Allocations: map[string]float64{"salary": -0.2},
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))
}

func TestApplyNoiseDegenerateBoundsAbortsRelease(t *testing.T) {
	engine := NewEngineWithSeed(nil, 9)
	ds := models.NewDataset(
		models.NewNumericColumn("age", []float64{20, 30, 40}),
		models.NewNumericColumn("flag", []float64{1, 1, 1}),
	)

	out, report, err := engine.ApplyNoise(context.Background(), ds, &NoiseConfig{
		Mechanism: MechanismLaplace,
		Epsilon:   1.0,
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Nil(t, out)
	assert.Nil(t, report)

	// A failed release charges nothing.
	assert.Equal(t, 0.0, engine.Budget().Spent())
}

func TestApplyNoiseEmptyColumnAbortsRelease(t *testing.T) {
	engine := NewEngineWithSeed(nil, 9)
	ds := models.NewDataset(
		models.NewNumericColumn("age", nil),
	)

	// Explicit bounds must not let an empty column through; its report
	// statistics would be NaN.
	out, report, err := engine.ApplyNoise(context.Background(), ds, &NoiseConfig{
		Mechanism: MechanismLaplace,
		Epsilon:   1.0,
		Bounds:    map[string]models.Bounds{"age": {Lower: 0, Upper: 100}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Nil(t, out)
	assert.Nil(t, report)
	assert.Equal(t, 0.0, engine.Budget().Spent())
}

func TestApplyNoiseGaussianRequiresDelta(t *testing.T) {
	engine := NewEngineWithSeed(nil, 5)

	_, _, err := engine.ApplyNoise(context.Background(), ageDataset(), &NoiseConfig{
		Mechanism: MechanismGaussian,
		Epsilon:   1.0,
		Delta:     0,
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))

	_, report, err := engine.ApplyNoise(context.Background(), ageDataset(), &NoiseConfig{
		Mechanism: MechanismGaussian,
		Epsilon:   1.0,
		Delta:     1e-5,
	})
	require.NoError(t, err)
	assert.Equal(t, MechanismGaussian, report.Mechanism)
	assert.Equal(t, 1e-5, report.Delta)
}

func TestApplyNoiseUnknownMechanism(t *testing.T) {
	engine := NewEngineWithSeed(nil, 5)

	_, _, err := engine.ApplyNoise(context.Background(), ageDataset(), &NoiseConfig{
		Mechanism: "exponential",
		Epsilon:   1.0,
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))
	assert.Equal(t, 0.0, engine.Budget().Spent())
}

func TestApplyNoiseNoNumericColumns(t *testing.T) {
	engine := NewEngineWithSeed(nil, 5)
	ds := models.NewDataset(
		models.NewCategoricalColumn("dept", []string{"eng", "hr"}),
	)

	_, _, err := engine.ApplyNoise(context.Background(), ds, &NoiseConfig{
		Mechanism: MechanismLaplace,
		Epsilon:   1.0,
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestApplyNoiseAccumulatesBudget(t *testing.T) {
	engine := NewEngineWithSeed(nil, 11)
	cfg := &NoiseConfig{
		Mechanism: MechanismLaplace,
		Epsilon:   1.0,
		Bounds:    map[string]models.Bounds{"age": {Lower: 0, Upper: 100}},
	}

	for i := 0; i < 4; i++ {
		_, _, err := engine.ApplyNoise(context.Background(), ageDataset(), cfg)
		require.NoError(t, err)
	}

	assert.Equal(t, 4.0, engine.Budget().Spent())
	assert.Equal(t, 6.0, engine.Budget().Remaining(0))
}

func TestApplyNoiseCancelledContext(t *testing.T) {
	engine := NewEngineWithSeed(nil, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := engine.ApplyNoise(ctx, ageDataset(), &NoiseConfig{
		Mechanism: MechanismLaplace,
		Epsilon:   1.0,
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0.0, engine.Budget().Spent())
}

func TestApplyNoiseNilConfig(t *testing.T) {
	engine := NewEngineWithSeed(nil, 3)

	_, _, err := engine.ApplyNoise(context.Background(), ageDataset(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))
}

func TestDPStatistics(t *testing.T) {
	engine := NewEngineWithSeed(nil, 17)
	ds := models.NewDataset(
		models.NewNumericColumn("salary", []float64{100, 200, 300, 400, 500}),
	)

	stats, err := engine.DPStatistics(ds, "salary", 4.0, 0)
	require.NoError(t, err)

	assert.Equal(t, 4.0, stats.EpsilonUsed)
	assert.Equal(t, 4.0, engine.Budget().Spent())

	// With epsilon 1.0 per statistic and range 400, noise is large but the
	// estimates stay in a plausible neighborhood of the true values.
	assert.InDelta(t, 300.0, stats.Mean, 2000)
	assert.InDelta(t, 300.0, stats.Median, 2000)
}

func TestDPStatisticsColumnErrors(t *testing.T) {
	engine := NewEngineWithSeed(nil, 17)
	ds := models.NewDataset(
		models.NewCategoricalColumn("dept", []string{"eng", "hr"}),
	)

	_, err := engine.DPStatistics(ds, "missing", 1.0, 0)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))

	_, err = engine.DPStatistics(ds, "dept", 1.0, 0)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))

	assert.Equal(t, 0.0, engine.Budget().Spent())
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 3.0, median([]float64{5, 1, 3, 2, 4}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 0.0, median(nil))
}
