package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EmrahFidan/MissingLink/pkg/errors"
)

func TestRecommendEpsilonTable(t *testing.T) {
	tests := []struct {
		sensitivity string
		useCase     string
		epsilon     float64
		level       string
	}{
		{SensitivityLow, UseCaseResearch, 2.0, PrivacyLow},
		{SensitivityMedium, UseCaseResearch, 1.0, PrivacyMedium},
		{SensitivityHigh, UseCaseResearch, 0.5, PrivacyHigh},
		{SensitivityLow, UseCaseProduction, 1.0, PrivacyMedium},
		{SensitivityMedium, UseCaseProduction, 0.5, PrivacyHigh},
		{SensitivityHigh, UseCaseProduction, 0.1, PrivacyVeryHigh},
		{SensitivityLow, UseCasePublicRelease, 0.5, PrivacyHigh},
		{SensitivityMedium, UseCasePublicRelease, 0.1, PrivacyVeryHigh},
		{SensitivityHigh, UseCasePublicRelease, 0.05, PrivacyVeryHigh},
	}

	for _, tt := range tests {
		t.Run(tt.useCase+"/"+tt.sensitivity, func(t *testing.T) {
			rec, err := RecommendEpsilon(tt.sensitivity, tt.useCase)
			require.NoError(t, err)
			assert.Equal(t, tt.epsilon, rec.RecommendedEpsilon)
			assert.Equal(t, tt.level, rec.PrivacyLevel)
			assert.Equal(t, tt.sensitivity, rec.DataSensitivity)
			assert.Equal(t, tt.useCase, rec.UseCase)
			assert.NotEmpty(t, rec.Explanation)
		})
	}
}

func TestRecommendEpsilonUnknownEnums(t *testing.T) {
	_, err := RecommendEpsilon("critical", UseCaseResearch)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))

	_, err = RecommendEpsilon(SensitivityHigh, "marketing")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))
}

func TestPrivacyLevels(t *testing.T) {
	levels := PrivacyLevels()
	require.Len(t, levels, 5)

	assert.Equal(t, PrivacyVeryHigh, levels[0].Level)
	assert.Equal(t, PrivacyVeryLow, levels[4].Level)

	// Buckets tile [0.1, 10) without gaps.
	for i := 1; i < len(levels); i++ {
		assert.Equal(t, levels[i-1].EpsilonRange[1], levels[i].EpsilonRange[0])
	}

	// Returned slice is a copy; mutating it must not change the advisor.
	levels[0].Level = "mutated"
	assert.Equal(t, PrivacyVeryHigh, PrivacyLevels()[0].Level)
}

func TestPrivacyLevelForBudget(t *testing.T) {
	tests := []struct {
		epsilon float64
		level   string
	}{
		{0.1, PrivacyVeryHigh},
		{0.3, PrivacyVeryHigh},
		{0.5, PrivacyHigh},
		{1.0, PrivacyMedium},
		{2.0, PrivacyLow},
		{5.0, PrivacyVeryLow},
		{9.99, PrivacyVeryLow},
		{0.05, PrivacyCustom},
		{10.0, PrivacyCustom},
		{42.0, PrivacyCustom},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.level, PrivacyLevelForBudget(tt.epsilon), "epsilon=%g", tt.epsilon)
	}
}

func TestPrivacyLevelForEpsilonIsOpenEnded(t *testing.T) {
	// The recommendation mapping has no custom bucket: extreme values still
	// classify, so an epsilon of 0.05 counts as very high privacy.
	assert.Equal(t, PrivacyVeryHigh, privacyLevelForEpsilon(0.05))
	assert.Equal(t, PrivacyVeryLow, privacyLevelForEpsilon(100))
}
