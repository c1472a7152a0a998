package privacy

import (
	"fmt"

	"github.com/EmrahFidan/MissingLink/pkg/errors"
	"github.com/EmrahFidan/MissingLink/pkg/models"
)

// Privacy levels ordered from strongest to weakest guarantee
const (
	PrivacyVeryHigh = "very_high"
	PrivacyHigh     = "high"
	PrivacyMedium   = "medium"
	PrivacyLow      = "low"
	PrivacyVeryLow  = "very_low"
	PrivacyCustom   = "custom"
)

// Data sensitivity classes accepted by the advisor
const (
	SensitivityLow    = "low"
	SensitivityMedium = "medium"
	SensitivityHigh   = "high"
)

// Use cases accepted by the advisor
const (
	UseCaseResearch      = "research"
	UseCaseProduction    = "production"
	UseCasePublicRelease = "public_release"
)

var privacyLevelBuckets = []models.PrivacyLevelInfo{
	{Level: PrivacyVeryHigh, EpsilonRange: [2]float64{0.1, 0.5}, Description: "Very high privacy, low accuracy"},
	{Level: PrivacyHigh, EpsilonRange: [2]float64{0.5, 1.0}, Description: "High privacy, moderate accuracy"},
	{Level: PrivacyMedium, EpsilonRange: [2]float64{1.0, 2.0}, Description: "Balanced privacy and accuracy"},
	{Level: PrivacyLow, EpsilonRange: [2]float64{2.0, 5.0}, Description: "Low privacy, high accuracy"},
	{Level: PrivacyVeryLow, EpsilonRange: [2]float64{5.0, 10.0}, Description: "Very low privacy, very high accuracy"},
}

// Recommended epsilon per use case and data sensitivity: tighter budgets for
// higher sensitivity and more public use cases.
var epsilonTable = map[string]map[string]float64{
	UseCaseResearch:      {SensitivityLow: 2.0, SensitivityMedium: 1.0, SensitivityHigh: 0.5},
	UseCaseProduction:    {SensitivityLow: 1.0, SensitivityMedium: 0.5, SensitivityHigh: 0.1},
	UseCasePublicRelease: {SensitivityLow: 0.5, SensitivityMedium: 0.1, SensitivityHigh: 0.05},
}

// PrivacyLevels lists the epsilon buckets with their half-open ranges
// [min, max) and descriptions.
func PrivacyLevels() []models.PrivacyLevelInfo {
	out := make([]models.PrivacyLevelInfo, len(privacyLevelBuckets))
	copy(out, privacyLevelBuckets)
	return out
}

// PrivacyLevelForBudget maps a total epsilon to its bucket. Values outside
// every half-open [min, max) range report as custom.
func PrivacyLevelForBudget(epsilon float64) string {
	for _, b := range privacyLevelBuckets {
		if epsilon >= b.EpsilonRange[0] && epsilon < b.EpsilonRange[1] {
			return b.Level
		}
	}
	return PrivacyCustom
}

// privacyLevelForEpsilon is the open-ended mapping used for recommendations:
// any epsilon below 0.5 counts as very high, anything at 5 or above as very low.
func privacyLevelForEpsilon(epsilon float64) string {
	switch {
	case epsilon < 0.5:
		return PrivacyVeryHigh
	case epsilon < 1.0:
		return PrivacyHigh
	case epsilon < 2.0:
		return PrivacyMedium
	case epsilon < 5.0:
		return PrivacyLow
	default:
		return PrivacyVeryLow
	}
}

// RecommendEpsilon returns the fixed table recommendation for a
// (data sensitivity, use case) pair. No state is read or written.
func RecommendEpsilon(dataSensitivity, useCase string) (*models.EpsilonRecommendation, error) {
	row, ok := epsilonTable[useCase]
	if !ok {
		return nil, errors.NewConfigurationError(
			errors.CodeInvalidEnum,
			fmt.Sprintf("unknown use case: %s", useCase))
	}
	epsilon, ok := row[dataSensitivity]
	if !ok {
		return nil, errors.NewConfigurationError(
			errors.CodeInvalidEnum,
			fmt.Sprintf("unknown data sensitivity: %s", dataSensitivity))
	}

	level := privacyLevelForEpsilon(epsilon)
	return &models.EpsilonRecommendation{
		DataSensitivity:    dataSensitivity,
		UseCase:            useCase,
		RecommendedEpsilon: epsilon,
		PrivacyLevel:       level,
		Explanation: fmt.Sprintf(
			"For %s with %s-sensitivity data, epsilon=%g is recommended. This provides %s privacy.",
			useCase, dataSensitivity, epsilon, level),
	}, nil
}
