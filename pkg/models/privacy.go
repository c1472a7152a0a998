package models

import (
	"time"
)

// BoundsSource records where the calibration bounds of a column came from
type BoundsSource string

const (
	// BoundsExplicit means the caller supplied the bounds independently of
	// the released data.
	BoundsExplicit BoundsSource = "explicit"
	// BoundsDerived means the bounds were taken from the column's observed
	// min/max. The resulting guarantee is not formal: the bounds themselves
	// depend on the data being released.
	BoundsDerived BoundsSource = "data"
)

// Bounds is the numeric range a column is calibrated and clipped to
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Sensitivity returns the value range used to scale noise
func (b Bounds) Sensitivity() float64 {
	return b.Upper - b.Lower
}

// ColumnNoiseStats describes the noise applied to one column
type ColumnNoiseStats struct {
	OriginalMean   float64      `json:"original_mean"`
	NoisyMean      float64      `json:"noisy_mean"`
	NoiseMagnitude float64      `json:"noise_magnitude"`
	RelativeError  float64      `json:"relative_error"`
	EpsilonUsed    float64      `json:"epsilon_used"`
	Bounds         Bounds       `json:"bounds"`
	BoundsSource   BoundsSource `json:"bounds_source"`
}

// NoiseReport is the dataset-level report of one noise release
type NoiseReport struct {
	ReleaseID          string                      `json:"release_id"`
	Epsilon            float64                     `json:"epsilon"`
	Delta              float64                     `json:"delta"`
	Mechanism          string                      `json:"mechanism"`
	PrivacyLevel       string                      `json:"privacy_level"`
	ColumnsProcessed   []string                    `json:"columns_processed"`
	SkippedColumns     []string                    `json:"skipped_columns,omitempty"`
	NoiseStatistics    map[string]ColumnNoiseStats `json:"noise_statistics"`
	PrivacyBudgetSpent float64                     `json:"privacy_budget_spent"`
	ProcessedAt        time.Time                   `json:"processed_at"`
}

// DPStatistics holds differentially private summary statistics for a column
type DPStatistics struct {
	Mean        float64 `json:"mean"`
	Variance    float64 `json:"variance"`
	Std         float64 `json:"std"`
	Median      float64 `json:"median"`
	EpsilonUsed float64 `json:"epsilon_used"`
}

// KAnonymityResult reports re-identification exposure of a dataset
type KAnonymityResult struct {
	K                    int     `json:"k_value"`
	TotalRecords         int     `json:"total_records"`
	VulnerableRecords    int     `json:"vulnerable_records"`
	VulnerablePercentage float64 `json:"vulnerable_percentage"`
	IsKAnonymous         bool    `json:"is_k_anonymous"`
	SmallestGroupSize    int     `json:"smallest_group_size"`
	AverageGroupSize     float64 `json:"average_group_size"`
	Recommendation       string  `json:"recommendation"`
}

// EpsilonRecommendation maps a (sensitivity, use case) pair to a budget
type EpsilonRecommendation struct {
	DataSensitivity    string  `json:"data_sensitivity"`
	UseCase            string  `json:"use_case"`
	RecommendedEpsilon float64 `json:"recommended_epsilon"`
	PrivacyLevel       string  `json:"privacy_level"`
	Explanation        string  `json:"explanation"`
}

// PrivacyLevelInfo describes one privacy-level bucket
type PrivacyLevelInfo struct {
	Level        string     `json:"level"`
	EpsilonRange [2]float64 `json:"epsilon_range"`
	Description  string     `json:"description"`
}

// PrivacyLossReport quantifies cumulative privacy loss over repeated queries
type PrivacyLossReport struct {
	NumQueries            int     `json:"num_queries"`
	BaseEpsilon           float64 `json:"base_epsilon"`
	SequentialComposition float64 `json:"sequential_composition"`
	AdvancedComposition   float64 `json:"advanced_composition"`
	PrivacyBudgetSpent    float64 `json:"privacy_budget_spent"`
	PrivacyRemaining      float64 `json:"privacy_remaining"`
	Recommendation        string  `json:"recommendation"`
}
