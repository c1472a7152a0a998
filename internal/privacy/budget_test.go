package privacy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetAccountSpend(t *testing.T) {
	account := NewBudgetAccount()
	assert.Equal(t, 0.0, account.Spent())

	account.Spend(1.5)
	account.Spend(2.5)
	assert.Equal(t, 4.0, account.Spent())
}

func TestBudgetAccountRemaining(t *testing.T) {
	account := NewBudgetAccount()
	account.Spend(4.0)

	assert.Equal(t, 6.0, account.Remaining(0))   // default ceiling
	assert.Equal(t, 1.0, account.Remaining(5.0)) // caller-supplied ceiling

	// Overspend never yields a negative remainder.
	account.Spend(10.0)
	assert.Equal(t, 0.0, account.Remaining(0))
}

func TestBudgetAccountReset(t *testing.T) {
	account := NewBudgetAccount()
	account.Spend(7.0)
	account.Reset()
	assert.Equal(t, 0.0, account.Spent())
	assert.Equal(t, DefaultBudgetCeiling, account.Remaining(0))
}

func TestSequentialComposition(t *testing.T) {
	assert.Equal(t, 5.0, SequentialComposition(1.0, 5))
	assert.Equal(t, 0.5, SequentialComposition(0.1, 5))
	assert.Equal(t, 0.0, SequentialComposition(1.0, 0))
}

func TestAdvancedComposition(t *testing.T) {
	epsilon, delta := 0.5, 1e-5
	k := 10

	expected := math.Sqrt(2*float64(k)*math.Log(1/delta))*epsilon +
		float64(k)*epsilon*(math.Exp(epsilon)-1)
	assert.InDelta(t, expected, AdvancedComposition(epsilon, delta, k), 1e-12)
}

func TestAdvancedBeatsSequentialForManySmallQueries(t *testing.T) {
	// The whole point of the advanced bound: for many low-epsilon queries
	// it is tighter than the linear sum.
	epsilon, delta := 0.1, 1e-5
	k := 100

	assert.Less(t, AdvancedComposition(epsilon, delta, k), SequentialComposition(epsilon, k))
}

func TestPrivacyLossReport(t *testing.T) {
	account := NewBudgetAccount()
	account.Spend(2.0)
	account.Spend(2.0)

	report := account.PrivacyLoss(0.5, 1e-5, 4)
	require.NotNil(t, report)

	assert.Equal(t, 4, report.NumQueries)
	assert.Equal(t, 0.5, report.BaseEpsilon)
	assert.Equal(t, 2.0, report.SequentialComposition)
	assert.Equal(t, 4.0, report.PrivacyBudgetSpent)
	assert.Equal(t, 6.0, report.PrivacyRemaining)
	assert.InDelta(t, AdvancedComposition(0.5, 1e-5, 4), report.AdvancedComposition, 1e-12)
	assert.NotEmpty(t, report.Recommendation)
}

func TestBudgetRecommendationBuckets(t *testing.T) {
	tests := []struct {
		spent    float64
		contains string
	}{
		{0.5, "plentiful"},
		{3.0, "Moderate"},
		{8.0, "High"},
		{12.0, "exhausted"},
	}

	for _, tt := range tests {
		assert.Contains(t, budgetRecommendation(tt.spent), tt.contains)
	}
}
