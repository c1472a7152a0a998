package privacy

import (
	"math"
	"sync"

	"github.com/EmrahFidan/MissingLink/pkg/models"
)

// DefaultBudgetCeiling is the reporting ceiling used when a caller does not
// supply one. Spending is never blocked; the account only reports.
const DefaultBudgetCeiling = 10.0

// BudgetAccount is a monotonically increasing accumulator of epsilon spent
// by one engine instance. It is safe for concurrent use: a shared account
// keeps spend-then-read consistent across parallel releases.
type BudgetAccount struct {
	mu    sync.Mutex
	spent float64
}

// NewBudgetAccount creates an account with nothing spent
func NewBudgetAccount() *BudgetAccount {
	return &BudgetAccount{}
}

// Spend adds epsilon to the running total. There is no automatic ceiling
// enforcement; callers check Remaining themselves.
func (a *BudgetAccount) Spend(epsilon float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.spent += epsilon
}

// Spent returns the total epsilon spent so far
func (a *BudgetAccount) Spent() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.spent
}

// Remaining returns max(0, ceiling - spent). A non-positive ceiling selects
// the default ceiling.
func (a *BudgetAccount) Remaining(ceiling float64) float64 {
	if ceiling <= 0 {
		ceiling = DefaultBudgetCeiling
	}
	return math.Max(0, ceiling-a.Spent())
}

// Reset sets the running total back to zero
func (a *BudgetAccount) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.spent = 0
}

// SequentialComposition is the privacy cost of k independent releases at the
// same epsilon, each using fresh randomness: epsilon * k.
func SequentialComposition(epsilon float64, k int) float64 {
	return epsilon * float64(k)
}

// AdvancedComposition is the tighter asymptotic bound from the advanced
// composition theorem:
//
//	sqrt(2k ln(1/delta)) * eps + k * eps * (e^eps - 1)
//
// Reported alongside the sequential bound so a caller can pick the lower one.
func AdvancedComposition(epsilon, delta float64, k int) float64 {
	kf := float64(k)
	return math.Sqrt(2*kf*math.Log(1/delta))*epsilon + kf*epsilon*(math.Exp(epsilon)-1)
}

// PrivacyLoss reports the cumulative cost of numQueries releases at the given
// epsilon, together with the account's current state. Composition numbers are
// pure functions of the inputs; only noise releases mutate the account.
func (a *BudgetAccount) PrivacyLoss(epsilon, delta float64, numQueries int) *models.PrivacyLossReport {
	spent := a.Spent()
	return &models.PrivacyLossReport{
		NumQueries:            numQueries,
		BaseEpsilon:           epsilon,
		SequentialComposition: SequentialComposition(epsilon, numQueries),
		AdvancedComposition:   AdvancedComposition(epsilon, delta, numQueries),
		PrivacyBudgetSpent:    spent,
		PrivacyRemaining:      math.Max(0, DefaultBudgetCeiling-spent),
		Recommendation:        budgetRecommendation(spent),
	}
}

func budgetRecommendation(spent float64) string {
	switch {
	case spent < 1.0:
		return "Privacy budget is plentiful, more queries can be made"
	case spent < 5.0:
		return "Moderate budget usage, proceed with care"
	case spent < 10.0:
		return "High budget usage, privacy is degrading"
	default:
		return "Privacy budget exhausted, collecting fresh data may be required"
	}
}
