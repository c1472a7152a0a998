package privacy

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/EmrahFidan/MissingLink/pkg/errors"
)

// Mechanism names accepted by the engine and the API layer
const (
	MechanismLaplace  = "laplace"
	MechanismGaussian = "gaussian"
)

// Mechanism produces one independently sampled noisy value per input value.
// Implementations must validate parameters once via ValidateParams before
// AddNoise is called in a loop.
type Mechanism interface {
	Name() string
	ValidateParams(epsilon, delta float64) error
	NoiseScale(sensitivity, epsilon, delta float64) float64
	AddNoise(value, sensitivity, epsilon, delta float64) float64
}

// NewMechanism returns the mechanism for the given kind, drawing randomness
// from src. Unknown kinds are a configuration error.
func NewMechanism(kind string, src rand.Source) (Mechanism, error) {
	switch kind {
	case MechanismLaplace:
		return &LaplaceMechanism{src: src}, nil
	case MechanismGaussian:
		return &GaussianMechanism{src: src}, nil
	default:
		return nil, errors.NewConfigurationError(
			errors.CodeUnknownMechanism,
			fmt.Sprintf("unknown mechanism: %s", kind))
	}
}

// LaplaceMechanism implements pure epsilon-differential privacy by adding
// noise drawn from Laplace(0, sensitivity/epsilon).
type LaplaceMechanism struct {
	src rand.Source
}

func (lm *LaplaceMechanism) Name() string {
	return MechanismLaplace
}

func (lm *LaplaceMechanism) ValidateParams(epsilon, delta float64) error {
	if epsilon <= 0 {
		return errors.NewConfigurationError(
			errors.CodeInvalidEpsilon,
			fmt.Sprintf("epsilon must be positive for Laplace mechanism, got %g", epsilon))
	}
	// Laplace is pure DP; delta is ignored.
	return nil
}

// NoiseScale returns the Laplace scale b = sensitivity / epsilon
func (lm *LaplaceMechanism) NoiseScale(sensitivity, epsilon, delta float64) float64 {
	return sensitivity / epsilon
}

func (lm *LaplaceMechanism) AddNoise(value, sensitivity, epsilon, delta float64) float64 {
	dist := distuv.Laplace{Mu: 0, Scale: lm.NoiseScale(sensitivity, epsilon, delta), Src: lm.src}
	return value + dist.Rand()
}

// GaussianMechanism implements approximate (epsilon, delta)-differential
// privacy using the analytic noise scale
// sigma = sensitivity * sqrt(2 ln(1.25/delta)) / epsilon.
type GaussianMechanism struct {
	src rand.Source
}

func (gm *GaussianMechanism) Name() string {
	return MechanismGaussian
}

func (gm *GaussianMechanism) ValidateParams(epsilon, delta float64) error {
	if epsilon <= 0 {
		return errors.NewConfigurationError(
			errors.CodeInvalidEpsilon,
			fmt.Sprintf("epsilon must be positive for Gaussian mechanism, got %g", epsilon))
	}
	if delta <= 0 || delta >= 1 {
		return errors.NewConfigurationError(
			errors.CodeInvalidDelta,
			fmt.Sprintf("delta must be in (0, 1) for Gaussian mechanism, got %g", delta))
	}
	return nil
}

// NoiseScale returns sigma for the analytic Gaussian mechanism
func (gm *GaussianMechanism) NoiseScale(sensitivity, epsilon, delta float64) float64 {
	return sensitivity * math.Sqrt(2*math.Log(1.25/delta)) / epsilon
}

func (gm *GaussianMechanism) AddNoise(value, sensitivity, epsilon, delta float64) float64 {
	dist := distuv.Normal{Mu: 0, Sigma: gm.NoiseScale(sensitivity, epsilon, delta), Src: gm.src}
	return value + dist.Rand()
}
