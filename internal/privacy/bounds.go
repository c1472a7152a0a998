package privacy

import (
	"fmt"

	"github.com/EmrahFidan/MissingLink/pkg/errors"
	"github.com/EmrahFidan/MissingLink/pkg/models"
)

// ResolveBounds determines the calibration range for a column. Explicit
// bounds are used verbatim; otherwise the observed min/max of the values is
// used. Data-derived bounds are not independent of the release and carry no
// formal guarantee, so the source is reported alongside the range.
//
// Bounds with upper <= lower would give the mechanism a zero scale and leak
// exact values, so they are rejected before any noise is computed.
func ResolveBounds(values []float64, explicit *models.Bounds) (models.Bounds, models.BoundsSource, error) {
	// An empty column has no values to noise and its report statistics would
	// be NaN, so it is rejected whichever way the bounds arrive.
	if len(values) == 0 {
		return models.Bounds{}, "", errors.NewValidationError(
			errors.CodeEmptyDataset, "column has no values")
	}

	if explicit != nil {
		if explicit.Upper <= explicit.Lower {
			return models.Bounds{}, "", errors.NewValidationError(
				errors.CodeDegenerateBounds,
				fmt.Sprintf("bounds (%g, %g) give non-positive sensitivity", explicit.Lower, explicit.Upper))
		}
		return *explicit, models.BoundsExplicit, nil
	}

	lower, upper := values[0], values[0]
	for _, v := range values[1:] {
		if v < lower {
			lower = v
		}
		if v > upper {
			upper = v
		}
	}

	if upper <= lower {
		return models.Bounds{}, "", errors.NewValidationError(
			errors.CodeDegenerateBounds,
			fmt.Sprintf("derived bounds (%g, %g) give non-positive sensitivity", lower, upper))
	}

	return models.Bounds{Lower: lower, Upper: upper}, models.BoundsDerived, nil
}

// Clip forces a value into [lower, upper]. Clipping is deterministic
// post-processing of public bounds and consumes no additional budget.
func Clip(value float64, bounds models.Bounds) float64 {
	if value < bounds.Lower {
		return bounds.Lower
	}
	if value > bounds.Upper {
		return bounds.Upper
	}
	return value
}
