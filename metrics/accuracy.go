// Package metrics implements classification scores
package metrics

import "github.com/pkg/errors"

// ErrLength is returned when predictions and labels differ in length.
var ErrLength = errors.New("metrics: predictions and labels differ in length")

// ErrEmpty is returned when there is nothing to score.
var ErrEmpty = errors.New("metrics: no samples to score")

// Accuracy returns the fraction of predictions exactly equal to the true label.
// Float predictions (averaged labels) only count when they hit the label exactly.
func Accuracy[P int | float64](yTrue []int, yPred []P) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, errors.Wrapf(ErrLength, "%d labels, %d predictions", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return 0, ErrEmpty
	}
	var hits int
	for i, y := range yTrue {
		if float64(yPred[i]) == float64(y) {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue)), nil
}
