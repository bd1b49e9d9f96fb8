// Package preprocessing implements feature scaling
package preprocessing

import "math"

import "github.com/pkg/errors"
import "gonum.org/v1/gonum/stat"

// StandardScaler removes the per-column mean and scales to unit variance.
// Statistics come from the matrix passed to Fit only.
type StandardScaler struct {
	Mean  []float64 // per-column mean
	Scale []float64 // per-column population standard deviation, 1 for constant columns
}

// Fit learns column means and standard deviations of X.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return errors.New("standard scaler: fit on empty matrix")
	}
	var cols = len(X[0])
	var column = make([]float64, len(X))
	s.Mean = make([]float64, cols)
	s.Scale = make([]float64, cols)
	for j := 0; j < cols; j++ {
		for i, row := range X {
			if len(row) != cols {
				return errors.Errorf("standard scaler: row %d has %d columns, expected %d", i, len(row), cols)
			}
			column[i] = row[j]
		}
		var mean, variance = stat.MeanVariance(column, nil)
		if len(column) > 1 {
			// population variance
			variance *= float64(len(column)-1) / float64(len(column))
		} else {
			variance = 0
		}
		s.Mean[j] = mean
		s.Scale[j] = math.Sqrt(variance)
		if s.Scale[j] == 0 || math.IsNaN(s.Scale[j]) {
			s.Scale[j] = 1
		}
	}
	return nil
}

// Transform returns a scaled copy of X.
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if s.Mean == nil {
		return nil, errors.New("standard scaler: transform before fit")
	}
	var o = make([][]float64, len(X))
	for i, row := range X {
		if len(row) != len(s.Mean) {
			return nil, errors.Errorf("standard scaler: row %d has %d columns, fitted on %d", i, len(row), len(s.Mean))
		}
		o[i] = make([]float64, len(row))
		for j, v := range row {
			o[i][j] = (v - s.Mean[j]) / s.Scale[j]
		}
	}
	return o, nil
}

// FitTransform fits X and returns it scaled.
func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
