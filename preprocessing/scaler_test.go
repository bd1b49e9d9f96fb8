package preprocessing

import "math"
import "testing"

import "gonum.org/v1/gonum/stat"
import "gotest.tools/assert"

func column(X [][]float64, j int) (o []float64) {
	for _, row := range X {
		o = append(o, row[j])
	}
	return
}

func TestStandardScalerTrainStatistics(t *testing.T) {
	var train = [][]float64{{1, 10, 5}, {2, 20, 5}, {3, 30, 5}, {6, 40, 5}}
	var s StandardScaler
	scaled, err := s.FitTransform(train)
	assert.NilError(t, err)

	for j := 0; j < 2; j++ {
		mean, variance := stat.MeanVariance(column(scaled, j), nil)
		variance *= 3.0 / 4.0
		assert.Assert(t, math.Abs(mean) < 1e-12, "column %d mean %v", j, mean)
		assert.Assert(t, math.Abs(variance-1) < 1e-12, "column %d variance %v", j, variance)
	}
	// constant column maps to zero
	for _, v := range column(scaled, 2) {
		assert.Equal(t, v, 0.0)
	}
}

func TestStandardScalerTestUsesTrainStatistics(t *testing.T) {
	var s StandardScaler
	assert.NilError(t, s.Fit([][]float64{{0}, {2}}))
	out, err := s.Transform([][]float64{{4}})
	assert.NilError(t, err)
	// mean 1, std 1
	assert.Equal(t, out[0][0], 3.0)
}

func TestStandardScalerErrors(t *testing.T) {
	var s StandardScaler
	_, err := s.Transform([][]float64{{1}})
	assert.ErrorContains(t, err, "before fit")
	assert.ErrorContains(t, s.Fit(nil), "empty")
	assert.ErrorContains(t, s.Fit([][]float64{{1, 2}, {1}}), "row 1")
}
