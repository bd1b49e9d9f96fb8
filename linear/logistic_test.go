package linear

import "math"
import "math/rand"
import "testing"

import "github.com/neurlang/savanna/estimator"
import "gotest.tools/assert"

func blobs(n int, seed int64) ([][]float64, []int) {
	centers := [][2]float64{{-2, -2}, {2, -2}, {0, 2}}
	labels := []int{5, 1, 9}
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		c := i % 3
		X[i] = []float64{centers[c][0] + 0.3*rng.NormFloat64(), centers[c][1] + 0.3*rng.NormFloat64()}
		y[i] = labels[c]
	}
	return X, y
}

func TestLogisticBlobs(t *testing.T) {
	X, y := blobs(150, 1)
	m, err := Logistic{Tol: 1e-4, MaxIter: 200}.Train(X, y)
	assert.NilError(t, err)
	assert.DeepEqual(t, m.Classes(), []int{1, 5, 9})

	tX, ty := blobs(90, 2)
	pred, err := m.Predict(tX)
	assert.NilError(t, err)
	var ok int
	for i := range pred {
		if pred[i] == ty[i] {
			ok++
		}
	}
	assert.Assert(t, float64(ok)/float64(len(ty)) > 0.9, "accuracy %d/%d", ok, len(ty))

	proba, err := m.PredictProba(tX[:5])
	assert.NilError(t, err)
	for _, row := range proba {
		var sum float64
		for _, v := range row {
			sum += v
		}
		assert.Assert(t, math.Abs(sum-1) < 1e-9)
	}
}

func TestLogisticStrongPenalty(t *testing.T) {
	X, y := blobs(150, 3)
	m, err := Logistic{C: 1e-6}.Train(X, y)
	assert.NilError(t, err)
	for _, row := range m.Coef() {
		for _, w := range row {
			assert.Equal(t, w, 0.0)
		}
	}
	assert.Equal(t, len(m.Intercept()), 3)
}

func TestLogisticDeterministic(t *testing.T) {
	X, y := blobs(60, 4)
	a, err := Logistic{Seed: 2}.Train(X, y)
	assert.NilError(t, err)
	b, err := Logistic{Seed: 2}.Train(X, y)
	assert.NilError(t, err)
	assert.DeepEqual(t, a.Coef(), b.Coef())
	assert.Assert(t, a.Epochs >= 1 && a.Epochs <= 100)
}

func TestLogisticErrors(t *testing.T) {
	_, err := Logistic{}.Fit(nil, nil)
	assert.ErrorContains(t, err, "empty")
	_, err = Logistic{}.Fit([][]float64{{1}, {2}}, []int{0, 0})
	assert.ErrorContains(t, err, "at least 2 classes")
	_, err = Logistic{}.Fit([][]float64{{1}, {2}}, []int{0})
	assert.ErrorContains(t, err, "labels")
	_, err = Logistic{C: -1}.Fit([][]float64{{1}, {2}}, []int{0, 1})
	assert.ErrorContains(t, err, "negative")

	m, err := Logistic{}.Train([][]float64{{1}, {2}}, []int{0, 1})
	assert.NilError(t, err)
	_, err = m.Predict([][]float64{{1, 2}})
	assert.ErrorContains(t, err, "features")
}

func TestLogisticProbaModel(t *testing.T) {
	X, y := blobs(30, 5)
	m, err := Logistic{}.Fit(X, y)
	assert.NilError(t, err)
	pm, ok := m.(estimator.ProbaModel)
	assert.Assert(t, ok)
	assert.DeepEqual(t, pm.Classes(), []int{1, 5, 9})
}
