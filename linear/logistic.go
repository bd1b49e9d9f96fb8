// Package linear contains a multinomial logistic regression with an L1
// penalty, fitted by the SAGA incremental gradient method.
package linear

import "math"
import "math/rand"
import "sort"

import "github.com/neurlang/savanna/estimator"
import "github.com/pkg/errors"
import "gonum.org/v1/gonum/floats"

// Logistic is an immutable logistic regression configuration
type Logistic struct {
	C       float64 // inverse L1 regularization strength, 1 when zero
	Tol     float64 // relative weight change at which fitting stops, 0.1 when zero
	MaxIter int     // maximum number of epochs, 100 when zero
	Seed    int64   // sample order seed
}

func (l Logistic) withDefaults() Logistic {
	if l.C == 0 {
		l.C = 1
	}
	if l.Tol == 0 {
		l.Tol = 0.1
	}
	if l.MaxIter == 0 {
		l.MaxIter = 100
	}
	return l
}

// LogisticModel is a fitted logistic regression
type LogisticModel struct {
	classes   []int
	coef      [][]float64
	intercept []float64
	Epochs    int  // epochs run
	Converged bool // whether Tol was reached before MaxIter
}

var _ estimator.ProbaModel = (*LogisticModel)(nil)

// Fit trains a model on rows X labeled y. At least two distinct labels are needed.
func (l Logistic) Fit(X [][]float64, y []int) (estimator.Model, error) {
	return l.Train(X, y)
}

// Train is Fit returning the concrete model
func (l Logistic) Train(X [][]float64, y []int) (*LogisticModel, error) {
	l = l.withDefaults()
	if l.C < 0 || l.Tol < 0 || l.MaxIter < 0 {
		return nil, errors.New("linear: negative hyperparameter")
	}
	if len(X) == 0 {
		return nil, errors.New("linear: empty training set")
	}
	if len(X) != len(y) {
		return nil, errors.Errorf("linear: %d rows but %d labels", len(X), len(y))
	}
	n, p := len(X), len(X[0])
	var maxSq float64
	for i, row := range X {
		if len(row) != p {
			return nil, errors.Errorf("linear: row %d has %d features, want %d", i, len(row), p)
		}
		maxSq = math.Max(maxSq, floats.Dot(row, row))
	}
	classes, index := encode(y)
	if len(classes) < 2 {
		return nil, errors.Errorf("linear: needs at least 2 classes, got %d", len(classes))
	}
	k := len(classes)

	var beta = 1 / (l.C * float64(n))
	var lipschitz = 0.5 * (maxSq + 1)
	var step = 1 / (2 * lipschitz)

	m := &LogisticModel{classes: classes, coef: matrix(k, p), intercept: make([]float64, k)}
	var (
		memory    = matrix(n, k) // last gradient coefficients of every sample
		seen      = make([]bool, n)
		sumGrad   = matrix(k, p)
		sumInter  = make([]float64, k)
		numSeen   int
		prev      = matrix(k, p)
		prevInter = make([]float64, k)
		residual  = make([]float64, k)
		delta     = make([]float64, k)
		rng       = rand.New(rand.NewSource(l.Seed))
	)
	for epoch := 0; epoch < l.MaxIter; epoch++ {
		for c := range m.coef {
			copy(prev[c], m.coef[c])
		}
		copy(prevInter, m.intercept)

		for it := 0; it < n; it++ {
			i := rng.Intn(n)
			if !seen[i] {
				seen[i] = true
				numSeen++
			}
			m.softmax(X[i], residual)
			residual[index[i]] -= 1
			floats.SubTo(delta, residual, memory[i])
			copy(memory[i], residual)

			scale := step / float64(numSeen)
			for c := 0; c < k; c++ {
				w := m.coef[c]
				floats.AddScaled(w, -step*delta[c], X[i])
				floats.AddScaled(w, -scale, sumGrad[c])
				floats.AddScaled(sumGrad[c], delta[c], X[i])
				softThreshold(w, step*beta)

				m.intercept[c] -= step*delta[c] + scale*sumInter[c]
				sumInter[c] += delta[c]
			}
		}
		m.Epochs = epoch + 1

		var maxW, maxChange float64
		for c := range m.coef {
			for j, w := range m.coef[c] {
				maxW = math.Max(maxW, math.Abs(w))
				maxChange = math.Max(maxChange, math.Abs(w-prev[c][j]))
			}
			maxW = math.Max(maxW, math.Abs(m.intercept[c]))
			maxChange = math.Max(maxChange, math.Abs(m.intercept[c]-prevInter[c]))
		}
		if (maxW != 0 && maxChange/maxW <= l.Tol) || (maxW == 0 && maxChange == 0) {
			m.Converged = true
			break
		}
	}
	return m, nil
}

func matrix(rows, cols int) [][]float64 {
	var o = make([][]float64, rows)
	for i := range o {
		o[i] = make([]float64, cols)
	}
	return o
}

// softThreshold is the proximal operator of t*|w|
func softThreshold(w []float64, t float64) {
	for j, v := range w {
		switch {
		case v > t:
			w[j] = v - t
		case v < -t:
			w[j] = v + t
		default:
			w[j] = 0
		}
	}
}

func encode(y []int) (classes []int, index []int) {
	var pos = make(map[int]int)
	for _, v := range y {
		if _, ok := pos[v]; !ok {
			pos[v] = 0
			classes = append(classes, v)
		}
	}
	sort.Ints(classes)
	for i, v := range classes {
		pos[v] = i
	}
	index = make([]int, len(y))
	for i, v := range y {
		index[i] = pos[v]
	}
	return
}

// softmax writes the class probabilities of x into out
func (m *LogisticModel) softmax(x, out []float64) {
	for c, w := range m.coef {
		out[c] = floats.Dot(w, x) + m.intercept[c]
	}
	top := floats.Max(out)
	for c := range out {
		out[c] = math.Exp(out[c] - top)
	}
	floats.Scale(1/floats.Sum(out), out)
}

func (m *LogisticModel) check(X [][]float64) error {
	p := len(m.coef[0])
	for i, row := range X {
		if len(row) != p {
			return errors.Errorf("linear: row %d has %d features, want %d", i, len(row), p)
		}
	}
	return nil
}

// PredictProba returns softmax class probabilities in Classes order.
func (m *LogisticModel) PredictProba(X [][]float64) ([][]float64, error) {
	if err := m.check(X); err != nil {
		return nil, err
	}
	var o = make([][]float64, len(X))
	for i, x := range X {
		o[i] = make([]float64, len(m.classes))
		m.softmax(x, o[i])
	}
	return o, nil
}

// Predict returns the most probable class of every row.
func (m *LogisticModel) Predict(X [][]float64) ([]int, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	var o = make([]int, len(X))
	for i, p := range proba {
		o[i] = m.classes[floats.MaxIdx(p)]
	}
	return o, nil
}

// Classes returns the sorted training labels
func (m *LogisticModel) Classes() []int {
	return append([]int(nil), m.classes...)
}

// Coef returns a copy of the class by feature weight matrix
func (m *LogisticModel) Coef() [][]float64 {
	var o = matrix(len(m.coef), len(m.coef[0]))
	for c := range o {
		copy(o[c], m.coef[c])
	}
	return o
}

// Intercept returns a copy of the per class bias
func (m *LogisticModel) Intercept() []float64 {
	return append([]float64(nil), m.intercept...)
}
