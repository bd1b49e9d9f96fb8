// Package estimator defines the fit and predict contract shared by all classifiers
package estimator

// Estimator is an immutable classifier configuration. Fit never mutates the
// receiver, every call returns a freshly fitted Model.
type Estimator interface {

	// Fit trains a model on rows X with integer labels y.
	Fit(X [][]float64, y []int) (Model, error)
}

// Model is a fitted classifier
type Model interface {

	// Predict returns one label per row of X.
	Predict(X [][]float64) ([]int, error)
}

// ProbaModel is a fitted classifier which also reports class probabilities
type ProbaModel interface {
	Model

	// Classes returns the labels in the column order of PredictProba.
	Classes() []int

	// PredictProba returns a row of class probabilities per row of X.
	PredictProba(X [][]float64) ([][]float64, error)
}

// Func adapts a function to the Estimator interface
type Func func(X [][]float64, y []int) (Model, error)

// Fit calls f(X, y)
func (f Func) Fit(X [][]float64, y []int) (Model, error) {
	return f(X, y)
}
