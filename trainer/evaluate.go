package trainer

import "fmt"
import "io"
import "time"

import "github.com/neurlang/savanna/datasets"
import "github.com/neurlang/savanna/estimator"
import "github.com/neurlang/savanna/metrics"
import "github.com/pkg/errors"

// Result is the outcome of one evaluated experiment
type Result struct {
	Name     string
	Accuracy float64
	Timing   metrics.Timing
}

// Test fits est on the train partition, predicts the test partition and
// prints the accuracy to w.
func Test(w io.Writer, name string, est estimator.Estimator, split datasets.Split) (Result, error) {
	var res = Result{Name: name, Timing: metrics.Timing{}}

	start := time.Now()
	model, err := est.Fit(split.TrainX, split.TrainY)
	if err != nil {
		return res, errors.Wrapf(err, "%s: fit", name)
	}
	res.Timing.Since(metrics.Train, start)

	start = time.Now()
	pred, err := model.Predict(split.TestX)
	if err != nil {
		return res, errors.Wrapf(err, "%s: predict", name)
	}
	res.Timing.Since(metrics.Test, start)

	res.Accuracy, err = metrics.Accuracy(split.TestY, pred)
	if err != nil {
		return res, errors.Wrap(err, name)
	}
	fmt.Fprintln(w, "Accuracy:", res.Accuracy)
	return res, nil
}
