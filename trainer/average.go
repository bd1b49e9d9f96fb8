package trainer

import "fmt"
import "io"
import "time"

import "github.com/neurlang/savanna/datasets"
import "github.com/neurlang/savanna/estimator"
import "github.com/neurlang/savanna/metrics"
import "github.com/pkg/errors"

// AveragePredictions fits a, b and c on the train partition and returns the
// arithmetic mean of their predicted labels for every test row. The mean of
// labels is not a class, it only scores when all three agree or average out
// to the true label.
func AveragePredictions(a, b, c estimator.Estimator, split datasets.Split) ([]float64, error) {
	var mean = make([]float64, len(split.TestX))
	for n, est := range []estimator.Estimator{a, b, c} {
		model, err := est.Fit(split.TrainX, split.TrainY)
		if err != nil {
			return nil, errors.Wrapf(err, "averaged estimator %d: fit", n)
		}
		pred, err := model.Predict(split.TestX)
		if err != nil {
			return nil, errors.Wrapf(err, "averaged estimator %d: predict", n)
		}
		if len(pred) != len(mean) {
			return nil, errors.Errorf("averaged estimator %d: %d predictions for %d rows", n, len(pred), len(mean))
		}
		for i, p := range pred {
			mean[i] += float64(p)
		}
	}
	for i := range mean {
		mean[i] /= 3
	}
	return mean, nil
}

// TestAverage scores AveragePredictions and prints the accuracy to w
func TestAverage(w io.Writer, name string, a, b, c estimator.Estimator, split datasets.Split) (Result, error) {
	var res = Result{Name: name, Timing: metrics.Timing{}}
	start := time.Now()
	mean, err := AveragePredictions(a, b, c, split)
	if err != nil {
		return res, errors.Wrap(err, name)
	}
	res.Timing.Since(metrics.Train, start)
	res.Accuracy, err = metrics.Accuracy(split.TestY, mean)
	if err != nil {
		return res, errors.Wrap(err, name)
	}
	fmt.Fprintln(w, "Accuracy:", res.Accuracy)
	return res, nil
}
