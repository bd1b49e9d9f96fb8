package trainer

import "github.com/neurlang/savanna/datasets"
import "github.com/neurlang/savanna/estimator"
import "github.com/pkg/errors"

// DefaultCut is the position at which stacked predictions of a 60000 row
// train partition are split
const DefaultCut = 50000

// Stacked predicts the train partition with the fitted base model and splits
// the predictions positionally at cut. Each predicted label becomes a one
// feature row; rows before cut train the second stage, rows after it test it.
// The train partition was seen by the base model.
func Stacked(base estimator.Model, split datasets.Split, cut int) (datasets.Split, error) {
	if cut <= 0 || cut >= len(split.TrainX) {
		return datasets.Split{}, errors.Errorf("stacked: cut %d outside 1..%d", cut, len(split.TrainX)-1)
	}
	pred, err := base.Predict(split.TrainX)
	if err != nil {
		return datasets.Split{}, errors.Wrap(err, "stacked: predict")
	}
	if len(pred) != len(split.TrainY) {
		return datasets.Split{}, errors.Errorf("stacked: %d predictions for %d rows", len(pred), len(split.TrainY))
	}
	var features = make([][]float64, len(pred))
	for i, p := range pred {
		features[i] = []float64{float64(p)}
	}
	return datasets.Split{
		TrainX: features[:cut],
		TestX:  features[cut:],
		TrainY: split.TrainY[:cut],
		TestY:  split.TrainY[cut:],
	}, nil
}
