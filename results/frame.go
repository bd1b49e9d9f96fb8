package results

import "io"

import "github.com/go-gota/gota/dataframe"
import "github.com/go-gota/gota/series"
import "github.com/pkg/errors"

// Frame lays results out one row per result
func Frame(results []Result) dataframe.DataFrame {
	var (
		runs        = make([]string, len(results))
		sets        = make([]string, len(results))
		experiments = make([]string, len(results))
		acc         = make([]float64, len(results))
		train       = make([]float64, len(results))
		test        = make([]float64, len(results))
		finalFit    = make([]float64, len(results))
		finalPred   = make([]float64, len(results))
	)
	for i, r := range results {
		runs[i], sets[i], experiments[i] = r.RunID, r.Dataset, r.Experiment
		acc[i], train[i], test[i] = r.Accuracy, r.Train, r.Test
		finalFit[i], finalPred[i] = r.FinalFit, r.FinalPredict
	}
	return dataframe.New(
		series.New(runs, series.String, "run_id"),
		series.New(sets, series.String, "dataset"),
		series.New(experiments, series.String, "experiment"),
		series.New(acc, series.Float, "accuracy"),
		series.New(train, series.Float, "train"),
		series.New(test, series.Float, "test"),
		series.New(finalFit, series.Float, "final_fit"),
		series.New(finalPred, series.Float, "final_predict"),
	)
}

// WriteCSV writes the results as CSV with a header row
func WriteCSV(w io.Writer, results []Result) error {
	return errors.Wrap(Frame(results).WriteCSV(w), "results: csv")
}

// Best returns the most accurate result of every experiment, sorted by accuracy
func Best(results []Result) dataframe.DataFrame {
	var best = make(map[string]Result)
	var order []string
	for _, r := range results {
		key := r.Dataset + "\x00" + r.Experiment
		b, ok := best[key]
		if !ok {
			order = append(order, key)
		}
		if !ok || r.Accuracy > b.Accuracy {
			best[key] = r
		}
	}
	var o = make([]Result, len(order))
	for i, k := range order {
		o[i] = best[k]
	}
	return Frame(o).Arrange(dataframe.RevSort("accuracy"))
}
