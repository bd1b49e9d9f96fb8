package trainer

import "context"
import "log"
import "time"

import "github.com/neurlang/savanna/datasets"
import "github.com/neurlang/savanna/forest"
import "github.com/neurlang/savanna/layer"
import "github.com/neurlang/savanna/layer/convrf"
import "github.com/neurlang/savanna/metrics"
import "github.com/pkg/errors"

// LayerSpec is the kernel size and stride of one ConvRF layer
type LayerSpec struct {
	Kernel, Stride int
}

// OneLayer and TwoLayer are the layer stacks of the deep ConvRF benchmark
var OneLayer = []LayerSpec{{Kernel: 10, Stride: 2}}
var TwoLayer = []LayerSpec{{Kernel: 10, Stride: 2}, {Kernel: 7, Stride: 1}}

// ConvConfig configures the forests of a ConvRF pipeline
type ConvConfig struct {
	Type       convrf.Kind // forest sharing of every layer
	Trees      int         // trees per layer forest, see convrf.Options
	FinalTrees int         // trees of the final forest, 100 when zero
	Cores      int         // forest workers, forest.DefaultCores() when zero
	Seed       int64       // forest seed
	Verbose    *log.Logger // forest progress
}

// RunOneLayer evaluates a single ConvRF layer on a class subset of the data
func RunOneLayer(ctx context.Context, train, test datasets.Raw, classes, trainIndices []int, cfg ConvConfig) (float64, metrics.Timing, error) {
	return runSubset(ctx, train, test, classes, trainIndices, OneLayer, cfg)
}

// RunTwoLayer evaluates two stacked ConvRF layers on a class subset of the data
func RunTwoLayer(ctx context.Context, train, test datasets.Raw, classes, trainIndices []int, cfg ConvConfig) (float64, metrics.Timing, error) {
	return runSubset(ctx, train, test, classes, trainIndices, TwoLayer, cfg)
}

func runSubset(ctx context.Context, train, test datasets.Raw, classes, trainIndices []int, specs []LayerSpec, cfg ConvConfig) (float64, metrics.Timing, error) {
	train, test, err := datasets.Subset(train, test, classes, trainIndices)
	if err != nil {
		return 0, nil, err
	}
	return RunLayers(ctx, train, test, specs, cfg)
}

// RunLayers fits the layers in order on train, passes test through them, and
// classifies the last feature map with a full forest. The timing holds the
// summed train and test time of all stages, and the final forest alone under
// final_fit and final_predict.
func RunLayers(ctx context.Context, train, test datasets.Raw, specs []LayerSpec, cfg ConvConfig) (float64, metrics.Timing, error) {
	acc, timing, _, err := runLayers(ctx, train, test, specs, cfg)
	return acc, timing, err
}

// runLayers is RunLayers also returning the timing of every layer
func runLayers(ctx context.Context, train, test datasets.Raw, specs []LayerSpec, cfg ConvConfig) (float64, metrics.Timing, []metrics.Timing, error) {
	if len(specs) == 0 {
		return 0, nil, nil, errors.New("no layers")
	}
	if cfg.Cores == 0 {
		cfg.Cores = forest.DefaultCores()
	}
	if cfg.FinalTrees == 0 {
		cfg.FinalTrees = 100
	}
	trainMap, err := layer.FromImages(train.Images, train.Height, train.Width)
	if err != nil {
		return 0, nil, nil, errors.Wrap(err, "train")
	}
	testMap, err := layer.FromImages(test.Images, test.Height, test.Width)
	if err != nil {
		return 0, nil, nil, errors.Wrap(err, "test")
	}

	var timing = metrics.Timing{}
	var perLayer = make([]metrics.Timing, 0, len(specs))
	for n, spec := range specs {
		var l layer.Layer
		l, err = convrf.New(cfg.Type, spec.Kernel, spec.Stride, convrf.Options{
			Trees:   cfg.Trees,
			Cores:   cfg.Cores,
			Seed:    cfg.Seed + int64(n),
			Verbose: cfg.Verbose,
		})
		if err != nil {
			return 0, nil, nil, err
		}
		if trainMap, err = l.Fit(ctx, trainMap, train.Labels); err != nil {
			return 0, nil, nil, errors.Wrapf(err, "layer %d: fit", n+1)
		}
		if testMap, err = l.Predict(ctx, testMap); err != nil {
			return 0, nil, nil, errors.Wrapf(err, "layer %d: predict", n+1)
		}
		perLayer = append(perLayer, l.Timing())
		timing.Add(perLayer[n])
	}
	if err := ctx.Err(); err != nil {
		return 0, nil, nil, err
	}

	start := time.Now()
	var final *forest.Forest
	if cfg.Type == convrf.RerFShared {
		final, err = forest.FastFit(trainMap.Rows(), train.Labels, convrf.RerFProjection.String(), cfg.FinalTrees, cfg.Cores)
	} else {
		final, err = forest.Train(forest.Config{
			Trees:      cfg.FinalTrees,
			Projection: forest.Base,
			Cores:      cfg.Cores,
			Seed:       cfg.Seed,
			Verbose:    cfg.Verbose,
		}, trainMap.Rows(), train.Labels)
	}
	if err != nil {
		return 0, nil, nil, errors.Wrap(err, "final forest")
	}
	timing[metrics.FinalFit] = timing.Since(metrics.Train, start)

	start = time.Now()
	var pred []int
	if cfg.Type == convrf.RerFShared {
		pred, err = forest.FastPredict(testMap.Rows(), final)
	} else {
		pred, err = final.Predict(testMap.Rows())
	}
	if err != nil {
		return 0, nil, nil, errors.Wrap(err, "final forest")
	}
	timing[metrics.FinalPredict] = timing.Since(metrics.Test, start)

	acc, err := metrics.Accuracy(test.Labels, pred)
	if err != nil {
		return 0, nil, nil, err
	}
	return acc, timing, perLayer, nil
}
