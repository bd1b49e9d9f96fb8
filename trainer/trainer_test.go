package trainer

import "bytes"
import "context"
import "math/rand"
import "strings"
import "testing"

import "github.com/neurlang/savanna/datasets"
import "github.com/neurlang/savanna/estimator"
import "github.com/neurlang/savanna/layer/convrf"
import "github.com/neurlang/savanna/metrics"
import "gotest.tools/assert"

type constant int

func (c constant) Predict(X [][]float64) ([]int, error) {
	var o = make([]int, len(X))
	for i := range o {
		o[i] = int(c)
	}
	return o, nil
}

func fixed(label int) estimator.Estimator {
	return estimator.Func(func(X [][]float64, y []int) (estimator.Model, error) {
		return constant(label), nil
	})
}

type firstFeature struct{}

func (firstFeature) Predict(X [][]float64) ([]int, error) {
	var o = make([]int, len(X))
	for i, x := range X {
		o[i] = int(x[0])
	}
	return o, nil
}

func smallSplit() datasets.Split {
	return datasets.Split{
		TrainX: [][]float64{{1}, {2}, {3}, {4}, {5}, {6}},
		TrainY: []int{1, 2, 3, 1, 2, 3},
		TestX:  [][]float64{{1}, {2}, {3}, {4}},
		TestY:  []int{1, 2, 1, 3},
	}
}

func TestTestConstant(t *testing.T) {
	var out bytes.Buffer
	res, err := Test(&out, "constant", fixed(1), smallSplit())
	assert.NilError(t, err)
	assert.Equal(t, res.Accuracy, 0.5)
	assert.Equal(t, res.Name, "constant")
	assert.Equal(t, out.String(), "Accuracy: 0.5\n")
	_, ok := res.Timing[metrics.Train]
	assert.Assert(t, ok)
}

func TestAveragePredictions(t *testing.T) {
	mean, err := AveragePredictions(fixed(1), fixed(2), fixed(3), smallSplit())
	assert.NilError(t, err)
	assert.DeepEqual(t, mean, []float64{2, 2, 2, 2})

	var out bytes.Buffer
	res, err := TestAverage(&out, "avg", fixed(1), fixed(2), fixed(3), smallSplit())
	assert.NilError(t, err)
	assert.Equal(t, res.Accuracy, 0.25)

	// mean of 1, 1 and 2 is never a label
	res, err = TestAverage(&out, "avg", fixed(1), fixed(1), fixed(2), smallSplit())
	assert.NilError(t, err)
	assert.Equal(t, res.Accuracy, 0.0)
}

func TestStacked(t *testing.T) {
	s, err := Stacked(firstFeature{}, smallSplit(), 4)
	assert.NilError(t, err)
	assert.DeepEqual(t, s.TrainX, [][]float64{{1}, {2}, {3}, {4}})
	assert.DeepEqual(t, s.TestX, [][]float64{{5}, {6}})
	assert.DeepEqual(t, s.TrainY, []int{1, 2, 3, 1})
	assert.DeepEqual(t, s.TestY, []int{2, 3})

	_, err = Stacked(firstFeature{}, smallSplit(), 6)
	assert.ErrorContains(t, err, "cut 6")
}

// stripes makes 6x6 images of classes 0, 1 and 2 with bright rows at
// different heights
func stripes(n int, seed int64) datasets.Raw {
	rng := rand.New(rand.NewSource(seed))
	r := datasets.Raw{Height: 6, Width: 6}
	for i := 0; i < n; i++ {
		label := i % 3
		img := make([]float64, 36)
		for j := range img {
			img[j] = 20 * rng.Float64()
		}
		for x := 0; x < 6; x++ {
			img[(2*label)*6+x] = 255
		}
		r.Images = append(r.Images, img)
		r.Labels = append(r.Labels, label)
	}
	return r
}

func TestRunLayers(t *testing.T) {
	train, test := stripes(30, 1), stripes(12, 2)
	for _, kind := range []convrf.Kind{convrf.Shared, convrf.Unshared, convrf.RerFShared} {
		for _, specs := range [][]LayerSpec{{{Kernel: 3, Stride: 3}}, {{Kernel: 3, Stride: 1}, {Kernel: 2, Stride: 1}}} {
			acc, tm, err := RunLayers(context.Background(), train, test, specs,
				ConvConfig{Type: kind, Trees: 3, FinalTrees: 5, Cores: 2})
			assert.NilError(t, err)
			assert.Assert(t, acc >= 0 && acc <= 1)
			assert.Assert(t, tm[metrics.Train] >= tm[metrics.FinalFit])
			assert.Assert(t, tm[metrics.Test] >= tm[metrics.FinalPredict])
			assert.Assert(t, tm[metrics.FinalFit] > 0)
			assert.Equal(t, len(tm), 4)
		}
	}
}

func TestRunSubset(t *testing.T) {
	train, test := stripes(30, 3), stripes(9, 4)
	_, _, err := RunOneLayer(context.Background(), train, test, []int{0, 2}, nil, ConvConfig{Type: convrf.Shared})
	assert.ErrorContains(t, err, "Kernel 10")

	_, _, err = RunTwoLayer(context.Background(), train, test, []int{0, 2}, []int{100}, ConvConfig{Type: convrf.Shared})
	assert.ErrorContains(t, err, "out of range")

	_, _, err = RunLayers(context.Background(), train, test, nil, ConvConfig{})
	assert.ErrorContains(t, err, "no layers")
}

func TestRunBenchmark(t *testing.T) {
	raw := stripes(36, 5)
	split, _, err := datasets.ProcessData(raw, datasets.ProcessOptions{TrainSize: 24, TestSize: 12})
	assert.NilError(t, err)

	var out bytes.Buffer
	res, err := RunBenchmark(context.Background(), &out, split,
		BenchmarkOptions{Trees: 2, Height: 6, Width: 6, Cores: 2})
	assert.NilError(t, err)
	assert.Equal(t, len(res), 13)
	assert.Equal(t, res[6].Name, "MORF Aggregate")
	assert.Equal(t, res[12].Name, "RerF on Probabilities")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, len(lines), 26)
	assert.Equal(t, lines[0], "Naive RF")
	assert.Assert(t, strings.HasPrefix(lines[1], "Accuracy: "))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunBenchmark(ctx, &out, split, BenchmarkOptions{Height: 6, Width: 6})
	assert.Equal(t, err, context.Canceled)
}

func TestVariants(t *testing.T) {
	vs := Variants(BenchmarkOptions{Trees: 10}.withDefaults(60000))
	assert.Equal(t, len(vs), 9)
	assert.Equal(t, vs[8].Name, "MORF trees")
	assert.Equal(t, BenchmarkOptions{}.withDefaults(12000).Cut, 10000)
	assert.Equal(t, BenchmarkOptions{}.withDefaults(60000).Cut, DefaultCut)
}

func TestRunLayersTimingAdds(t *testing.T) {
	train, test := stripes(30, 6), stripes(12, 7)
	specs := []LayerSpec{{Kernel: 3, Stride: 1}, {Kernel: 2, Stride: 1}}
	_, total, perLayer, err := runLayers(context.Background(), train, test, specs,
		ConvConfig{Type: convrf.Shared, Trees: 3, FinalTrees: 5, Cores: 2})
	assert.NilError(t, err)
	assert.Equal(t, len(perLayer), 2)

	layers := perLayer[0].Clone()
	layers.Add(perLayer[1])
	assert.Equal(t, layers[metrics.Train], perLayer[0][metrics.Train]+perLayer[1][metrics.Train])
	assert.Equal(t, total[metrics.Train], layers[metrics.Train]+total[metrics.FinalFit])
	assert.Equal(t, total[metrics.Test], layers[metrics.Test]+total[metrics.FinalPredict])
	for _, tm := range perLayer {
		assert.Assert(t, tm[metrics.Train] > 0)
		assert.Assert(t, tm[metrics.Test] > 0)
		_, ok := tm[metrics.FinalFit]
		assert.Assert(t, !ok)
	}
}
