// Package datasets implements the in-memory image datasets and their train/test splits
package datasets

import "math/rand"

import "github.com/pkg/errors"
import "github.com/samber/lo"

import "github.com/neurlang/savanna/preprocessing"

// Raw is a labeled set of images, each flattened row-major into Height*Width values.
type Raw struct {
	Images [][]float64
	Labels []int
	Height int
	Width  int
}

// Len returns the number of images
func (r Raw) Len() int {
	return len(r.Labels)
}

// Validate checks that every image matches the declared geometry.
func (r Raw) Validate() error {
	if len(r.Images) != len(r.Labels) {
		return errors.Errorf("dataset has %d images but %d labels", len(r.Images), len(r.Labels))
	}
	if r.Height <= 0 || r.Width <= 0 {
		return nil
	}
	for i, img := range r.Images {
		if len(img) != r.Height*r.Width {
			return errors.Errorf("image %d has %d values, cannot reshape to %dx%d", i, len(img), r.Height, r.Width)
		}
	}
	return nil
}

// Concat appends o to r. Both must share geometry.
func (r Raw) Concat(o Raw) (Raw, error) {
	if r.Height != o.Height || r.Width != o.Width {
		return Raw{}, errors.Errorf("cannot concat %dx%d with %dx%d images", r.Height, r.Width, o.Height, o.Width)
	}
	return Raw{
		Images: append(append([][]float64{}, r.Images...), o.Images...),
		Labels: append(append([]int{}, r.Labels...), o.Labels...),
		Height: r.Height,
		Width:  r.Width,
	}, nil
}

// Classes returns the distinct labels in order of appearance
func (r Raw) Classes() []int {
	return lo.Uniq(r.Labels)
}

// Split holds disjoint train and test partitions
type Split struct {
	TrainX, TestX [][]float64
	TrainY, TestY []int
}

// Permutation returns a permutation of 0..n-1 that only depends on the seed.
func Permutation(n int, seed int64) []int {
	return rand.New(rand.NewSource(seed)).Perm(n)
}

// TrainTestSplit shuffles rows using rng and takes the first trainSize rows for
// training and the following testSize rows for testing.
func TrainTestSplit(x [][]float64, y []int, trainSize, testSize int, rng *rand.Rand) (s Split, err error) {
	if len(x) != len(y) {
		return s, errors.Errorf("train test split: %d rows but %d labels", len(x), len(y))
	}
	if trainSize <= 0 || testSize <= 0 {
		return s, errors.Errorf("train test split: sizes must be positive, got %d/%d", trainSize, testSize)
	}
	if trainSize+testSize > len(x) {
		return s, errors.Errorf("train test split: %d+%d rows requested, only %d available", trainSize, testSize, len(x))
	}
	var order = rng.Perm(len(x))
	s.TrainX = make([][]float64, trainSize)
	s.TrainY = make([]int, trainSize)
	s.TestX = make([][]float64, testSize)
	s.TestY = make([]int, testSize)
	for i, j := range order[:trainSize] {
		s.TrainX[i], s.TrainY[i] = x[j], y[j]
	}
	for i, j := range order[trainSize : trainSize+testSize] {
		s.TestX[i], s.TestY[i] = x[j], y[j]
	}
	return s, nil
}

// ProcessOptions configures ProcessData
type ProcessOptions struct {
	Seed      int64 // permutation and split seed
	TrainSize int   // rows in the train partition, 60000 when zero
	TestSize  int   // rows in the test partition, 10000 when zero
}

// DefaultTrainSize and DefaultTestSize are the MNIST-scale partition sizes
const DefaultTrainSize = 60000
const DefaultTestSize = 10000

// ProcessData permutes the dataset with a fixed seed, splits it into train and
// test partitions and standardizes both with statistics of the train partition.
func ProcessData(raw Raw, opts ProcessOptions) (Split, *preprocessing.StandardScaler, error) {
	if opts.TrainSize == 0 {
		opts.TrainSize = DefaultTrainSize
	}
	if opts.TestSize == 0 {
		opts.TestSize = DefaultTestSize
	}
	if err := raw.Validate(); err != nil {
		return Split{}, nil, errors.Wrap(err, "process data")
	}
	var rng = rand.New(rand.NewSource(opts.Seed))
	var perm = rng.Perm(raw.Len())
	var x = make([][]float64, raw.Len())
	var y = make([]int, raw.Len())
	for i, j := range perm {
		x[i], y[i] = raw.Images[j], raw.Labels[j]
	}

	split, err := TrainTestSplit(x, y, opts.TrainSize, opts.TestSize, rng)
	if err != nil {
		return Split{}, nil, errors.Wrap(err, "process data")
	}

	var scaler preprocessing.StandardScaler
	if split.TrainX, err = scaler.FitTransform(split.TrainX); err != nil {
		return Split{}, nil, errors.Wrap(err, "process data")
	}
	if split.TestX, err = scaler.Transform(split.TestX); err != nil {
		return Split{}, nil, errors.Wrap(err, "process data")
	}
	return split, &scaler, nil
}

// PixelMax is the largest raw pixel value, Subset scales pixels by it
const PixelMax = 255

// Subset keeps only images of the chosen classes, relabels them to the index of
// their class in classes, selects trainIndices of the filtered train set (all
// when nil) and scales pixels to [0,1].
func Subset(train, test Raw, classes []int, trainIndices []int) (Raw, Raw, error) {
	if len(classes) == 0 {
		return Raw{}, Raw{}, errors.New("subset: no classes chosen")
	}
	if len(lo.Uniq(classes)) != len(classes) {
		return Raw{}, Raw{}, errors.Errorf("subset: duplicate classes in %v", classes)
	}
	filter := func(r Raw) Raw {
		var o = Raw{Height: r.Height, Width: r.Width}
		for i, label := range r.Labels {
			idx := lo.IndexOf(classes, label)
			if idx < 0 {
				continue
			}
			img := make([]float64, len(r.Images[i]))
			for j, v := range r.Images[i] {
				img[j] = v / PixelMax
			}
			o.Images = append(o.Images, img)
			o.Labels = append(o.Labels, idx)
		}
		return o
	}
	var ftrain, ftest = filter(train), filter(test)
	if trainIndices == nil {
		return ftrain, ftest, nil
	}
	var sub = Raw{Height: ftrain.Height, Width: ftrain.Width}
	for _, i := range trainIndices {
		if i < 0 || i >= ftrain.Len() {
			return Raw{}, Raw{}, errors.Errorf("subset: train index %d out of range [0,%d)", i, ftrain.Len())
		}
		sub.Images = append(sub.Images, ftrain.Images[i])
		sub.Labels = append(sub.Labels, ftrain.Labels[i])
	}
	return sub, ftest, nil
}
