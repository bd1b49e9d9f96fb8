package forest

import "sort"

import "github.com/jbarham/primegen"
import "github.com/neurlang/savanna/estimator"
import "github.com/neurlang/savanna/parallel"
import "github.com/pkg/errors"
import "go.uber.org/atomic"
import "gonum.org/v1/gonum/floats"

// ErrEmpty is returned when fitting on no rows
var ErrEmpty = errors.New("forest: empty training set")

// Forest is a fitted forest
type Forest struct {
	cfg      Config
	classes  []int
	features int
	trees    []*tree
}

var _ estimator.ProbaModel = (*Forest)(nil)

// Fit trains a forest, the receiver is not modified.
func (c Config) Fit(X [][]float64, y []int) (estimator.Model, error) {
	return Train(c, X, y)
}

// Train fits a forest of cfg.Trees trees on rows X labeled y.
func Train(cfg Config, X [][]float64, y []int) (*Forest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(X) == 0 {
		return nil, ErrEmpty
	}
	if len(X) != len(y) {
		return nil, errors.Errorf("forest: %d rows but %d labels", len(X), len(y))
	}
	p := len(X[0])
	if p == 0 {
		return nil, errors.New("forest: rows have no features")
	}
	for i, row := range X {
		if len(row) != p {
			return nil, errors.Errorf("forest: row %d has %d features, want %d", i, len(row), p)
		}
	}
	if cfg.Projection == SRerF && cfg.ImageHeight*cfg.ImageWidth != p {
		return nil, errors.Errorf("forest: image %dx%d does not match %d features",
			cfg.ImageHeight, cfg.ImageWidth, p)
	}
	cfg = cfg.withDefaults(p)

	classes, index := encode(y)
	var seeds = make([]int64, cfg.Trees)
	var primes = primegen.New()
	for i := range seeds {
		seeds[i] = cfg.Seed + int64(primes.Next())
	}

	f := &Forest{cfg: cfg, classes: classes, features: p, trees: make([]*tree, cfg.Trees)}
	var done = atomic.NewInt64(0)
	var step = int64(cfg.Trees/10 + 1)
	parallel.ForEach(cfg.Trees, cfg.Cores, func(i int) {
		f.trees[i] = newBuilder(cfg, X, index, len(classes), seeds[i]).build()
		if n := done.Inc(); cfg.Verbose != nil && (n%step == 0 || n == int64(cfg.Trees)) {
			cfg.Verbose.Printf("%s forest: %d/%d trees", cfg.Projection, n, cfg.Trees)
		}
	})
	return f, nil
}

// encode maps labels to indexes into the sorted distinct labels
func encode(y []int) (classes []int, index []int) {
	var seen = make(map[int]int)
	for _, v := range y {
		seen[v] = 0
	}
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Ints(classes)
	for i, v := range classes {
		seen[v] = i
	}
	index = make([]int, len(y))
	for i, v := range y {
		index[i] = seen[v]
	}
	return
}

// Classes returns the sorted training labels, the column order of PredictProba.
func (f *Forest) Classes() []int {
	return append([]int(nil), f.classes...)
}

// Trees is the number of fitted trees
func (f *Forest) Trees() int {
	return len(f.trees)
}

// Config returns the configuration the forest was fitted with, defaults filled in.
func (f *Forest) Config() Config {
	return f.cfg
}

// PredictProba averages the leaf class frequencies of all trees.
func (f *Forest) PredictProba(X [][]float64) ([][]float64, error) {
	for i, row := range X {
		if len(row) != f.features {
			return nil, errors.Errorf("forest: row %d has %d features, want %d", i, len(row), f.features)
		}
	}
	var o = make([][]float64, len(X))
	var scale = 1 / float64(len(f.trees))
	parallel.ForEach(len(X), f.cfg.Cores, func(i int) {
		p := make([]float64, len(f.classes))
		for _, t := range f.trees {
			floats.Add(p, t.leaf(X[i]))
		}
		floats.Scale(scale, p)
		o[i] = p
	})
	return o, nil
}

// Predict returns the most probable class of every row, ties go to the smaller label.
func (f *Forest) Predict(X [][]float64) ([]int, error) {
	proba, err := f.PredictProba(X)
	if err != nil {
		return nil, err
	}
	var o = make([]int, len(proba))
	for i, p := range proba {
		o[i] = f.classes[floats.MaxIdx(p)]
	}
	return o, nil
}
