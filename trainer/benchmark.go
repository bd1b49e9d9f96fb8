package trainer

import "context"
import "fmt"
import "io"
import "log"

import "github.com/neurlang/savanna/datasets"
import "github.com/neurlang/savanna/estimator"
import "github.com/neurlang/savanna/forest"
import "github.com/neurlang/savanna/linear"
import "github.com/pkg/errors"

// BenchmarkOptions configures the MNIST forest benchmark
type BenchmarkOptions struct {
	Trees         int         // trees of the small variants, 100 when zero, the large ones get three times more
	Height, Width int         // image geometry, 28x28 when zero
	Cores         int         // forest workers, forest.DefaultCores() when zero
	Seed          int64       // forest and logistic seed
	Cut           int         // stacking cut, DefaultCut scaled to the train partition when zero
	Tol           float64     // logistic regression tolerance, 0.1 when zero
	Verbose       *log.Logger // forest progress
}

func (o BenchmarkOptions) withDefaults(trainRows int) BenchmarkOptions {
	if o.Trees == 0 {
		o.Trees = 100
	}
	if o.Height == 0 {
		o.Height = 28
	}
	if o.Width == 0 {
		o.Width = 28
	}
	if o.Cut == 0 {
		o.Cut = DefaultCut
		if trainRows <= DefaultCut {
			o.Cut = trainRows * DefaultCut / datasets.DefaultTrainSize
		}
	}
	if o.Tol == 0 {
		o.Tol = 0.1
	}
	return o
}

// Variant is a named classifier configuration
type Variant struct {
	Name      string
	Estimator estimator.Estimator
}

// Variants returns the benchmark classifiers in run order, keyed by printed name:
// "Naive RF", "ReRF", "MORF", "MORF Patch Size 2/4/6", "Naive RF 300 trees",
// "ReRF 300 trees" and "MORF trees".
func Variants(opts BenchmarkOptions) []Variant {
	base := forest.Config{Trees: opts.Trees, Cores: opts.Cores, Seed: opts.Seed, Verbose: opts.Verbose}

	naive := base
	naive.Projection = forest.Base
	rerf := base
	rerf.Projection = forest.RerF
	morf := base
	morf.Projection = forest.SRerF
	morf.ImageHeight, morf.ImageWidth = opts.Height, opts.Width

	patch := func(size int) forest.Config {
		c := morf
		c.PatchHeightMin, c.PatchHeightMax = size, size
		c.PatchWidthMin, c.PatchWidthMax = size, size
		return c
	}
	large := func(c forest.Config) forest.Config {
		c.Trees *= 3
		return c
	}
	return []Variant{
		{"Naive RF", naive},
		{"ReRF", rerf},
		{"MORF", morf},
		{"MORF Patch Size 2", patch(2)},
		{"MORF Patch Size 4", patch(4)},
		{"MORF Patch Size 6", patch(6)},
		{"Naive RF 300 trees", large(naive)},
		{"ReRF 300 trees", large(rerf)},
		{"MORF trees", large(morf)},
	}
}

func find(vs []Variant, name string) estimator.Estimator {
	for _, v := range vs {
		if v.Name == name {
			return v.Estimator
		}
	}
	panic("trainer: no variant " + name)
}

// RunBenchmark evaluates every variant on split, then the aggregate of the
// three fixed patch MORFs, then the three second stage models stacked on the
// training predictions of MORF. Names and accuracies are printed to w.
func RunBenchmark(ctx context.Context, w io.Writer, split datasets.Split, opts BenchmarkOptions) ([]Result, error) {
	opts = opts.withDefaults(len(split.TrainX))
	vs := Variants(opts)

	var results []Result
	run := func(name string, f func() (Result, error)) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintln(w, name)
		r, err := f()
		if err != nil {
			return err
		}
		results = append(results, r)
		return nil
	}

	for _, v := range vs {
		v := v
		if err := run(v.Name, func() (Result, error) { return Test(w, v.Name, v.Estimator, split) }); err != nil {
			return results, err
		}
		if v.Name != "MORF Patch Size 6" {
			continue
		}
		err := run("MORF Aggregate", func() (Result, error) {
			return TestAverage(w, "MORF Aggregate",
				find(vs, "MORF Patch Size 2"), find(vs, "MORF Patch Size 4"), find(vs, "MORF Patch Size 6"), split)
		})
		if err != nil {
			return results, err
		}
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}
	morf, err := find(vs, "MORF").Fit(split.TrainX, split.TrainY)
	if err != nil {
		return results, errors.Wrap(err, "MORF: fit")
	}
	stacked, err := Stacked(morf, split, opts.Cut)
	if err != nil {
		return results, err
	}
	second := []Variant{
		{"Logistic on Probabilities", linear.Logistic{Tol: opts.Tol, Seed: opts.Seed}},
		{"Naive RF on Probabilities", find(vs, "Naive RF")},
		{"RerF on Probabilities", find(vs, "ReRF")},
	}
	for _, v := range second {
		v := v
		if err := run(v.Name, func() (Result, error) { return Test(w, v.Name, v.Estimator, stacked) }); err != nil {
			return results, err
		}
	}
	return results, nil
}
