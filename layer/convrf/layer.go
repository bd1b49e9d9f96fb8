// Package convrf implements a convolution-like layer whose kernels are
// random forests classifying image patches.
package convrf

import "context"
import "log"
import "time"

import "github.com/neurlang/savanna/forest"
import "github.com/neurlang/savanna/layer"
import "github.com/neurlang/savanna/metrics"
import "github.com/neurlang/savanna/parallel"
import "github.com/pkg/errors"

// Kind selects how forests are shared between output locations
type Kind string

const (
	// Shared fits one forest on the patches of every location
	Shared Kind = "shared"
	// Unshared fits one forest per output location
	Unshared Kind = "unshared"
	// RerFShared is Shared with a large binned forest
	RerFShared Kind = "rerf_shared"
)

// RerFTrees and RerFProjection configure the forest of RerFShared layers
const RerFTrees = 1000
const RerFProjection = forest.BinnedBase

// ParseKind validates a kind name
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Shared, Unshared, RerFShared:
		return k, nil
	}
	return "", errors.Errorf("convrf: unknown type %q", s)
}

// Options of the kernel forests
type Options struct {
	Trees      int               // trees per forest, RerFTrees for RerFShared, 100 otherwise
	Projection forest.Projection // RerFProjection for RerFShared, Base otherwise
	Cores      int               // forest workers
	Seed       int64             // forest seed
	Verbose    *log.Logger       // forest progress
}

// ConvRF is a forest convolution layer
type ConvRF struct {
	kind           Kind
	kernel, stride int
	cfg            forest.Config

	inH, inW, inC int
	outH, outW    int
	shared        *forest.Forest
	unshared      []*forest.Forest
	classes       int

	timing metrics.Timing
}

var _ layer.Layer = (*ConvRF)(nil)

// MustNew creates a new ConvRF layer, panicking on invalid arguments
func MustNew(kind Kind, kernel, stride int, opts Options) *ConvRF {
	o, err := New(kind, kernel, stride, opts)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new ConvRF layer of square kernels moved by stride pixels
func New(kind Kind, kernel, stride int, opts Options) (*ConvRF, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if kernel <= 0 {
		return nil, errors.Errorf("New ConvRF: Kernel %d is not positive", kernel)
	}
	if stride <= 0 {
		return nil, errors.Errorf("New ConvRF: Stride %d is not positive", stride)
	}
	cfg := forest.Config{
		Trees:      opts.Trees,
		Projection: opts.Projection,
		Cores:      opts.Cores,
		Seed:       opts.Seed,
		Verbose:    opts.Verbose,
	}
	if kind == RerFShared {
		if cfg.Trees == 0 {
			cfg.Trees = RerFTrees
		}
		if opts.Projection == forest.RerF {
			cfg.Projection = RerFProjection
		}
	} else if opts.Projection == forest.RerF {
		// plain random forest kernels
		cfg.Projection = forest.Base
	}
	if cfg.Projection == forest.SRerF {
		return nil, errors.New("New ConvRF: S-RerF kernels are not supported")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "New ConvRF")
	}
	return &ConvRF{kind: kind, kernel: kernel, stride: stride, cfg: cfg, timing: metrics.Timing{}}, nil
}

// Kind returns the forest sharing scheme
func (c *ConvRF) Kind() Kind {
	return c.kind
}

// OutputSize returns the output height and width for an input of height x width
func (c *ConvRF) OutputSize(height, width int) (int, int, error) {
	if height < c.kernel {
		return 0, 0, errors.Errorf("ConvRF: Height %d is lower than Kernel %d", height, c.kernel)
	}
	if width < c.kernel {
		return 0, 0, errors.Errorf("ConvRF: Width %d is lower than Kernel %d", width, c.kernel)
	}
	return (height-c.kernel)/c.stride + 1, (width-c.kernel)/c.stride + 1, nil
}

// Timing returns a copy of the accumulated train and test time
func (c *ConvRF) Timing() metrics.Timing {
	return c.timing.Clone()
}

// Fit extracts patches of m, fits the kernel forests and returns the class
// probability map of m.
func (c *ConvRF) Fit(ctx context.Context, m layer.FeatureMap, labels []int) (layer.FeatureMap, error) {
	start := time.Now()
	defer c.timing.Since(metrics.Train, start)

	if err := m.Validate(); err != nil {
		return layer.FeatureMap{}, err
	}
	if len(labels) != m.N {
		return layer.FeatureMap{}, errors.Errorf("ConvRF: %d images but %d labels", m.N, len(labels))
	}
	outH, outW, err := c.OutputSize(m.Height, m.Width)
	if err != nil {
		return layer.FeatureMap{}, err
	}
	c.inH, c.inW, c.inC = m.Height, m.Width, m.Channels
	c.outH, c.outW = outH, outW
	c.shared, c.unshared = nil, nil

	switch c.kind {
	case Unshared:
		c.unshared = make([]*forest.Forest, outH*outW)
		for loc := range c.unshared {
			if err := ctx.Err(); err != nil {
				return layer.FeatureMap{}, err
			}
			y, x := loc/outW, loc%outW
			cfg := c.cfg
			cfg.Seed += int64(loc)
			f, err := forest.Train(cfg, c.location(m, y, x), labels)
			if err != nil {
				return layer.FeatureMap{}, errors.Wrapf(err, "ConvRF: location %d,%d", y, x)
			}
			c.unshared[loc] = f
		}
		c.classes = len(c.unshared[0].Classes())
	default:
		patches, patchLabels := c.patches(m, labels)
		if err := ctx.Err(); err != nil {
			return layer.FeatureMap{}, err
		}
		f, err := forest.Train(c.cfg, patches, patchLabels)
		if err != nil {
			return layer.FeatureMap{}, errors.Wrap(err, "ConvRF")
		}
		c.shared = f
		c.classes = len(f.Classes())
	}
	return c.transform(ctx, m)
}

// Predict returns the class probability map of m
func (c *ConvRF) Predict(ctx context.Context, m layer.FeatureMap) (layer.FeatureMap, error) {
	start := time.Now()
	defer c.timing.Since(metrics.Test, start)

	if c.shared == nil && c.unshared == nil {
		return layer.FeatureMap{}, errors.New("ConvRF: predict before fit")
	}
	if err := m.Validate(); err != nil {
		return layer.FeatureMap{}, err
	}
	if m.Height != c.inH || m.Width != c.inW || m.Channels != c.inC {
		return layer.FeatureMap{}, errors.Errorf("ConvRF: input %dx%dx%d, fitted on %dx%dx%d",
			m.Height, m.Width, m.Channels, c.inH, c.inW, c.inC)
	}
	return c.transform(ctx, m)
}

func (c *ConvRF) transform(ctx context.Context, m layer.FeatureMap) (layer.FeatureMap, error) {
	out := layer.NewFeatureMap(m.N, c.outH, c.outW, c.classes)
	cores := c.cfg.Cores
	if cores == 0 {
		cores = forest.DefaultCores()
	}
	// locations write disjoint pixels of out
	err := parallel.ForEachErr(c.outH*c.outW, cores, func(loc int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		y, x := loc/c.outW, loc%c.outW
		f := c.shared
		if f == nil {
			f = c.unshared[loc]
		}
		proba, err := f.PredictProba(c.location(m, y, x))
		if err != nil {
			return err
		}
		for i, p := range proba {
			copy(out.Pixel(i, y, x), p)
		}
		return nil
	})
	if err != nil {
		return layer.FeatureMap{}, err
	}
	return out, nil
}
