// Package forest implements random forests, randomer forests (RerF) and
// structured randomer forests (S-RerF) over image patches.
package forest

import "log"
import "math"
import "runtime"

import "github.com/klauspost/cpuid/v2"
import "github.com/pkg/errors"

// Projection selects how split candidates are generated from the features
type Projection byte

const (
	// RerF draws sparse random ±1 combinations of features
	RerF Projection = iota
	// Base draws single features, a classic random forest
	Base
	// SRerF draws rectangular patches of an image and sums their pixels
	SRerF
	// BinnedBase is Base with split thresholds searched over quantile bins
	BinnedBase
)

var projectionNames = map[Projection]string{
	RerF:       "RerF",
	Base:       "Base",
	SRerF:      "S-RerF",
	BinnedBase: "binnedBase",
}

// String returns the projection name as accepted by ParseProjection
func (p Projection) String() string {
	if s, ok := projectionNames[p]; ok {
		return s
	}
	return "Projection(?)"
}

// ParseProjection accepts "Base", "RerF", "S-RerF" and "binnedBase".
func ParseProjection(s string) (Projection, error) {
	for p, name := range projectionNames {
		if name == s {
			return p, nil
		}
	}
	switch s {
	case "base", "rf", "RF":
		return Base, nil
	case "rerf", "Rerf":
		return RerF, nil
	case "srerf", "SRerF", "MORF", "morf":
		return SRerF, nil
	case "binned", "BinnedBase":
		return BinnedBase, nil
	}
	return 0, errors.Errorf("unknown projection %q", s)
}

// Config is an immutable forest configuration. The zero value is a 100 tree RerF.
type Config struct {
	Trees      int        // number of trees, 100 when zero
	Projection Projection // split candidate scheme

	MaxFeatures         int     // candidate projections per node, sqrt(features) when zero
	FeatureCombinations float64 // average non-zeros per RerF projection, 1.5 when zero
	MaxDepth            int     // depth limit, unlimited when zero
	MinSplit            int     // smallest node which may be split, 2 when zero

	ImageHeight, ImageWidth        int // image geometry for S-RerF
	PatchHeightMin, PatchHeightMax int // S-RerF patch height bounds, 1 and max(2, sqrt(height)) when zero
	PatchWidthMin, PatchWidthMax   int // S-RerF patch width bounds, 1 and max(2, sqrt(width)) when zero

	BinMin  int // binned split search starts above this node size, 1000 when zero
	BinSize int // number of quantile thresholds per binned search, 256 when zero

	Cores int   // tree fitting workers, DefaultCores() when zero
	Seed  int64 // base seed, trees derive their own streams from it

	Verbose *log.Logger // progress logger, silent when nil
}

// DefaultCores is the number of usable logical cores minus one, at least one.
// runtime.NumCPU caps the cpuid count, it honours the affinity mask.
func DefaultCores() int {
	n := runtime.NumCPU()
	if c := cpuid.CPU.LogicalCores; c > 0 && c < n {
		n = c
	}
	if n > 1 {
		n--
	}
	return n
}

func sqrtAtLeast2(n int) int {
	s := int(math.Sqrt(float64(n)))
	if s < 2 {
		s = 2
	}
	return s
}

// withDefaults fills zero fields for a dataset with p features
func (c Config) withDefaults(p int) Config {
	if c.Trees == 0 {
		c.Trees = 100
	}
	if c.MaxFeatures == 0 {
		c.MaxFeatures = int(math.Sqrt(float64(p)))
		if c.MaxFeatures < 1 {
			c.MaxFeatures = 1
		}
	}
	if c.FeatureCombinations == 0 {
		c.FeatureCombinations = 1.5
	}
	if c.MinSplit == 0 {
		c.MinSplit = 2
	}
	if c.PatchHeightMin == 0 {
		c.PatchHeightMin = 1
	}
	if c.PatchWidthMin == 0 {
		c.PatchWidthMin = 1
	}
	if c.PatchHeightMax == 0 {
		c.PatchHeightMax = sqrtAtLeast2(c.ImageHeight)
		if c.ImageHeight > 0 && c.PatchHeightMax > c.ImageHeight {
			c.PatchHeightMax = c.ImageHeight
		}
		if c.PatchHeightMax < c.PatchHeightMin {
			c.PatchHeightMax = c.PatchHeightMin
		}
	}
	if c.PatchWidthMax == 0 {
		c.PatchWidthMax = sqrtAtLeast2(c.ImageWidth)
		if c.ImageWidth > 0 && c.PatchWidthMax > c.ImageWidth {
			c.PatchWidthMax = c.ImageWidth
		}
		if c.PatchWidthMax < c.PatchWidthMin {
			c.PatchWidthMax = c.PatchWidthMin
		}
	}
	if c.BinMin == 0 {
		c.BinMin = 1000
	}
	if c.BinSize == 0 {
		c.BinSize = 256
	}
	if c.Cores == 0 {
		c.Cores = DefaultCores()
	}
	return c
}

// Validate reports invalid hyperparameter combinations. A zero tree count is
// not an error, it selects the default of 100 trees. Geometry against the
// feature count is checked when fitting.
func (c Config) Validate() error {
	if c.Trees < 0 {
		return errors.Errorf("forest: %d trees", c.Trees)
	}
	if _, ok := projectionNames[c.Projection]; !ok {
		return errors.Errorf("forest: unknown projection %d", c.Projection)
	}
	if c.MaxFeatures < 0 || c.MaxDepth < 0 || c.MinSplit < 0 || c.Cores < 0 || c.BinMin < 0 || c.BinSize < 0 {
		return errors.New("forest: negative hyperparameter")
	}
	if c.FeatureCombinations < 0 {
		return errors.Errorf("forest: feature combinations %v", c.FeatureCombinations)
	}
	if c.Projection != SRerF {
		return nil
	}
	if c.ImageHeight <= 0 || c.ImageWidth <= 0 {
		return errors.New("forest: S-RerF needs image height and width")
	}
	d := c.withDefaults(c.ImageHeight * c.ImageWidth)
	if d.PatchHeightMin > d.PatchHeightMax || d.PatchWidthMin > d.PatchWidthMax {
		return errors.Errorf("forest: patch bounds %d..%d x %d..%d are inverted",
			d.PatchHeightMin, d.PatchHeightMax, d.PatchWidthMin, d.PatchWidthMax)
	}
	if d.PatchHeightMax > c.ImageHeight || d.PatchWidthMax > c.ImageWidth {
		return errors.Errorf("forest: patch up to %dx%d does not fit %dx%d image",
			d.PatchHeightMax, d.PatchWidthMax, c.ImageHeight, c.ImageWidth)
	}
	return nil
}
