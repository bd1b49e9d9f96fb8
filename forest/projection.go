package forest

import "math"
import "math/rand"

// projection is a sparse linear combination of features
type projection struct {
	Index  []int32
	Weight []float64
}

func (p projection) eval(x []float64) (o float64) {
	for i, f := range p.Index {
		o += p.Weight[i] * x[f]
	}
	return
}

// sampler draws the candidate projections of one node
type sampler struct {
	cfg     Config
	rng     *rand.Rand
	p       int
	scratch []int32
}

func newSampler(cfg Config, rng *rand.Rand, p int) *sampler {
	s := &sampler{cfg: cfg, rng: rng, p: p, scratch: make([]int32, p)}
	for i := range s.scratch {
		s.scratch[i] = int32(i)
	}
	return s
}

// distinct returns k distinct features using a partial Fisher-Yates shuffle
func (s *sampler) distinct(k int) []int32 {
	if k > s.p {
		k = s.p
	}
	for i := 0; i < k; i++ {
		j := i + s.rng.Intn(s.p-i)
		s.scratch[i], s.scratch[j] = s.scratch[j], s.scratch[i]
	}
	return s.scratch[:k]
}

func (s *sampler) sample() []projection {
	switch s.cfg.Projection {
	case RerF:
		return s.rerf()
	case SRerF:
		return s.patches()
	default:
		return s.single()
	}
}

func (s *sampler) single() []projection {
	var feats = s.distinct(s.cfg.MaxFeatures)
	var o = make([]projection, len(feats))
	for i, f := range feats {
		o[i] = projection{Index: []int32{f}, Weight: []float64{1}}
	}
	return o
}

// rerf draws ceil(mtry*FeatureCombinations) distinct (candidate, feature)
// positions, each with weight +1 or -1, so no feature repeats within a candidate.
func (s *sampler) rerf() []projection {
	var mtry = s.cfg.MaxFeatures
	var positions = mtry * s.p
	var nnz = int(math.Ceil(float64(mtry) * s.cfg.FeatureCombinations))
	if nnz > positions {
		nnz = positions
	}
	var o = make([]projection, mtry)
	var taken = make(map[int]struct{}, nnz)
	for len(taken) < nnz {
		pos := s.rng.Intn(positions)
		if _, ok := taken[pos]; ok {
			continue
		}
		taken[pos] = struct{}{}
		c := pos / s.p
		w := 1.0
		if s.rng.Intn(2) == 0 {
			w = -1
		}
		o[c].Index = append(o[c].Index, int32(pos%s.p))
		o[c].Weight = append(o[c].Weight, w)
	}
	var nonEmpty = o[:0]
	for _, proj := range o {
		if len(proj.Index) > 0 {
			nonEmpty = append(nonEmpty, proj)
		}
	}
	return nonEmpty
}

func (s *sampler) patches() []projection {
	var c = s.cfg
	var o = make([]projection, c.MaxFeatures)
	for i := range o {
		h := c.PatchHeightMin + s.rng.Intn(c.PatchHeightMax-c.PatchHeightMin+1)
		w := c.PatchWidthMin + s.rng.Intn(c.PatchWidthMax-c.PatchWidthMin+1)
		y0 := s.rng.Intn(c.ImageHeight - h + 1)
		x0 := s.rng.Intn(c.ImageWidth - w + 1)
		o[i] = patch(c.ImageWidth, y0, x0, h, w)
	}
	return o
}

// patch sums the h*w pixels with top left corner at row y0, column x0
func patch(width, y0, x0, h, w int) projection {
	var p = projection{Index: make([]int32, 0, h*w), Weight: make([]float64, 0, h*w)}
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			p.Index = append(p.Index, int32(y*width+x))
			p.Weight = append(p.Weight, 1)
		}
	}
	return p
}
