package forest

import "math/rand"
import "sort"

// node of a fitted tree, leaves have left == -1 and a class distribution
type node struct {
	Proj        projection
	Threshold   float64
	Left, Right int32
	Dist        []float64
}

type tree struct {
	Nodes []node
}

// leaf returns the class distribution reached by x
func (t *tree) leaf(x []float64) []float64 {
	var n = &t.Nodes[0]
	for n.Left >= 0 {
		if n.Proj.eval(x) <= n.Threshold {
			n = &t.Nodes[n.Left]
		} else {
			n = &t.Nodes[n.Right]
		}
	}
	return n.Dist
}

type task struct {
	node    int32
	samples []int
	depth   int
}

// builder grows one tree, its buffers are reused across nodes
type builder struct {
	cfg     Config
	X       [][]float64
	y       []int
	classes int
	rng     *rand.Rand
	sampler *sampler

	vals   []float64
	order  []int
	counts []int
	left   []int
	bins   [][]int
}

type split struct {
	proj      projection
	threshold float64
	score     float64
}

func newBuilder(cfg Config, X [][]float64, y []int, classes int, seed int64) *builder {
	rng := rand.New(rand.NewSource(seed))
	return &builder{
		cfg:     cfg,
		X:       X,
		y:       y,
		classes: classes,
		rng:     rng,
		sampler: newSampler(cfg, rng, len(X[0])),
		counts:  make([]int, classes),
		left:    make([]int, classes),
	}
}

// bootstrap draws len(X) row indexes with replacement
func (b *builder) bootstrap() []int {
	var o = make([]int, len(b.X))
	for i := range o {
		o[i] = b.rng.Intn(len(b.X))
	}
	return o
}

func (b *builder) build() *tree {
	var t = &tree{Nodes: []node{{}}}
	var stack = []task{{node: 0, samples: b.bootstrap(), depth: 0}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for i := range b.counts {
			b.counts[i] = 0
		}
		for _, s := range cur.samples {
			b.counts[b.y[s]]++
		}
		var best *split
		if !b.stop(cur) {
			best = b.bestSplit(cur.samples)
		}
		var l, r []int
		if best != nil {
			for _, s := range cur.samples {
				if best.proj.eval(b.X[s]) <= best.threshold {
					l = append(l, s)
				} else {
					r = append(r, s)
				}
			}
		}
		if len(l) == 0 || len(r) == 0 {
			dist := make([]float64, b.classes)
			for c, n := range b.counts {
				dist[c] = float64(n) / float64(len(cur.samples))
			}
			t.Nodes[cur.node] = node{Left: -1, Right: -1, Dist: dist}
			continue
		}
		li := int32(len(t.Nodes))
		t.Nodes = append(t.Nodes, node{}, node{})
		t.Nodes[cur.node] = node{Proj: best.proj, Threshold: best.threshold, Left: li, Right: li + 1}
		stack = append(stack, task{li, l, cur.depth + 1}, task{li + 1, r, cur.depth + 1})
	}
	return t
}

// stop reports whether the node at cur must be a leaf, b.counts holds its class counts
func (b *builder) stop(cur task) bool {
	if len(cur.samples) < b.cfg.MinSplit {
		return true
	}
	if b.cfg.MaxDepth > 0 && cur.depth >= b.cfg.MaxDepth {
		return true
	}
	var nonzero int
	for _, n := range b.counts {
		if n > 0 {
			nonzero++
		}
	}
	return nonzero <= 1
}

// bestSplit maximizes sum(left²)/nL + sum(right²)/nR, which minimizes the
// weighted Gini impurity of the children.
func (b *builder) bestSplit(samples []int) *split {
	var best *split
	for _, proj := range b.sampler.sample() {
		if cap(b.vals) < len(samples) {
			b.vals = make([]float64, len(samples))
		}
		vals := b.vals[:len(samples)]
		for i, s := range samples {
			vals[i] = proj.eval(b.X[s])
		}
		var threshold, score float64
		var ok bool
		if b.cfg.Projection == BinnedBase && len(samples) > b.cfg.BinMin {
			threshold, score, ok = b.scanBinned(samples, vals)
		} else {
			threshold, score, ok = b.scanSorted(samples, vals)
		}
		if ok && (best == nil || score > best.score) {
			best = &split{proj: proj, threshold: threshold, score: score}
		}
	}
	return best
}

func (b *builder) scanSorted(samples []int, vals []float64) (threshold, score float64, ok bool) {
	if cap(b.order) < len(samples) {
		b.order = make([]int, len(samples))
	}
	order := b.order[:len(samples)]
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return vals[order[i]] < vals[order[j]] })

	var sumL, sumR float64
	for c := range b.left {
		b.left[c] = 0
		sumR += float64(b.counts[c] * b.counts[c])
	}
	var n = len(order)
	for i := 0; i < n-1; i++ {
		c := b.y[samples[order[i]]]
		right := b.counts[c] - b.left[c]
		sumL += float64(2*b.left[c] + 1)
		sumR -= float64(2*right - 1)
		b.left[c]++
		lo, hi := vals[order[i]], vals[order[i+1]]
		if lo == hi {
			continue
		}
		s := sumL/float64(i+1) + sumR/float64(n-i-1)
		if !ok || s > score {
			threshold, score, ok = lo+(hi-lo)/2, s, true
			if threshold >= hi {
				threshold = lo
			}
		}
	}
	return
}

// scanBinned estimates quantile thresholds from BinMin random values and
// evaluates only those cut points.
func (b *builder) scanBinned(samples []int, vals []float64) (threshold, score float64, ok bool) {
	var probe = make([]float64, b.cfg.BinMin)
	for i := range probe {
		probe[i] = vals[b.rng.Intn(len(vals))]
	}
	sort.Float64s(probe)
	var cuts []float64
	for k := 1; k <= b.cfg.BinSize; k++ {
		v := probe[(k*len(probe))/(b.cfg.BinSize+1)]
		if len(cuts) == 0 || v > cuts[len(cuts)-1] {
			cuts = append(cuts, v)
		}
	}
	if len(b.bins) < len(cuts)+1 {
		b.bins = make([][]int, len(cuts)+1)
		for i := range b.bins {
			b.bins[i] = make([]int, b.classes)
		}
	}
	bins := b.bins[:len(cuts)+1]
	for _, bin := range bins {
		for c := range bin {
			bin[c] = 0
		}
	}
	for i, v := range vals {
		bins[sort.SearchFloat64s(cuts, v)][b.y[samples[i]]]++
	}

	var n = len(samples)
	var nl int
	for c := range b.left {
		b.left[c] = 0
	}
	for k, cut := range cuts {
		for c, m := range bins[k] {
			b.left[c] += m
			nl += m
		}
		if nl == 0 || nl == n {
			continue
		}
		var sumL, sumR float64
		for c, m := range b.left {
			r := b.counts[c] - m
			sumL += float64(m * m)
			sumR += float64(r * r)
		}
		s := sumL/float64(nl) + sumR/float64(n-nl)
		if !ok || s > score {
			threshold, score, ok = cut, s, true
		}
	}
	return
}
