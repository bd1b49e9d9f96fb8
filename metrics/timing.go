package metrics

import "fmt"
import "sort"
import "strings"
import "time"

// Phase names a timed stage of a run
type Phase string

const (
	Train        Phase = "train"
	Test         Phase = "test"
	FinalFit     Phase = "final_fit"
	FinalPredict Phase = "final_predict"
)

// Timing maps phases to elapsed time. Timings of consecutive layers add up.
type Timing map[Phase]time.Duration

// Since adds the time elapsed since start to phase p and returns the elapsed time
func (t Timing) Since(p Phase, start time.Time) time.Duration {
	d := time.Since(start)
	t[p] += d
	return d
}

// Add accumulates every phase of o into t
func (t Timing) Add(o Timing) {
	for p, d := range o {
		t[p] += d
	}
}

// Clone returns an independent copy
func (t Timing) Clone() Timing {
	var o = make(Timing, len(t))
	for p, d := range t {
		o[p] = d
	}
	return o
}

// Seconds returns the phase durations in seconds
func (t Timing) Seconds() map[Phase]float64 {
	var o = make(map[Phase]float64, len(t))
	for p, d := range t {
		o[p] = d.Seconds()
	}
	return o
}

// String prints phases in name order, e.g. "{final_fit: 1.5, train: 3}"
func (t Timing) String() string {
	var keys = make([]string, 0, len(t))
	for p := range t {
		keys = append(keys, string(p))
	}
	sort.Strings(keys)
	var parts = make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %g", k, t[Phase(k)].Seconds())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
