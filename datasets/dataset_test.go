package datasets

import "math"
import "testing"

import "gotest.tools/assert"

// synthetic builds n 2x2 images where the first pixel identifies the row
func synthetic(n int) Raw {
	var r = Raw{Height: 2, Width: 2}
	for i := 0; i < n; i++ {
		r.Images = append(r.Images, []float64{float64(i), float64(i % 7), float64(i % 3), 1})
		r.Labels = append(r.Labels, i%10)
	}
	return r
}

func TestProcessDataDeterministic(t *testing.T) {
	var raw = synthetic(200)
	var opts = ProcessOptions{Seed: 0, TrainSize: 150, TestSize: 40}
	a, sa, err := ProcessData(raw, opts)
	assert.NilError(t, err)
	b, sb, err := ProcessData(raw, opts)
	assert.NilError(t, err)

	assert.DeepEqual(t, a, b)
	assert.DeepEqual(t, sa.Mean, sb.Mean)
	assert.DeepEqual(t, sa.Scale, sb.Scale)
}

func TestProcessDataPartitions(t *testing.T) {
	var raw = synthetic(200)
	split, scaler, err := ProcessData(raw, ProcessOptions{TrainSize: 150, TestSize: 40})
	assert.NilError(t, err)
	assert.Equal(t, len(split.TrainX), 150)
	assert.Equal(t, len(split.TrainY), 150)
	assert.Equal(t, len(split.TestX), 40)
	assert.Equal(t, len(split.TestY), 40)

	// the first pixel is unique per row, undo scaling to recover row ids
	id := func(row []float64) int {
		return int(math.Round(row[0]*scaler.Scale[0] + scaler.Mean[0]))
	}
	var seen = make(map[int]bool)
	for i, row := range split.TrainX {
		seen[id(row)] = true
		assert.Equal(t, split.TrainY[i], id(row)%10)
	}
	for i, row := range split.TestX {
		assert.Assert(t, !seen[id(row)], "row %d in both partitions", id(row))
		assert.Equal(t, split.TestY[i], id(row)%10)
	}
}

func TestProcessDataScalesOnTrainOnly(t *testing.T) {
	split, _, err := ProcessData(synthetic(300), ProcessOptions{Seed: 3, TrainSize: 200, TestSize: 100})
	assert.NilError(t, err)
	for j := 0; j < 3; j++ {
		var sum, sq float64
		for _, row := range split.TrainX {
			sum += row[j]
			sq += row[j] * row[j]
		}
		mean := sum / 200
		assert.Assert(t, math.Abs(mean) < 1e-9)
		assert.Assert(t, math.Abs(sq/200-mean*mean-1) < 1e-9)
	}
}

func TestProcessDataDefaultsNeedSeventyThousand(t *testing.T) {
	_, _, err := ProcessData(synthetic(100), ProcessOptions{})
	assert.ErrorContains(t, err, "60000+10000 rows requested")
}

func TestProcessDataDefaultSizes(t *testing.T) {
	split, scaler, err := ProcessData(synthetic(70000), ProcessOptions{})
	assert.NilError(t, err)
	assert.Equal(t, len(split.TrainX), DefaultTrainSize)
	assert.Equal(t, len(split.TrainY), DefaultTrainSize)
	assert.Equal(t, len(split.TestX), DefaultTestSize)
	assert.Equal(t, len(split.TestY), DefaultTestSize)

	id := func(row []float64) int {
		return int(math.Round(row[0]*scaler.Scale[0] + scaler.Mean[0]))
	}
	var seen = make(map[int]bool, DefaultTrainSize)
	for _, row := range split.TrainX {
		seen[id(row)] = true
	}
	assert.Equal(t, len(seen), DefaultTrainSize)
	for _, row := range split.TestX {
		assert.Assert(t, !seen[id(row)], "row %d in both partitions", id(row))
		seen[id(row)] = true
	}
	assert.Equal(t, len(seen), 70000)
}

func TestProcessDataShapeMismatch(t *testing.T) {
	var raw = synthetic(10)
	raw.Images[4] = []float64{1, 2, 3}
	_, _, err := ProcessData(raw, ProcessOptions{TrainSize: 5, TestSize: 5})
	assert.ErrorContains(t, err, "cannot reshape")
}

func TestPermutation(t *testing.T) {
	assert.DeepEqual(t, Permutation(50, 0), Permutation(50, 0))
	var seen = make(map[int]bool)
	for _, v := range Permutation(50, 1) {
		seen[v] = true
	}
	assert.Equal(t, len(seen), 50)
}

func TestSubset(t *testing.T) {
	var train = Raw{Height: 1, Width: 1,
		Images: [][]float64{{0}, {255}, {51}, {102}, {255}},
		Labels: []int{3, 5, 3, 7, 5},
	}
	var test = Raw{Height: 1, Width: 1, Images: [][]float64{{255}, {0}}, Labels: []int{7, 5}}

	tr, te, err := Subset(train, test, []int{5, 3}, []int{0, 2})
	assert.NilError(t, err)
	// filtered train is labels 3,5,3,5 → 1,0,1,0
	assert.DeepEqual(t, tr.Labels, []int{1, 1})
	assert.DeepEqual(t, tr.Images, [][]float64{{0}, {0.2}})
	assert.DeepEqual(t, te.Labels, []int{0})
	assert.DeepEqual(t, te.Images, [][]float64{{0}})

	_, _, err = Subset(train, test, []int{5}, []int{9})
	assert.ErrorContains(t, err, "out of range")
	_, _, err = Subset(train, test, nil, nil)
	assert.ErrorContains(t, err, "no classes")
}

func TestConcatAndClasses(t *testing.T) {
	a, b := synthetic(3), synthetic(2)
	c, err := a.Concat(b)
	assert.NilError(t, err)
	assert.Equal(t, c.Len(), 5)
	assert.DeepEqual(t, c.Classes(), []int{0, 1, 2})

	_, err = a.Concat(Raw{Height: 28, Width: 28})
	assert.ErrorContains(t, err, "cannot concat")
}
