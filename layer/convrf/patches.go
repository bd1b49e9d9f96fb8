package convrf

import "github.com/neurlang/savanna/layer"

// location returns the patch at output row y, column x of every image
func (c *ConvRF) location(m layer.FeatureMap, y, x int) [][]float64 {
	var size = c.kernel * c.kernel * m.Channels
	var buf = make([]float64, 0, m.N*size)
	var o = make([][]float64, m.N)
	for i := range o {
		buf = m.Patch(buf, i, y*c.stride, x*c.stride, c.kernel)
		o[i] = buf[i*size : (i+1)*size : (i+1)*size]
	}
	return o
}

// patches returns every patch of every image labeled with its image label
func (c *ConvRF) patches(m layer.FeatureMap, labels []int) ([][]float64, []int) {
	var locs = c.outH * c.outW
	var X = make([][]float64, 0, m.N*locs)
	var y = make([]int, 0, m.N*locs)
	for loc := 0; loc < locs; loc++ {
		X = append(X, c.location(m, loc/c.outW, loc%c.outW)...)
		y = append(y, labels...)
	}
	return X, y
}
