package layer

import "github.com/pkg/errors"

// FeatureMap is a batch of N images of Height x Width pixels with Channels
// values each, stored image by image, row by row, channel last.
type FeatureMap struct {
	N, Height, Width, Channels int
	Data                       []float64
}

// NewFeatureMap allocates a zeroed feature map
func NewFeatureMap(n, height, width, channels int) FeatureMap {
	return FeatureMap{N: n, Height: height, Width: width, Channels: channels,
		Data: make([]float64, n*height*width*channels)}
}

// FromImages turns flattened single channel images into a feature map
func FromImages(images [][]float64, height, width int) (FeatureMap, error) {
	m := NewFeatureMap(len(images), height, width, 1)
	for i, img := range images {
		if len(img) != height*width {
			return FeatureMap{}, errors.Errorf("layer: image %d has %d pixels, want %dx%d", i, len(img), height, width)
		}
		copy(m.Data[i*height*width:], img)
	}
	return m, nil
}

// Validate checks the dimensions against the data length
func (m FeatureMap) Validate() error {
	if m.N < 0 || m.Height <= 0 || m.Width <= 0 || m.Channels <= 0 {
		return errors.Errorf("layer: bad feature map shape %dx%dx%dx%d", m.N, m.Height, m.Width, m.Channels)
	}
	if len(m.Data) != m.N*m.ImageSize() {
		return errors.Errorf("layer: %d values for shape %dx%dx%dx%d", len(m.Data), m.N, m.Height, m.Width, m.Channels)
	}
	return nil
}

// ImageSize is the number of values per image
func (m FeatureMap) ImageSize() int {
	return m.Height * m.Width * m.Channels
}

func (m FeatureMap) offset(i, y, x int) int {
	return ((i*m.Height+y)*m.Width + x) * m.Channels
}

// Pixel returns the channel values of image i at row y, column x
func (m FeatureMap) Pixel(i, y, x int) []float64 {
	o := m.offset(i, y, x)
	return m.Data[o : o+m.Channels]
}

// Patch appends the size x size window of image i with top left corner y, x to dst
func (m FeatureMap) Patch(dst []float64, i, y, x, size int) []float64 {
	for dy := 0; dy < size; dy++ {
		o := m.offset(i, y+dy, x)
		dst = append(dst, m.Data[o:o+size*m.Channels]...)
	}
	return dst
}

// Rows returns one flattened row per image, sharing the underlying data
func (m FeatureMap) Rows() [][]float64 {
	var o = make([][]float64, m.N)
	s := m.ImageSize()
	for i := range o {
		o[i] = m.Data[i*s : (i+1)*s : (i+1)*s]
	}
	return o
}
