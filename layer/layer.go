// Package layer defines the feature map and layer interface of the
// convolutional forest pipeline
package layer

import "context"

import "github.com/neurlang/savanna/metrics"

// Layer transforms a feature map into another one. Fit learns the layer from
// a labeled map and returns its transform of that map.
type Layer interface {

	// Fit learns the layer on m, one label per image, and returns the output map of m.
	Fit(ctx context.Context, m FeatureMap, labels []int) (FeatureMap, error)

	// Predict returns the output map of m using the fitted layer.
	Predict(ctx context.Context, m FeatureMap) (FeatureMap, error)

	// Timing reports the time spent in Fit (train) and Predict (test).
	Timing() metrics.Timing
}
