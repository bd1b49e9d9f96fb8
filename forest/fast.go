package forest

// FastFit trains a forest named by forestType ("binnedBase", "Base", "RerF"
// or "S-RerF") with the given number of trees and cores.
func FastFit(X [][]float64, Y []int, forestType string, trees, numCores int) (*Forest, error) {
	projection, err := ParseProjection(forestType)
	if err != nil {
		return nil, err
	}
	if trees <= 0 {
		trees = 100
	}
	cfg := Config{Trees: trees, Projection: projection, Cores: numCores}
	if projection == SRerF {
		cfg.ImageHeight, cfg.ImageWidth = squareImage(X)
	}
	return Train(cfg, X, Y)
}

// FastPredict predicts labels of X with a forest returned by FastFit.
func FastPredict(X [][]float64, f *Forest) ([]int, error) {
	return f.Predict(X)
}

// squareImage guesses the side of square images from the row length
func squareImage(X [][]float64) (int, int) {
	if len(X) == 0 {
		return 0, 0
	}
	var side int
	for side*side < len(X[0]) {
		side++
	}
	if side*side != len(X[0]) {
		return 0, 0
	}
	return side, side
}
