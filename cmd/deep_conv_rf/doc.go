// Package main benchmarks convolutional random forests. One or two ConvRF
// layers are fitted on a class subset of MNIST or Fashion-MNIST, their class
// probability maps are classified by a full forest, and the accuracy is
// printed together with the time spent in every phase.
package main
