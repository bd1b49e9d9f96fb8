// Package trainer runs the benchmark experiments. It fits estimators on a
// dataset split and reports their accuracy, averages and stacks predictions,
// and drives the layered ConvRF pipeline with per phase timing.
package trainer
