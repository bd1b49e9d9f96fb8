// Package main runs the forest benchmark on MNIST and Fashion-MNIST. Random
// forests, randomer forests and structured randomer forests of several patch
// sizes are fitted on a 60000 image split and scored on 10000 held out images,
// followed by their aggregate and a stacked second stage on the predictions.
package main
