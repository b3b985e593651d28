// Package stats summarizes samples gathered from self-play.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Interval is a sample mean with a two-sided confidence interval.
type Interval struct {
	N          int
	Mean       float64
	Low, High  float64
	Confidence float64
}

// MeanInterval uses the normal approximation. With fewer than two samples
// the interval collapses to the mean.
func MeanInterval(samples []float64, confidence float64) Interval {
	iv := Interval{N: len(samples), Confidence: confidence}
	if len(samples) == 0 {
		return iv
	}
	mean, std := stat.MeanStdDev(samples, nil)
	iv.Mean, iv.Low, iv.High = mean, mean, mean
	if len(samples) < 2 {
		return iv
	}
	margin := ZVal(confidence) * stat.StdErr(std, float64(len(samples)))
	iv.Low, iv.High = mean-margin, mean+margin
	return iv
}

// Contains reports whether x lies within the interval.
func (iv Interval) Contains(x float64) bool {
	return x >= iv.Low && x <= iv.High
}
