package stats

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(math.Abs(ZVal(95)-1.959964) < 1e-4)
	is.True(math.Abs(ZVal(99)-2.575829) < 1e-4)
}

func TestMeanInterval(t *testing.T) {
	is := is.New(t)
	type tc struct {
		samples []float64
		mean    float64
		stdev   float64
	}
	cases := []tc{
		{[]float64{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]float64{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]float64{1, 1}, 1, 0},
	}
	for _, c := range cases {
		iv := MeanInterval(c.samples, 95)
		is.True(FuzzyEqual(iv.Mean, c.mean))
		margin := ZVal(95) * c.stdev / math.Sqrt(float64(len(c.samples)))
		is.True(FuzzyEqual(iv.High-iv.Mean, margin))
		is.True(FuzzyEqual(iv.Mean-iv.Low, margin))
		is.True(iv.Contains(c.mean))
	}
}

func TestSmallSamples(t *testing.T) {
	is := is.New(t)
	iv := MeanInterval(nil, 95)
	is.Equal(iv.N, 0)
	is.Equal(iv.Mean, 0.0)

	iv = MeanInterval([]float64{0.5}, 95)
	is.Equal(iv.Low, 0.5)
	is.Equal(iv.High, 0.5)
}
