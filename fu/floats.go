package fu

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func Mean(a []float64) float64 {
	if len(a) == 0 {
		return math.NaN()
	}
	return stat.Mean(a, nil)
}

/*
Mse is the mean squared difference of two equally sized vectors
*/
func Mse(a, b []float64) float64 {
	if len(a) == 0 {
		return math.NaN()
	}
	d := floats.Distance(a, b, 2)
	return d * d / float64(len(a))
}

/*
Round rounds x half away from zero to the given count of decimal digits
*/
func Round(x float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(x*p) / p
}

/*
Indmaxd returns index of the first maximal value
*/
func Indmaxd(a []float64) int {
	if len(a) == 0 {
		return -1
	}
	return floats.MaxIdx(a)
}

// Fnzi returns the first non-zero value
func Fnzi(a ...int) int {
	for _, x := range a {
		if x != 0 {
			return x
		}
	}
	return 0
}

func Mini(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func Maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}

/*
Integral reports whether every value has no fractional part
*/
func Integral(a []float64) bool {
	for _, x := range a {
		if math.IsNaN(x) || math.IsInf(x, 0) || math.Trunc(x) != x {
			return false
		}
	}
	return true
}
