package physics

import "math"

var invertedPhi = 2 / (1 + math.Sqrt(5))

// Minimize1D runs a golden section search of f over [begin, end] and returns
// the middle of the final bracket.
func Minimize1D(begin, end float64, iterations int, f func(float64) float64) float64 {
	var x1, y1, x2, y2 float64
	has1, has2 := false, false
	for range iterations {
		if !has1 {
			x1 = end - (end-begin)*invertedPhi
			y1 = f(x1)
			has1 = true
		}
		if !has2 {
			x2 = begin + (end-begin)*invertedPhi
			y2 = f(x2)
			has2 = true
		}
		if y1 < y2 {
			end = x2
			x2, y2 = x1, y1
			has1 = false
		} else {
			begin = x1
			x1, y1 = x2, y2
			has2 = false
		}
	}
	return (begin + end) / 2
}
