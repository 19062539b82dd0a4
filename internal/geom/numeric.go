package geom

import (
	"math"

	"golang.org/x/exp/constraints"
)

// ScoreScale is the fixed factor used to turn fractional scores into
// comparable integers.
const ScoreScale = 1000.0

type Number interface {
	constraints.Integer | constraints.Float
}

func Square[T Number](v T) T {
	return v * v
}

func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsBetween reports lo < v < hi.
func IsBetween[T constraints.Ordered](v, lo, hi T) bool {
	return lo < v && v < hi
}

// AsScore rounds a fractional score into a total-ordered integer.
func AsScore(v float64) int {
	return int(math.Round(v * ScoreScale))
}
