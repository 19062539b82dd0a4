// Package random provides the XorShift128 generator used by every simulation
// and search step. Seeded runs must replay bit for bit, so the stream and the
// derived float, range and shuffle samplers are fixed here.
package random

import (
	"math"

	"github.com/pkg/errors"
)

// ErrZeroSeed is returned for a seed with every word equal to zero.
var ErrZeroSeed = errors.New("xorshift seed must not be all zero")

var defaultSeed = [4]uint32{0x193a6754, 0xa8a7d469, 0x97830e05, 0x113ba7bb}

// Strategy seeds carry this fixed tail after the game seed words.
const (
	strategySeedTail0 = 1841971383
	strategySeedTail1 = 1904458926
)

type XorShift struct {
	x, y, z, w uint32
}

func New() *XorShift {
	return &XorShift{x: defaultSeed[0], y: defaultSeed[1], z: defaultSeed[2], w: defaultSeed[3]}
}

func NewFromSeed(seed [4]uint32) (*XorShift, error) {
	if seed == [4]uint32{} {
		return nil, ErrZeroSeed
	}
	return &XorShift{x: seed[0], y: seed[1], z: seed[2], w: seed[3]}, nil
}

func MustFromSeed(seed [4]uint32) *XorShift {
	r, err := NewFromSeed(seed)
	if err != nil {
		panic(err)
	}
	return r
}

// FromGameSeed builds the generator a strategy uses for a match seed.
func FromGameSeed(seed int64) *XorShift {
	return MustFromSeed([4]uint32{
		uint32(seed),
		uint32(uint64(seed) >> 32),
		strategySeedTail0,
		strategySeedTail1,
	})
}

func (r *XorShift) Clone() *XorShift {
	c := *r
	return &c
}

func (r *XorShift) Uint32() uint32 {
	t := r.x ^ (r.x << 11)
	r.x, r.y, r.z = r.y, r.z, r.w
	r.w = r.w ^ (r.w >> 19) ^ (t ^ (t >> 8))
	return r.w
}

// Uint64 takes the high word first.
func (r *XorShift) Uint64() uint64 {
	hi := uint64(r.Uint32())
	lo := uint64(r.Uint32())
	return hi<<32 | lo
}

// Float64 returns a value in [0, 1) built from 52 random mantissa bits.
func (r *XorShift) Float64() float64 {
	const (
		upper = 0x3FF0000000000000
		lower = 0xFFFFFFFFFFFFF
	)
	return math.Float64frombits(upper|(r.Uint64()&lower)) - 1
}

// Float64Range returns a value in [low, high). Panics when low >= high.
func (r *XorShift) Float64Range(low, high float64) float64 {
	if !(low < high) {
		panic("random: Float64Range called with low >= high")
	}
	return low + (high-low)*r.Float64()
}

// Intn returns a value in [0, n) by rejection sampling on 64 bit words.
func (r *XorShift) Intn(n int) int {
	if n <= 0 {
		panic("random: Intn called with n <= 0")
	}
	span := uint64(n)
	zone := math.MaxUint64 - math.MaxUint64%span
	for {
		v := r.Uint64()
		if v < zone {
			return int(v % span)
		}
	}
}

// Shuffle permutes n elements with a backward Fisher-Yates pass.
func (r *XorShift) Shuffle(n int, swap func(i, j int)) {
	for i := n; i >= 2; {
		i--
		swap(i, r.Intn(i+1))
	}
}
