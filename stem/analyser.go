package stem

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/viterin/vek/vek32"
)

type (
	// Analyser turns a window of mono samples into byte frequency data, the
	// way browsers' AnalyserNode does: Hann windowed FFT, magnitudes smoothed
	// over time, converted to decibels and mapped from [MinDecibels,
	// MaxDecibels] to 0..255.
	Analyser struct {
		size       int
		window     []float32 // window weighting function
		bitPerm    []int     // bit-reversal permutation table
		tmpC       []complex128
		tmp1, tmp2 []float32
		smoothed   []float32
	}
)

const (
	DefaultFFTSize = 2048

	MinDecibels = -100
	MaxDecibels = -30
	// SmoothingTimeConstant is the weight of the previous magnitude when a new
	// spectrum is computed.
	SmoothingTimeConstant = 0.8
)

func NewAnalyser(size int) (*Analyser, error) {
	if size < 32 || size&(size-1) != 0 {
		return nil, fmt.Errorf("fft size %d is not a power of two >= 32", size)
	}
	a := &Analyser{
		size:     size,
		window:   make([]float32, size),
		bitPerm:  make([]int, size),
		tmpC:     make([]complex128, size),
		tmp1:     make([]float32, size),
		tmp2:     make([]float32, size),
		smoothed: make([]float32, size/2),
	}
	for i := range size {
		// Hanning window
		a.window[i] = float32(0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1))))
		a.bitPerm[i] = i
	}
	// compute the bit-reversal permutation
	for i, j := 1, 0; i < size; i++ {
		bit := size >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			a.bitPerm[i], a.bitPerm[j] = a.bitPerm[j], a.bitPerm[i]
		}
	}
	return a, nil
}

func (a *Analyser) Size() int { return a.size }

// FrequencyBytes analyses samples, which must have Size() values, and writes
// up to Size()/2 bins into dst. It returns the number of bins written.
func (a *Analyser) FrequencyBytes(samples []float32, dst []byte) int {
	a.process(samples)
	n := min(len(dst), len(a.smoothed))
	scale := 255 / float64(MaxDecibels-MinDecibels)
	for i := range n {
		db := MinDecibels - 1.0
		if m := a.smoothed[i]; m > 0 {
			db = 20 * math.Log10(float64(m))
		}
		dst[i] = byte(min(max((db-MinDecibels)*scale, 0), 255))
	}
	return n
}

func (a *Analyser) process(samples []float32) {
	copy(a.tmp1, samples)
	clear(a.tmp1[min(len(samples), a.size):])
	vek32.Mul_Inplace(a.tmp1, a.window)          // apply windowing
	vek32.Gather_Into(a.tmp2, a.tmp1, a.bitPerm) // bit-reversal permutation
	c := a.tmpC
	for i := range c {
		c[i] = complex(float64(a.tmp2[i]), 0)
	}
	n := len(c)
	for len := 2; len <= n; len <<= 1 {
		ang := 2 * math.Pi / float64(len)
		wlen := complex(math.Cos(ang), math.Sin(ang))
		for i := 0; i < n; i += len {
			w := complex(1, 0)
			for j := 0; j < len/2; j++ {
				u := c[i+j]
				v := c[i+j+len/2] * w
				c[i+j] = u + v
				c[i+j+len/2] = u - v
				w *= wlen
			}
		}
	}
	m := n / 2
	mag := a.tmp1[:m]
	for i := range m {
		mag[i] = float32(cmplx.Abs(c[i]))
	}
	vek32.DivNumber_Inplace(mag, float32(n))
	// smoothed = k*smoothed + (1-k)*mag
	vek32.MulNumber_Inplace(a.smoothed, SmoothingTimeConstant)
	vek32.MulNumber_Inplace(mag, 1-SmoothingTimeConstant)
	vek32.Add_Inplace(a.smoothed, mag)
}

// TimeDomainBytes maps samples in [-1, 1] to bytes, 128 being silence.
func TimeDomainBytes(samples []float32, dst []byte) int {
	n := min(len(dst), len(samples))
	for i, v := range samples[:n] {
		dst[i] = byte(min(max(128*(1+float64(v)), 0), 255))
	}
	return n
}
