package util

import (
	"github.com/fogleman/ease"
)

// GenerateLut builds a symmetric fade table of the given length: the first
// half eases from 0 towards 1 and the second half mirrors it back down.
func GenerateLut(length int) []float64 {
	lut := make([]float64, length)
	if length < 2 {
		return lut
	}
	increment := 1.0 / float64(length/2)
	for i, j := 0, length-1; i < length/2; i, j = i+1, j-1 {
		value := float64(i) * increment
		lut[i] = ease.InOutQuad(value)
		lut[j] = ease.InOutQuad(value)
	}
	return lut
}

// Sample returns the LUT value at step, wrapping around its length.
func Sample(lut []float64, step int) float64 {
	if len(lut) == 0 {
		return 0
	}
	step %= len(lut)
	if step < 0 {
		step += len(lut)
	}
	return lut[step]
}
