// Package kmeans splits 8-bit samples into a dark and a light cluster.
package kmeans

import "math"

type mean struct {
	sum   float64
	count int
}

func (m *mean) add(value float64, n int) {
	m.sum += value * float64(n)
	m.count += n
}

func (m *mean) average() float64 { return m.sum / float64(m.count) }

// Threshold performs k-means clustering with k=2 on values and returns the
// midpoint between the two converged centers. Values above the result belong
// to the light cluster.
//
// Centers start at the minimum and maximum. When values hold fewer than two
// distinct levels there is nothing to split and fallback is returned.
func Threshold(values []uint8, fallback uint8) uint8 {
	var hist [256]int
	lo, hi := 255, 0
	for _, v := range values {
		hist[v]++
		lo, hi = min(lo, int(v)), max(hi, int(v))
	}
	if lo >= hi {
		return fallback
	}

	threshold := float64(lo+hi) / 2
	etol := math.Pow10(-6)
	for range 300 {
		var light, dark mean
		for v, n := range hist {
			if n == 0 {
				continue
			}
			if float64(v) > threshold {
				light.add(float64(v), n)
			} else {
				dark.add(float64(v), n)
			}
		}
		next := (light.average() + dark.average()) / 2
		if diff := math.Abs(next - threshold); diff < etol {
			break
		}
		threshold = next
	}
	return uint8(threshold)
}
