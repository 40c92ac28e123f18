// Package score holds the two numeric signals attached to every finding: the
// Shannon entropy of the matched snippet and the combined confidence of the
// rules that fired on it.
package score

import "math"

// Entropy returns the Shannon entropy of s in bits per byte. The empty string
// has entropy 0.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}
	var counts [256]int
	for i := 0; i < len(s); i++ {
		counts[s[i]]++
	}
	n := float64(len(s))
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	if h < 0 {
		return 0
	}
	return h
}

// Combine merges the confidences of independently matching rules as a
// probabilistic union: 1 - Π(1 - c). A single confidence is returned as is.
// The result never drops below the largest input, which keeps it monotonic
// under appends despite rounding.
func Combine(cs []float64) float64 {
	switch len(cs) {
	case 0:
		return 0
	case 1:
		return clamp(cs[0])
	}
	prod := 1.0
	highest := 0.0
	for _, c := range cs {
		c = clamp(c)
		prod *= 1 - c
		if c > highest {
			highest = c
		}
	}
	return clamp(math.Max(1-prod, highest))
}

func clamp(c float64) float64 {
	switch {
	case math.IsNaN(c), c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
