package analysis

import "math"

// Numeric helpers shared by the analyzers. Conventions: mean of an empty
// series is 0; variance and standard deviation are sample statistics (n-1
// denominator) and are 0 for fewer than two points. Callers that need to
// distinguish "no signal" from "zero signal" track DataStatus themselves.

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values)-1)
}

func stdDev(values []float64) float64 {
	return math.Sqrt(variance(values))
}

// linearSlope fits a first-degree least-squares line over values indexed
// 0..n-1 and returns its slope. Fewer than two points has no defined rate of
// change and returns 0.
func linearSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	// x = 0..n-1, so sum(x) and sum(x^2) have closed forms.
	fn := float64(n)
	sumX := fn * (fn - 1) / 2
	sumXX := fn * (fn - 1) * (2*fn - 1) / 6

	var sumY, sumXY float64
	for i, v := range values {
		sumY += v
		sumXY += float64(i) * v
	}

	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
