// Package forecast holds the pure arithmetic behind stock projection,
// anomaly scoring and synthetic history. Nothing here touches storage.
package forecast

import "math"

// LinearTrend fits an ordinary least-squares line to ys, using the sample
// index as x, and returns the slope normalized by the mean of ys: a
// fractional change per day. Fewer than minPoints values, a degenerate x
// spread or a zero mean all yield 0.
func LinearTrend(ys []float64, minPoints int) float64 {
	n := len(ys)
	if n == 0 || n < minPoints {
		return 0
	}

	var sumX, sumY float64
	for i, y := range ys {
		sumX += float64(i)
		sumY += y
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var num, den float64
	for i, y := range ys {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	if den == 0 || meanY == 0 {
		return 0
	}

	return (num / den) / meanY
}

// ProjectStock extrapolates current stock linearly over horizonDays.
func ProjectStock(current, dailyRate float64, horizonDays int) float64 {
	return current * (1 + dailyRate*float64(horizonDays))
}

// PopulationStats returns the mean and population standard deviation
// (divisor n) of xs. An empty slice yields zeros.
func PopulationStats(xs []float64) (mean, stdDev float64) {
	if len(xs) == 0 {
		return 0, 0
	}

	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean = sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(xs)))
}

// ZScore is |x - mean| / stdDev, or 0 when stdDev is 0.
func ZScore(x, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return math.Abs(x-mean) / stdDev
}

// IsAnomalous reports whether a score strictly exceeds threshold and the
// sample was large enough to trust.
func IsAnomalous(z, threshold float64, samples, minSamples int) bool {
	return samples >= minSamples && z > threshold
}

// SynthesizeStock scales current by factor and pulls implausible results back
// toward the safe band: below half the minimum becomes 0.8×min, above one and
// a half times the maximum becomes 1.2×max. Nil bounds are not enforced.
func SynthesizeStock(current, factor float64, safeMin, safeMax *float64) float64 {
	v := current * factor
	if safeMin != nil && v < 0.5*(*safeMin) {
		return 0.8 * (*safeMin)
	}
	if safeMax != nil && v > 1.5*(*safeMax) {
		return 1.2 * (*safeMax)
	}
	return v
}

// JitterFactor maps a uniform sample in [0,1) onto the [0.8, 1.2) scaling band
// used for synthetic history.
func JitterFactor(u float64) float64 {
	return 0.8 + u*0.4
}
