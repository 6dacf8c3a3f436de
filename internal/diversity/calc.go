package diversity

import "math"

// outcome is the tagged result of one guarded sub-calculation. The analyzer
// applies defaults explicitly on failure instead of intercepting panics, so
// every degraded path is visible and testable.
type outcome struct {
	value  float64
	failed bool
	reason string
}

func calcOK(v float64) outcome {
	return outcome{value: v}
}

func calcFailed(reason string) outcome {
	return outcome{failed: true, reason: reason}
}

// finite guards a computed value: non-finite results are failures, not data.
func finite(name string, v float64) outcome {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return calcFailed(name + " produced a non-finite value")
	}
	return calcOK(v)
}

// computeMean returns the arithmetic mean, 0 for an empty slice.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeStddev calculates population standard deviation (n denominator),
// matching the dispersion convention of the recorded backtest metrics.
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n))
}

// clip bounds v to [lo, hi].
func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
