package suggest

import "math"

// poissonPMF is P(X = k) for a Poisson variable with mean lambda
func poissonPMF(lambda float64, k int) float64 {
	if lambda <= 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	// log space keeps k! from overflowing
	lg, _ := math.Lgamma(float64(k + 1))
	return math.Exp(float64(k)*math.Log(lambda) - lambda - lg)
}

// AtMost returns P(X <= k) for total goals with mean lambda
func AtMost(lambda float64, k int) float64 {
	p := 0.0
	for i := 0; i <= k; i++ {
		p += poissonPMF(lambda, i)
	}
	return math.Min(1, p)
}

// OverLine returns P(goals > line) for a half-goal line such as 2.5
func OverLine(lambda, line float64) float64 {
	return 1 - AtMost(lambda, int(math.Floor(line)))
}

// UnderLine returns P(goals < line) for a half-goal line
func UnderLine(lambda, line float64) float64 {
	return AtMost(lambda, int(math.Floor(line)))
}
