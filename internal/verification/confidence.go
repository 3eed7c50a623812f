package verification

import "signet/internal/compliance"

// confidenceScore blends the factual check pass-ratio with the compliance
// score into a single [0,1] measure.
func confidenceScore(results []CheckResult, status compliance.Status) float64 {
	if len(results) == 0 {
		return 0
	}

	passed := 0
	for _, r := range results {
		if r.Valid {
			passed++
		}
	}

	score := (float64(passed)/float64(len(results)) + status.Score) / 2
	return clamp01(score)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
