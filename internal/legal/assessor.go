// Package legal derives the legal standing of a verified signature from the
// factual check outcome and its compliance posture. The rules are pure
// functions so they stay trivially testable.
package legal

import (
	"time"

	"signet/internal/compliance"
)

// EvidenceQuality grades how well a signature would hold up as evidence.
type EvidenceQuality string

const (
	EvidenceQualityHigh   EvidenceQuality = "high"
	EvidenceQualityMedium EvidenceQuality = "medium"
	EvidenceQualityLow    EvidenceQuality = "low"
)

// RetentionWindow is the mandated record-keeping period for signed documents.
const RetentionWindow = 3650 * 24 * time.Hour

// Validity is the legal assessment of a signature.
type Validity struct {
	Enforceable       bool            `json:"legally_enforceable"`
	Admissible        bool            `json:"admissible_in_court"`
	EvidenceQuality   EvidenceQuality `json:"evidence_quality"`
	JurisdictionValid bool            `json:"jurisdiction_valid"`
	RetentionValid    bool            `json:"retention_valid"`
}

// Assess combines the aggregate check verdict and the compliance status.
// Enforceability requires both; admissibility additionally needs a compliance
// score above 0.5. Retention is measured from the signing instant.
func Assess(checksValid bool, status compliance.Status, signedAt, now time.Time) Validity {
	enforceable := status.OverallCompliant && checksValid

	return Validity{
		Enforceable:       enforceable,
		Admissible:        enforceable && status.Score > 0.5,
		EvidenceQuality:   gradeEvidence(status.Score),
		JurisdictionValid: len(status.StandardsMet) > 0,
		RetentionValid:    !signedAt.IsZero() && now.Sub(signedAt) <= RetentionWindow,
	}
}

func gradeEvidence(score float64) EvidenceQuality {
	switch {
	case score > 0.8:
		return EvidenceQualityHigh
	case score > 0.5:
		return EvidenceQualityMedium
	default:
		return EvidenceQualityLow
	}
}
