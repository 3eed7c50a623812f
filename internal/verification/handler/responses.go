package handler

import (
	"time"

	"signet/internal/compliance"
	"signet/internal/legal"
	"signet/internal/verification"
)

// VerifyResponse is the HTTP response for verification requests.
type VerifyResponse struct {
	ID              string                     `json:"id"`
	SignatureID     string                     `json:"signature_id"`
	Valid           bool                       `json:"valid"`
	ConfidenceScore float64                    `json:"confidence_score"`
	Status          string                     `json:"verification_status"`
	Compliance      compliance.Status          `json:"compliance_status"`
	Legal           legal.Validity             `json:"legal_validity"`
	Details         DetailsResponse            `json:"details"`
	Checks          []verification.CheckResult `json:"check_results"`
	Recommendations []string                   `json:"recommendations"`
	VerifiedAt      time.Time                  `json:"verified_at"`
}

// DetailsResponse summarizes per-check verdicts plus the risk assessment.
type DetailsResponse struct {
	Checks map[string]bool             `json:"checks"`
	Risk   verification.RiskAssessment `json:"risk_assessment"`
}

// FromResult converts a domain result to an HTTP response.
func FromResult(result *verification.Result) *VerifyResponse {
	checks := make(map[string]bool, len(result.Details.Checks))
	for name, valid := range result.Details.Checks {
		checks[string(name)] = valid
	}

	return &VerifyResponse{
		ID:              result.ID,
		SignatureID:     result.SignatureID,
		Valid:           result.Valid,
		ConfidenceScore: result.ConfidenceScore,
		Status:          string(result.Status),
		Compliance:      result.Compliance,
		Legal:           result.Legal,
		Details: DetailsResponse{
			Checks: checks,
			Risk:   result.Details.Risk,
		},
		Checks:          result.CheckResults,
		Recommendations: result.Recommendations,
		VerifiedAt:      result.VerifiedAt,
	}
}
