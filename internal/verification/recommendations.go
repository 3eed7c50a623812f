package verification

import (
	"strings"

	"signet/internal/compliance"
	"signet/internal/legal"
)

// Recommendation texts surfaced to callers. These are the only explanation of
// a failed or degraded verification; raw errors never appear here.
const (
	recCryptoFailure      = "Cryptographic integrity could not be verified - request a re-signed document"
	recTimestampFailure   = "Signing timestamp is outside the acceptable window - confirm the signing time with the signer"
	recCertificateFailure = "Signing certificate is invalid - obtain a signature backed by a valid certificate"
	recBiometricFailure   = "Biometric verification failed - collect a fresh biometric sample from the signer"
	recDeviceFailure      = "Signing device is not trusted - verify the signer's device enrollment"
	recLocationFailure    = "Signing location differs from the expected location - confirm the signer's whereabouts"
	recRiskMitigation     = "High risk signature - manual review required before acceptance"
	recNotEnforceable     = "Signature is not legally enforceable - remediate failed checks and compliance gaps"
	recNotAdmissible      = "Evidentiary quality is insufficient for court admissibility - strengthen compliance coverage"

	recMissingRequirementsPrefix = "Address compliance gaps: "
)

// checkRecommendations maps each failing factual check to its advice, in the
// fixed AllChecks priority order.
var checkRecommendations = map[CheckName]string{
	CheckCryptographicIntegrity: recCryptoFailure,
	CheckTimestampValidity:      recTimestampFailure,
	CheckCertificateValidity:    recCertificateFailure,
	CheckBiometricMatch:         recBiometricFailure,
	CheckDeviceTrust:            recDeviceFailure,
	CheckLocationProximity:      recLocationFailure,
}

// recommendations derives the ordered action list from failed checks,
// compliance gaps, risk posture, and legal gaps. The same failing inputs
// always yield the same list in the same order.
func recommendations(results []CheckResult, status compliance.Status, validity legal.Validity, risk RiskAssessment) []string {
	recs := []string{}

	for _, r := range results {
		if r.Valid {
			continue
		}
		if rec, ok := checkRecommendations[r.Name]; ok {
			recs = append(recs, rec)
		}
	}

	if risk.MitigationRequired {
		recs = append(recs, recRiskMitigation)
	}
	if len(status.MissingRequirements) > 0 {
		recs = append(recs, recMissingRequirementsPrefix+strings.Join(status.MissingRequirements, "; "))
	}
	if !validity.Enforceable {
		recs = append(recs, recNotEnforceable)
	}
	if !validity.Admissible {
		recs = append(recs, recNotAdmissible)
	}

	return recs
}
