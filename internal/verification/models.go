package verification

import (
	"time"

	"signet/internal/compliance"
	"signet/internal/domain"
	"signet/internal/legal"
)

// CheckName identifies one of the verification check modules. The engine always
// reports checks in the order of AllChecks.
type CheckName string

const (
	CheckCryptographicIntegrity CheckName = "cryptographic_integrity"
	CheckTimestampValidity      CheckName = "timestamp_validity"
	CheckCertificateValidity    CheckName = "certificate_validity"
	CheckBiometricMatch         CheckName = "biometric_match"
	CheckDeviceTrust            CheckName = "device_trust"
	CheckLocationProximity      CheckName = "location_proximity"
	CheckRiskScoring            CheckName = "risk_scoring"
)

// AllChecks is the positional order downstream consumers index into.
var AllChecks = [...]CheckName{
	CheckCryptographicIntegrity,
	CheckTimestampValidity,
	CheckCertificateValidity,
	CheckBiometricMatch,
	CheckDeviceTrust,
	CheckLocationProximity,
	CheckRiskScoring,
}

// CheckResult is the verdict of a single check module. Exactly one of the
// detail pointers is set, matching Name, so the orchestrator can carry results
// in one slice without casting. Reason holds a short human-readable note for
// trivially-passed or failed checks.
type CheckResult struct {
	Name   CheckName `json:"name"`
	Valid  bool      `json:"valid"`
	Reason string    `json:"reason,omitempty"`

	Crypto      *CryptoDetail     `json:"crypto,omitempty"`
	Timestamp   *TimestampDetail  `json:"timestamp,omitempty"`
	Certificate *CertDetail       `json:"certificate,omitempty"`
	Biometric   *BiometricDetail  `json:"biometric,omitempty"`
	Device      *DeviceDetail     `json:"device,omitempty"`
	Location    *LocationDetail   `json:"location,omitempty"`
	Risk        *RiskAssessment   `json:"risk,omitempty"`
}

// CryptoDetail reports the integrity verification parameters. The current
// verifier is a structural stub; a production deployment swaps in a real
// cryptographic verify behind the same contract.
type CryptoDetail struct {
	Algorithm         string `json:"algorithm"`
	KeySize           int    `json:"key_size"`
	IntegrityVerified bool   `json:"integrity_verified"`
}

// TimestampDetail reports the signing-time window evaluation.
type TimestampDetail struct {
	AgeDays   int  `json:"age_days"`
	NotFuture bool `json:"not_future"`
	NotTooOld bool `json:"not_too_old"`
}

// CertDetail reports certificate window, chain, and issuer evaluation.
type CertDetail struct {
	Required    bool `json:"required"`
	TimeValid   bool `json:"time_valid"`
	ChainValid  bool `json:"chain_valid"`
	IssuerValid bool `json:"issuer_valid"`
}

// BiometricDetail reports the biometric match outcome.
type BiometricDetail struct {
	Required         bool    `json:"required"`
	EvidenceProvided bool    `json:"evidence_provided"`
	MatchScore       float64 `json:"match_score"`
}

// DeviceDetail exposes the two trust signals separately. The check's pass/fail
// keeps the historical OR of both; consumers that want stricter policy can read
// the split signals.
type DeviceDetail struct {
	DeviceTrusted    bool `json:"device_trusted"`
	NetworkPlausible bool `json:"network_plausible"`
}

// LocationDetail reports the proximity evaluation. DistanceKM is meaningful
// only when Checked is true.
type LocationDetail struct {
	Checked    bool    `json:"checked"`
	DistanceKM float64 `json:"distance_km"`
}

// RiskLevel buckets the additive risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskFactor is one discrete condition contributing to the risk score.
type RiskFactor struct {
	Name     string  `json:"factor"`
	Severity string  `json:"severity"`
	Weight   float64 `json:"weight"`
}

// RiskAssessment is the aggregated operational-risk posture of a signature.
type RiskAssessment struct {
	Score              float64      `json:"risk_score"`
	Level              RiskLevel    `json:"overall_risk"`
	Factors            []RiskFactor `json:"risk_factors"`
	MitigationRequired bool         `json:"mitigation_required"`
}

// Status is the headline verification outcome.
type Status string

const (
	StatusVerified Status = "VERIFIED"
	StatusFailed   Status = "FAILED"
)

// Details summarizes per-check verdicts plus the full risk assessment, keyed
// the way audit consumers expect.
type Details struct {
	Checks map[CheckName]bool `json:"checks"`
	Risk   RiskAssessment     `json:"risk_assessment"`
}

// Result is the complete verification outcome: a pure function of the
// signature, document, evidence, and the clock reading taken at the start of
// the call.
type Result struct {
	ID              string            `json:"id"`
	SignatureID     string            `json:"signature_id"`
	Valid           bool              `json:"valid"`
	ConfidenceScore float64           `json:"confidence_score"`
	Status          Status            `json:"verification_status"`
	Compliance      compliance.Status `json:"compliance_status"`
	Legal           legal.Validity    `json:"legal_validity"`
	CheckResults    []CheckResult     `json:"check_results"`
	Details         Details           `json:"details"`
	Recommendations []string          `json:"recommendations"`
	VerifiedAt      time.Time         `json:"verified_at"`
}

// Clock supplies the engine's notion of now. Injected so verification stays a
// pure function of its inputs in tests.
type Clock func() time.Time

// Input bundles the three verification inputs.
type Input struct {
	Signature domain.Signature
	Document  domain.Document
	Evidence  domain.Evidence
}
