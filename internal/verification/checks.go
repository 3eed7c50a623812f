package verification

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/asaskevich/govalidator"

	"signet/internal/domain"
)

// Tunables shared by the check modules. The time windows mirror the compliance
// retention rules in the legal package.
const (
	clockSkewTolerance = 5 * time.Minute
	maxSignatureAge    = 3650 * 24 * time.Hour
	minIssuerLength    = 3

	biometricMatchThreshold = 0.8

	proximityLimitKM  = 100.0
	suspiciousDistKM  = 1000.0
	earthRadiusKM     = 6371.0
	staleSignatureAge = 365 * 24 * time.Hour
)

// Risk factor weights. The raw score is additive and uncapped; only the level
// classification buckets it.
const (
	weightSignatureAge    = 0.3
	weightUntrustedDevice = 0.5
	weightSuspiciousLoc   = 0.6
	weightInvalidIP       = 0.2
)

// BiometricMatcher scores how well provided biometric evidence matches the
// stored sample. Implementations may call out to a matching service; errors and
// timeouts are folded into a failed check by the caller.
type BiometricMatcher interface {
	Match(ctx context.Context, stored, provided domain.BiometricSample) (float64, error)
}

// HashMatcher is the default matcher: same sample type and an identical data
// hash score 0.95, same type with a different hash scores 0.3, and a type
// mismatch scores 0. A real template matcher replaces this in production.
type HashMatcher struct{}

func (HashMatcher) Match(_ context.Context, stored, provided domain.BiometricSample) (float64, error) {
	if stored.Type != provided.Type {
		return 0, nil
	}
	if stored.DataHash == provided.DataHash {
		return 0.95, nil
	}
	return 0.3, nil
}

// checkCryptographicIntegrity stands in for a real signature verify against the
// signer's key material: the signing pipeline only produces a verification hash
// when the cryptographic operation succeeded, so its presence is the verdict.
func checkCryptographicIntegrity(sig domain.Signature) CheckResult {
	verified := sig.Data.VerificationHash != ""

	result := CheckResult{
		Name:  CheckCryptographicIntegrity,
		Valid: verified,
		Crypto: &CryptoDetail{
			Algorithm:         "SHA-256",
			KeySize:           256,
			IntegrityVerified: verified,
		},
	}
	if !verified {
		result.Reason = "verification hash missing"
	}
	return result
}

// checkTimestampValidity accepts timestamps up to the clock-skew tolerance in
// the future and no older than the retention window.
func checkTimestampValidity(sig domain.Signature, now time.Time) CheckResult {
	if sig.Timestamp.IsZero() {
		return CheckResult{
			Name:      CheckTimestampValidity,
			Valid:     false,
			Reason:    "signing timestamp missing or malformed",
			Timestamp: &TimestampDetail{},
		}
	}

	age := now.Sub(sig.Timestamp)
	notFuture := !sig.Timestamp.After(now.Add(clockSkewTolerance))
	notTooOld := age <= maxSignatureAge

	result := CheckResult{
		Name:  CheckTimestampValidity,
		Valid: notFuture && notTooOld,
		Timestamp: &TimestampDetail{
			AgeDays:   int(math.Floor(age.Hours() / 24)),
			NotFuture: notFuture,
			NotTooOld: notTooOld,
		},
	}
	switch {
	case !notFuture:
		result.Reason = "signing timestamp is in the future"
	case !notTooOld:
		result.Reason = "signature exceeds the retention window"
	}
	return result
}

// checkCertificateValidity applies only to DIGITAL signatures carrying
// certificate info; all other signatures pass as "not required".
func checkCertificateValidity(sig domain.Signature, now time.Time) CheckResult {
	if sig.Type != domain.SignatureTypeDigital || sig.Certificate == nil {
		return CheckResult{
			Name:        CheckCertificateValidity,
			Valid:       true,
			Reason:      "certificate not required",
			Certificate: &CertDetail{Required: false},
		}
	}

	cert := sig.Certificate
	timeValid := !now.Before(cert.ValidFrom) && !now.After(cert.ValidUntil)
	chainValid := len(cert.CertificateChain) > 0
	issuerValid := len(cert.Issuer) > minIssuerLength

	result := CheckResult{
		Name:  CheckCertificateValidity,
		Valid: timeValid && chainValid && issuerValid,
		Certificate: &CertDetail{
			Required:    true,
			TimeValid:   timeValid,
			ChainValid:  chainValid,
			IssuerValid: issuerValid,
		},
	}
	switch {
	case !timeValid:
		result.Reason = "certificate outside its validity window"
	case !chainValid:
		result.Reason = "certificate chain is empty"
	case !issuerValid:
		result.Reason = "certificate issuer is not recognizable"
	}
	return result
}

// checkBiometricMatch applies only to BIOMETRIC signatures with a stored
// sample. Applicable signatures require fresh biometric evidence in the
// verification context; the match score comes from the configured matcher.
func checkBiometricMatch(ctx context.Context, matcher BiometricMatcher, sig domain.Signature, ev domain.Evidence) CheckResult {
	if sig.Type != domain.SignatureTypeBiometric || sig.Data.Biometric == nil {
		return CheckResult{
			Name:      CheckBiometricMatch,
			Valid:     true,
			Reason:    "biometric match not required",
			Biometric: &BiometricDetail{Required: false},
		}
	}

	if ev.Biometric == nil {
		return CheckResult{
			Name:      CheckBiometricMatch,
			Valid:     false,
			Reason:    "biometric evidence required",
			Biometric: &BiometricDetail{Required: true},
		}
	}

	score, err := matcher.Match(ctx, *sig.Data.Biometric, *ev.Biometric)
	if err != nil {
		return CheckResult{
			Name:      CheckBiometricMatch,
			Valid:     false,
			Reason:    "biometric matcher unavailable",
			Biometric: &BiometricDetail{Required: true, EvidenceProvided: true},
		}
	}

	result := CheckResult{
		Name:  CheckBiometricMatch,
		Valid: score >= biometricMatchThreshold,
		Biometric: &BiometricDetail{
			Required:         true,
			EvidenceProvided: true,
			MatchScore:       score,
		},
	}
	if !result.Valid {
		result.Reason = fmt.Sprintf("match score %.2f below threshold", score)
	}
	return result
}

// checkDeviceTrust passes when the signing device is enrolled or the recorded
// IP address is a syntactically valid literal. Treating IP syntax as a trust
// signal is a historical policy kept for compatibility; the detail exposes both
// signals separately so stricter consumers can split them.
func checkDeviceTrust(sig domain.Signature, ev domain.Evidence) CheckResult {
	_, deviceTrusted := ev.TrustedDeviceSet()[ev.DeviceFingerprint]
	ipValid := govalidator.IsIP(sig.IPAddress)

	result := CheckResult{
		Name:  CheckDeviceTrust,
		Valid: deviceTrusted || ipValid,
		Device: &DeviceDetail{
			DeviceTrusted:    deviceTrusted,
			NetworkPlausible: ipValid,
		},
	}
	if !result.Valid {
		result.Reason = "device not enrolled and IP address invalid"
	}
	return result
}

// checkLocationProximity applies only when both expected and actual locations
// were captured.
func checkLocationProximity(ev domain.Evidence) CheckResult {
	if ev.ExpectedLocation == nil || ev.ActualLocation == nil {
		return CheckResult{
			Name:     CheckLocationProximity,
			Valid:    true,
			Reason:   "location data not available",
			Location: &LocationDetail{Checked: false},
		}
	}

	distance := haversineKM(*ev.ExpectedLocation, *ev.ActualLocation)
	result := CheckResult{
		Name:  CheckLocationProximity,
		Valid: distance <= proximityLimitKM,
		Location: &LocationDetail{
			Checked:    true,
			DistanceKM: distance,
		},
	}
	if !result.Valid {
		result.Reason = fmt.Sprintf("signing location %.0f km from expected", distance)
	}
	return result
}

// checkRiskScoring accumulates the discrete risk factors. Unlike the factual
// checks, its pass verdict is a policy decision: only a critical overall risk
// fails the check.
func checkRiskScoring(sig domain.Signature, ev domain.Evidence, now time.Time) CheckResult {
	assessment := RiskAssessment{Factors: []RiskFactor{}}

	if !sig.Timestamp.IsZero() && now.Sub(sig.Timestamp) > staleSignatureAge {
		assessment.add(RiskFactor{Name: "signature_age", Severity: "medium", Weight: weightSignatureAge})
	}
	if _, trusted := ev.TrustedDeviceSet()[ev.DeviceFingerprint]; !trusted {
		assessment.add(RiskFactor{Name: "untrusted_device", Severity: "high", Weight: weightUntrustedDevice})
	}
	if ev.ExpectedLocation != nil && ev.ActualLocation != nil &&
		haversineKM(*ev.ExpectedLocation, *ev.ActualLocation) > suspiciousDistKM {
		assessment.add(RiskFactor{Name: "suspicious_location", Severity: "high", Weight: weightSuspiciousLoc})
	}
	if !govalidator.IsIP(sig.IPAddress) {
		assessment.add(RiskFactor{Name: "invalid_ip", Severity: "medium", Weight: weightInvalidIP})
	}

	assessment.Level = classifyRisk(assessment.Score)
	assessment.MitigationRequired = assessment.Level == RiskHigh || assessment.Level == RiskCritical

	result := CheckResult{
		Name:  CheckRiskScoring,
		Valid: assessment.Level != RiskCritical,
		Risk:  &assessment,
	}
	if !result.Valid {
		result.Reason = "overall risk is critical"
	}
	return result
}

func (a *RiskAssessment) add(factor RiskFactor) {
	a.Factors = append(a.Factors, factor)
	a.Score += factor.Weight
}

func classifyRisk(score float64) RiskLevel {
	switch {
	case score < 0.3:
		return RiskLow
	case score < 0.6:
		return RiskMedium
	case score < 0.8:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// haversineKM computes the great-circle distance between two points.
func haversineKM(a, b domain.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
