package compliance

import (
	"strings"

	"signet/internal/domain"
)

// Rule is a machine-checkable predicate over the signature/document pair.
// Rules are registered under stable keys so standards tables loaded from
// configuration can reference them declaratively.
type Rule func(sig domain.Signature, doc domain.Document) bool

// Rule keys understood by the evaluator. New jurisdictions reuse these keys (or
// register additional rules) without touching evaluation logic.
const (
	RuleDigitalWithCertificate = "digital_with_certificate"
	RuleQualifiedIssuer        = "qualified_issuer"
	RuleHashedAndTimestamped   = "hashed_and_timestamped"
	RuleBiometricConsent       = "biometric_consent"
)

// Standard names shipped in the default table.
const (
	StandardNationalETL          = "national-electronic-transactions-law"
	StandardCrossBorderQualified = "cross-border-qualified-signature-law"
	StandardConsumerESignature   = "consumer-esignature-law"
	StandardDataProtection       = "data-protection-law"
)

// Standard is one row of the compliance table: a named legal framework, the
// rule deciding whether a signature satisfies it, its contribution to the
// compliance score, and the requirement text recorded when it is unmet.
type Standard struct {
	Name        string  `yaml:"name"`
	Rule        string  `yaml:"rule"`
	Weight      float64 `yaml:"weight"`
	Requirement string  `yaml:"requirement"`
}

// BuiltinRules returns the rule set available to standards tables.
func BuiltinRules() map[string]Rule {
	return map[string]Rule{
		RuleDigitalWithCertificate: func(sig domain.Signature, _ domain.Document) bool {
			return sig.Type == domain.SignatureTypeDigital && sig.Certificate != nil
		},
		RuleQualifiedIssuer: func(sig domain.Signature, _ domain.Document) bool {
			return sig.Type == domain.SignatureTypeDigital &&
				sig.Certificate != nil &&
				strings.Contains(sig.Certificate.Issuer, "Qualified")
		},
		RuleHashedAndTimestamped: func(sig domain.Signature, _ domain.Document) bool {
			return sig.Data.VerificationHash != "" && !sig.Timestamp.IsZero()
		},
		// Consent to biometric processing is collected upstream at capture time;
		// presence of the stored sample implies a consented capture.
		RuleBiometricConsent: func(sig domain.Signature, _ domain.Document) bool {
			return sig.Data.Biometric != nil
		},
	}
}

// DefaultStandards returns the built-in compliance table. Deployments override
// it with a YAML table (see Load) to add jurisdictions.
func DefaultStandards() []Standard {
	return []Standard{
		{
			Name:        StandardNationalETL,
			Rule:        RuleDigitalWithCertificate,
			Weight:      0.3,
			Requirement: "digital signature backed by a certificate",
		},
		{
			Name:        StandardCrossBorderQualified,
			Rule:        RuleQualifiedIssuer,
			Weight:      0.3,
			Requirement: "certificate issued by a qualified trust service provider",
		},
		{
			Name:        StandardConsumerESignature,
			Rule:        RuleHashedAndTimestamped,
			Weight:      0.2,
			Requirement: "verification hash and signing timestamp recorded",
		},
		{
			Name:        StandardDataProtection,
			Rule:        RuleBiometricConsent,
			Weight:      0.2,
			Requirement: "consented biometric data on record",
		},
	}
}
