package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"signet/internal/domain"
)

// =============================================================================
// Compliance Evaluator Test Suite
// =============================================================================

type EvaluatorSuite struct {
	suite.Suite
	now       time.Time
	evaluator *Evaluator
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var err error
	s.evaluator, err = NewEvaluator(DefaultStandards())
	s.Require().NoError(err)
}

func (s *EvaluatorSuite) qualifiedDigital() domain.Signature {
	return domain.Signature{
		ID:   "sig-1",
		Type: domain.SignatureTypeDigital,
		Data: domain.SignatureData{VerificationHash: "a1b2c3"},
		Certificate: &domain.CertificateInfo{
			Issuer: "Examplestan Qualified CA",
		},
		Timestamp: s.now.Add(-time.Hour),
	}
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *EvaluatorSuite) TestNewEvaluator() {
	s.Run("empty table returns error", func() {
		_, err := NewEvaluator(nil)
		s.Error(err)
		s.Contains(err.Error(), "standards table is required")
	})

	s.Run("unnamed standard returns error", func() {
		_, err := NewEvaluator([]Standard{{Rule: RuleDigitalWithCertificate, Weight: 0.5}})
		s.Error(err)
		s.Contains(err.Error(), "name is required")
	})

	s.Run("unknown rule returns error", func() {
		_, err := NewEvaluator([]Standard{{Name: "law-x", Rule: "no_such_rule", Weight: 0.5}})
		s.Error(err)
		s.Contains(err.Error(), "unknown rule")
	})

	s.Run("non-positive weight returns error", func() {
		_, err := NewEvaluator([]Standard{{Name: "law-x", Rule: RuleDigitalWithCertificate, Weight: 0}})
		s.Error(err)
		s.Contains(err.Error(), "positive weight")
	})

	s.Run("default table is valid", func() {
		evaluator, err := NewEvaluator(DefaultStandards())
		s.NoError(err)
		s.Len(evaluator.Standards(), 4)
	})
}

// =============================================================================
// Evaluate Tests
// =============================================================================

func (s *EvaluatorSuite) TestEvaluate() {
	doc := domain.Document{ID: "doc-1"}

	s.Run("qualified digital signature meets three standards", func() {
		status := s.evaluator.Evaluate(s.qualifiedDigital(), doc)

		s.True(status.OverallCompliant)
		s.Equal([]string{
			StandardNationalETL,
			StandardCrossBorderQualified,
			StandardConsumerESignature,
		}, status.StandardsMet)
		s.InDelta(0.8, status.Score, 1e-9)
		s.Require().Len(status.MissingRequirements, 1)
		s.Contains(status.MissingRequirements[0], StandardDataProtection)
	})

	s.Run("bare electronic signature meets nothing", func() {
		sig := domain.Signature{ID: "sig-2", Type: domain.SignatureTypeElectronic}

		status := s.evaluator.Evaluate(sig, doc)
		s.False(status.OverallCompliant)
		s.Zero(status.Score)
		s.Empty(status.StandardsMet)
		s.Len(status.MissingRequirements, 4)
	})

	s.Run("unqualified issuer drops the cross-border standard only", func() {
		sig := s.qualifiedDigital()
		sig.Certificate.Issuer = "Some Ordinary CA"

		status := s.evaluator.Evaluate(sig, doc)
		s.NotContains(status.StandardsMet, StandardCrossBorderQualified)
		s.Contains(status.StandardsMet, StandardNationalETL)
		s.InDelta(0.5, status.Score, 1e-9)
	})

	s.Run("biometric sample on record satisfies data protection", func() {
		sig := domain.Signature{
			ID:   "sig-3",
			Type: domain.SignatureTypeBiometric,
			Data: domain.SignatureData{
				Biometric: &domain.BiometricSample{Type: "fingerprint", DataHash: "deadbeef"},
			},
		}

		status := s.evaluator.Evaluate(sig, doc)
		s.Contains(status.StandardsMet, StandardDataProtection)
	})

	s.Run("missing requirement records the standard name and text", func() {
		sig := domain.Signature{ID: "sig-4", Type: domain.SignatureTypeElectronic}

		status := s.evaluator.Evaluate(sig, doc)
		s.Contains(status.MissingRequirements,
			StandardNationalETL+": digital signature backed by a certificate")
	})

	s.Run("meeting more standards never lowers the score", func() {
		weak := domain.Signature{ID: "sig-5", Type: domain.SignatureTypeElectronic}
		weakStatus := s.evaluator.Evaluate(weak, doc)

		strongStatus := s.evaluator.Evaluate(s.qualifiedDigital(), doc)
		s.GreaterOrEqual(strongStatus.Score, weakStatus.Score)
		s.GreaterOrEqual(len(strongStatus.StandardsMet), len(weakStatus.StandardsMet))
	})
}
