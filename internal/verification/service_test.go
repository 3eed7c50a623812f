package verification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"signet/internal/compliance"
	"signet/internal/domain"
	"signet/pkg/platform/audit"
	auditmemory "signet/pkg/platform/audit/store/memory"
	"signet/pkg/platform/sentinel"
)

// =============================================================================
// Store and Cache Fakes
// =============================================================================

type fakeStore struct {
	mu      sync.Mutex
	results map[string]*Result
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{results: make(map[string]*Result)}
}

func (f *fakeStore) Save(_ context.Context, result *Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.results[result.SignatureID] = result
	return nil
}

func (f *fakeStore) FindBySignature(_ context.Context, signatureID string) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result, ok := f.results[signatureID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return result, nil
}

type fakeCache struct {
	mu      sync.Mutex
	results map[string]*Result
}

func newFakeCache() *fakeCache {
	return &fakeCache{results: make(map[string]*Result)}
}

func (f *fakeCache) Get(_ context.Context, signatureID string) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result, ok := f.results[signatureID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return result, nil
}

func (f *fakeCache) Set(_ context.Context, result *Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[result.SignatureID] = result
	return nil
}

// =============================================================================
// Verification Service Test Suite
// =============================================================================
// Justification for unit tests: the service composes check fan-out, compliance
// evaluation, legal assessment, and scoring into one result. The reference
// scenarios pin the composed outcome against a frozen clock.

type ServiceSuite struct {
	suite.Suite
	now       time.Time
	store     *fakeStore
	cache     *fakeCache
	auditSink *auditmemory.Store
	service   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.store = newFakeStore()
	s.cache = newFakeCache()
	s.auditSink = auditmemory.New()

	evaluator, err := compliance.NewEvaluator(compliance.DefaultStandards())
	s.Require().NoError(err)

	s.service, err = New(NewEngine(), evaluator,
		WithLogger(slog.Default()),
		WithStore(s.store),
		WithCache(s.cache),
		WithAudit(audit.NewPublisher(s.auditSink)),
		WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)
}

func (s *ServiceSuite) qualifiedDigitalInput() (domain.Signature, domain.Document, domain.Evidence) {
	sig := domain.Signature{
		ID:         "sig-digital",
		DocumentID: "doc-1",
		SignerID:   "signer-1",
		Type:       domain.SignatureTypeDigital,
		Data:       domain.SignatureData{VerificationHash: "a1b2c3", DigitalSignature: "MEUCIQ=="},
		Certificate: &domain.CertificateInfo{
			Issuer:           "Examplestan Qualified CA",
			SerialNumber:     "01:02:03",
			ValidFrom:        s.now.Add(-365 * 24 * time.Hour),
			ValidUntil:       s.now.Add(365 * 24 * time.Hour),
			CertificateChain: []string{"leaf", "root"},
		},
		Timestamp: s.now.Add(-time.Hour),
		IPAddress: "203.0.113.7",
	}
	doc := domain.Document{ID: "doc-1"}
	ev := domain.Evidence{
		DeviceFingerprint: "fp-1",
		TrustedDevices:    []string{"fp-1"},
	}
	return sig, doc, ev
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *ServiceSuite) TestNew() {
	evaluator, err := compliance.NewEvaluator(compliance.DefaultStandards())
	s.Require().NoError(err)

	s.Run("nil engine returns error", func() {
		_, err := New(nil, evaluator)
		s.Error(err)
		s.Contains(err.Error(), "engine is required")
	})

	s.Run("nil evaluator returns error", func() {
		_, err := New(NewEngine(), nil)
		s.Error(err)
		s.Contains(err.Error(), "standards evaluator is required")
	})

	s.Run("minimal construction succeeds without sinks", func() {
		svc, err := New(NewEngine(), evaluator)
		s.NoError(err)
		s.NotNil(svc)
	})
}

// =============================================================================
// Reference Scenario: Qualified Digital Signature
// =============================================================================

func (s *ServiceSuite) TestVerifyQualifiedDigitalSignature() {
	sig, doc, ev := s.qualifiedDigitalInput()

	result := s.service.Verify(context.Background(), sig, doc, ev)

	s.Require().NotNil(result)
	s.True(result.Valid)
	s.Equal(StatusVerified, result.Status)
	s.NotEmpty(result.ID)
	s.Equal("sig-digital", result.SignatureID)
	s.Equal(s.now, result.VerifiedAt)

	s.Contains(result.Compliance.StandardsMet, compliance.StandardNationalETL)
	s.Contains(result.Compliance.StandardsMet, compliance.StandardCrossBorderQualified)
	s.Contains(result.Compliance.StandardsMet, compliance.StandardConsumerESignature)
	s.InDelta(0.8, result.Compliance.Score, 1e-9)

	s.True(result.Legal.Enforceable)
	s.True(result.Legal.Admissible)
	s.True(result.Legal.RetentionValid)

	// 7/7 checks passed, compliance 0.8.
	s.InDelta((1.0+0.8)/2, result.ConfidenceScore, 1e-9)
	s.Empty(result.Recommendations)
}

// =============================================================================
// Reference Scenario: Unhashed Future-Dated Electronic Signature
// =============================================================================

func (s *ServiceSuite) TestVerifyBrokenElectronicSignature() {
	sig := domain.Signature{
		ID:        "sig-electronic",
		SignerID:  "signer-2",
		Type:      domain.SignatureTypeElectronic,
		Data:      domain.SignatureData{VerificationHash: ""},
		Timestamp: s.now.Add(24 * time.Hour),
		IPAddress: "203.0.113.7",
	}

	result := s.service.Verify(context.Background(), sig, domain.Document{ID: "doc-2"}, domain.Evidence{})

	s.False(result.Valid)
	s.Equal(StatusFailed, result.Status)
	s.Less(result.ConfidenceScore, 0.5)

	s.False(result.Details.Checks[CheckCryptographicIntegrity])
	s.False(result.Details.Checks[CheckTimestampValidity])

	s.Require().NotEmpty(result.Recommendations)
	s.Equal(recCryptoFailure, result.Recommendations[0])
	s.Equal(recTimestampFailure, result.Recommendations[1])
}

// =============================================================================
// Reference Scenario: Critical Risk Posture
// =============================================================================

func (s *ServiceSuite) TestVerifyCriticalRiskSignature() {
	sig, doc, _ := s.qualifiedDigitalInput()
	sig.Timestamp = s.now.Add(-2 * 365 * 24 * time.Hour)
	sig.IPAddress = "invalid-ip"
	ev := domain.Evidence{
		DeviceFingerprint: "fp-unknown",
		ExpectedLocation:  &domain.Coordinates{Latitude: 52.52, Longitude: 13.405},
		ActualLocation:    &domain.Coordinates{Latitude: 38.722, Longitude: -9.139},
	}

	result := s.service.Verify(context.Background(), sig, doc, ev)

	s.False(result.Valid)
	s.Equal(RiskCritical, result.Details.Risk.Level)
	s.True(result.Details.Risk.MitigationRequired)
	s.Contains(result.Recommendations, recRiskMitigation)
}

// =============================================================================
// Reference Scenario: Matching Biometric Signature
// =============================================================================

func (s *ServiceSuite) TestVerifyBiometricSignature() {
	sample := domain.BiometricSample{Type: "fingerprint", DataHash: "deadbeef"}
	sig := domain.Signature{
		ID:        "sig-bio",
		SignerID:  "signer-3",
		Type:      domain.SignatureTypeBiometric,
		Data:      domain.SignatureData{VerificationHash: "a1b2c3", Biometric: &sample},
		Timestamp: s.now.Add(-time.Hour),
		IPAddress: "203.0.113.7",
	}
	ev := domain.Evidence{
		Biometric:         &domain.BiometricSample{Type: "fingerprint", DataHash: "deadbeef"},
		DeviceFingerprint: "fp-1",
		TrustedDevices:    []string{"fp-1"},
	}

	result := s.service.Verify(context.Background(), sig, domain.Document{ID: "doc-3"}, ev)

	s.True(result.Details.Checks[CheckBiometricMatch])
	s.Contains(result.Compliance.StandardsMet, compliance.StandardDataProtection)
}

// =============================================================================
// Determinism
// =============================================================================

func (s *ServiceSuite) TestVerifyIsDeterministic() {
	sig, doc, ev := s.qualifiedDigitalInput()

	first := s.service.Verify(context.Background(), sig, doc, ev)
	second := s.service.Verify(context.Background(), sig, doc, ev)

	// Only the result ID is generated fresh per call.
	s.NotEqual(first.ID, second.ID)
	first.ID, second.ID = "", ""
	s.Equal(first, second)
}

// =============================================================================
// Sink Behavior
// =============================================================================

func (s *ServiceSuite) TestVerifyPersistsAndAudits() {
	sig, doc, ev := s.qualifiedDigitalInput()

	result := s.service.Verify(context.Background(), sig, doc, ev)

	s.Run("result is persisted to the store and cache", func() {
		stored, err := s.store.FindBySignature(context.Background(), sig.ID)
		s.NoError(err)
		s.Equal(result.ID, stored.ID)

		cached, err := s.cache.Get(context.Background(), sig.ID)
		s.NoError(err)
		s.Equal(result.ID, cached.ID)
	})

	s.Run("a verified event lands on the audit trail", func() {
		events := s.auditSink.BySignature(sig.ID)
		s.Require().Len(events, 1)
		s.Equal(audit.ActionSignatureVerified, events[0].Action)
		s.Equal(audit.CategoryCompliance, events[0].Category)
		s.NotEqual(sig.SignerID, events[0].SignerIDHash)
		s.Len(events[0].SignerIDHash, 64)
	})

	s.Run("a rejected signature is audited as rejected", func() {
		broken := sig
		broken.ID = "sig-rejected"
		broken.Data.VerificationHash = ""

		s.service.Verify(context.Background(), broken, doc, ev)

		events := s.auditSink.BySignature("sig-rejected")
		s.Require().Len(events, 1)
		s.Equal(audit.ActionSignatureRejected, events[0].Action)
	})
}

func (s *ServiceSuite) TestVerifySurvivesStoreFailure() {
	s.store.saveErr = fmt.Errorf("connection refused")
	sig, doc, ev := s.qualifiedDigitalInput()

	result := s.service.Verify(context.Background(), sig, doc, ev)

	s.Require().NotNil(result)
	s.True(result.Valid)
}

// =============================================================================
// LastResult Tests
// =============================================================================

func (s *ServiceSuite) TestLastResult() {
	ctx := context.Background()
	sig, doc, ev := s.qualifiedDigitalInput()
	verified := s.service.Verify(ctx, sig, doc, ev)

	s.Run("returns the stored result", func() {
		result, err := s.service.LastResult(ctx, sig.ID)
		s.NoError(err)
		s.Equal(verified.ID, result.ID)
	})

	s.Run("unknown signature maps to not found", func() {
		_, err := s.service.LastResult(ctx, "sig-unknown")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("cache is consulted before the store", func() {
		delete(s.store.results, sig.ID)

		result, err := s.service.LastResult(ctx, sig.ID)
		s.NoError(err)
		s.Equal(verified.ID, result.ID)
	})
}
