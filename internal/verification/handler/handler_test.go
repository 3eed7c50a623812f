package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"signet/internal/device"
	"signet/internal/domain"
	"signet/internal/verification"
	"signet/pkg/platform/sentinel"
	"signet/pkg/requestcontext"
)

// =============================================================================
// Service Fake
// =============================================================================

type fakeService struct {
	lastSignature domain.Signature
	lastDocument  domain.Document
	lastEvidence  domain.Evidence

	result     *verification.Result
	lastErr    error
	lastResult *verification.Result
}

func (f *fakeService) Verify(_ context.Context, sig domain.Signature, doc domain.Document, ev domain.Evidence) *verification.Result {
	f.lastSignature = sig
	f.lastDocument = doc
	f.lastEvidence = ev
	return f.result
}

func (f *fakeService) LastResult(context.Context, string) (*verification.Result, error) {
	return f.lastResult, f.lastErr
}

// =============================================================================
// Verification Handler Test Suite
// =============================================================================

type HandlerSuite struct {
	suite.Suite
	service *fakeService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.service = &fakeService{
		result: &verification.Result{
			ID:          "result-1",
			SignatureID: "sig-1",
			Valid:       true,
			Status:      verification.StatusVerified,
			Details: verification.Details{
				Checks: map[verification.CheckName]bool{verification.CheckCryptographicIntegrity: true},
			},
			Recommendations: []string{},
			VerifiedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	handler := New(s.service, device.NewService(true), slog.Default())
	s.router = chi.NewRouter()
	handler.Register(s.router)
}

func (s *HandlerSuite) postVerify(body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/signatures/verify", bytes.NewBufferString(body))
	for key, values := range header {
		req.Header[key] = values
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func validBody() string {
	return `{
		"signature": {
			"id": "sig-1",
			"document_id": "doc-1",
			"signer_id": "signer-1",
			"signature_type": "digital",
			"signature_data": {"verification_hash": "a1b2c3"},
			"timestamp": "2025-06-01T11:00:00Z",
			"ip_address": "203.0.113.7"
		},
		"document": {"id": "doc-1"},
		"context": {"device_fingerprint": "fp-1", "trusted_devices": ["fp-1"]}
	}`
}

// =============================================================================
// Verify Endpoint Tests
// =============================================================================

func (s *HandlerSuite) TestHandleVerify() {
	s.Run("valid request returns the verification result", func() {
		rec := s.postVerify(validBody(), nil)

		s.Equal(http.StatusOK, rec.Code)

		var resp VerifyResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("result-1", resp.ID)
		s.Equal("VERIFIED", resp.Status)
		s.True(resp.Valid)
	})

	s.Run("payload is converted to domain records", func() {
		s.postVerify(validBody(), nil)

		s.Equal("sig-1", s.service.lastSignature.ID)
		s.Equal(domain.SignatureTypeDigital, s.service.lastSignature.Type)
		s.Equal(time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC), s.service.lastSignature.Timestamp)
		s.Equal("doc-1", s.service.lastDocument.ID)
		s.Equal("fp-1", s.service.lastEvidence.DeviceFingerprint)
	})

	s.Run("signature type is normalized to upper case", func() {
		s.postVerify(validBody(), nil)
		s.Equal(domain.SignatureTypeDigital, s.service.lastSignature.Type)
	})

	s.Run("malformed JSON returns bad request", func() {
		rec := s.postVerify(`{"signature": `, nil)

		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "bad_request")
	})

	s.Run("missing signature ID returns validation error", func() {
		rec := s.postVerify(`{"signature": {"signature_type": "digital"}, "document": {"id": "doc-1"}}`, nil)

		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "signature.id is required")
	})

	s.Run("document ID falls back to the signature's document_id", func() {
		body := `{
			"signature": {
				"id": "sig-2",
				"document_id": "doc-2",
				"signature_type": "electronic",
				"signature_data": {"verification_hash": "a1"}
			}
		}`
		rec := s.postVerify(body, nil)

		s.Equal(http.StatusOK, rec.Code)
		s.Equal("doc-2", s.service.lastDocument.ID)
	})

	s.Run("malformed timestamp is passed through as zero time", func() {
		body := `{
			"signature": {
				"id": "sig-3",
				"document_id": "doc-3",
				"signature_type": "electronic",
				"signature_data": {"verification_hash": "a1"},
				"timestamp": "yesterday at noon"
			}
		}`
		rec := s.postVerify(body, nil)

		s.Equal(http.StatusOK, rec.Code)
		s.True(s.service.lastSignature.Timestamp.IsZero())
	})

	s.Run("fingerprint falls back to the user agent derivation", func() {
		body := `{
			"signature": {
				"id": "sig-4",
				"document_id": "doc-4",
				"signature_type": "electronic",
				"signature_data": {"verification_hash": "a1"}
			}
		}`
		ua := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

		req := httptest.NewRequest(http.MethodPost, "/signatures/verify", bytes.NewBufferString(body))
		req = req.WithContext(requestcontext.WithUserAgent(req.Context(), ua))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusOK, rec.Code)
		s.NotEmpty(s.service.lastEvidence.DeviceFingerprint)
		s.Equal(device.NewService(true).ComputeFingerprint(ua), s.service.lastEvidence.DeviceFingerprint)
	})
}

// =============================================================================
// Last Result Endpoint Tests
// =============================================================================

func (s *HandlerSuite) TestHandleLastResult() {
	s.Run("known signature returns the stored result", func() {
		s.service.lastResult = s.service.result

		req := httptest.NewRequest(http.MethodGet, "/signatures/sig-1/verification", nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusOK, rec.Code)

		var resp VerifyResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("result-1", resp.ID)
	})

	s.Run("unknown signature returns not found", func() {
		s.service.lastResult = nil
		s.service.lastErr = sentinel.ErrNotFound

		req := httptest.NewRequest(http.MethodGet, "/signatures/sig-x/verification", nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusNotFound, rec.Code)
		s.Contains(rec.Body.String(), "not_found")
	})

	s.Run("store failure returns internal error without details", func() {
		s.service.lastResult = nil
		s.service.lastErr = fmt.Errorf("connection refused")

		req := httptest.NewRequest(http.MethodGet, "/signatures/sig-1/verification", nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusInternalServerError, rec.Code)
		s.NotContains(rec.Body.String(), "connection refused")
	})
}
