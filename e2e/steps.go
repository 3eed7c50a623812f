// Package e2e drives the verification HTTP surface end to end with godog.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// TestContext carries per-scenario request state against a running service.
type TestContext struct {
	BaseURL string
	Token   string

	client  *http.Client
	payload map[string]any
	status  int
	body    map[string]any
}

func NewTestContext(baseURL, token string) *TestContext {
	return &TestContext{
		BaseURL: baseURL,
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears scenario state between scenarios.
func (tc *TestContext) Reset() {
	tc.payload = nil
	tc.status = 0
	tc.body = nil
}

// RegisterSteps wires every step definition for the verification features.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Before(func(c context.Context, _ *godog.Scenario) (context.Context, error) {
		tc.Reset()
		return c, nil
	})

	steps := &verificationSteps{tc: tc}

	ctx.Step(`^I am authenticated as "([^"]*)"$`, steps.authenticatedAs)

	ctx.Step(`^a digital signature "([^"]*)" over document "([^"]*)" with a qualified certificate$`, steps.digitalSignature)
	ctx.Step(`^an electronic signature "([^"]*)" over document "([^"]*)" without a verification hash$`, steps.unhashedElectronicSignature)
	ctx.Step(`^a biometric signature "([^"]*)" over document "([^"]*)" with a stored fingerprint sample$`, steps.biometricSignature)
	ctx.Step(`^the signature is timestamped (\d+) hours in the future$`, steps.timestampHoursInFuture)
	ctx.Step(`^the signature is (\d+) days old$`, steps.timestampDaysOld)
	ctx.Step(`^the signature was recorded from IP address "([^"]*)"$`, steps.recordedFromIP)
	ctx.Step(`^the signing device is trusted$`, steps.deviceTrusted)
	ctx.Step(`^the signing device is not trusted$`, steps.deviceNotTrusted)
	ctx.Step(`^the signing location is far from the expected location$`, steps.locationFarFromExpected)
	ctx.Step(`^the verification context carries a matching fingerprint sample$`, steps.matchingBiometricEvidence)

	ctx.Step(`^I submit the signature for verification$`, steps.submitVerification)
	ctx.Step(`^I submit a verification request without authentication$`, steps.submitWithoutAuth)
	ctx.Step(`^I fetch the last verification result for "([^"]*)"$`, steps.fetchLastResult)

	ctx.Step(`^the verification status should be "([^"]*)"$`, steps.statusShouldBe)
	ctx.Step(`^the signature should be legally enforceable$`, steps.shouldBeEnforceable)
	ctx.Step(`^the signature should be admissible in court$`, steps.shouldBeAdmissible)
	ctx.Step(`^the standards met should include "([^"]*)"$`, steps.standardsShouldInclude)
	ctx.Step(`^the check "([^"]*)" should fail$`, steps.checkShouldFail)
	ctx.Step(`^the check "([^"]*)" should pass$`, steps.checkShouldPass)
	ctx.Step(`^the confidence score should be below ([0-9.]+)$`, steps.confidenceBelow)
	ctx.Step(`^the response should include recommendations$`, steps.shouldHaveRecommendations)
	ctx.Step(`^the overall risk should be "([^"]*)"$`, steps.riskShouldBe)
	ctx.Step(`^the recommendations should mention "([^"]*)"$`, steps.recommendationsShouldMention)
	ctx.Step(`^the request should be rejected as unauthorized$`, steps.shouldBeUnauthorized)
}

type verificationSteps struct {
	tc *TestContext
}

// =============================================================================
// Request Building
// =============================================================================

func (s *verificationSteps) authenticatedAs(string) error {
	// The token is minted by the suite setup; the step documents intent.
	if s.tc.Token == "" {
		return fmt.Errorf("no service token configured")
	}
	return nil
}

func (s *verificationSteps) basePayload(signatureID, documentID, signatureType string) {
	s.tc.payload = map[string]any{
		"signature": map[string]any{
			"id":             signatureID,
			"document_id":    documentID,
			"signer_id":      "signer-e2e",
			"signature_type": signatureType,
			"signature_data": map[string]any{
				"verification_hash": "a1b2c3d4",
			},
			"timestamp":  time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
			"ip_address": "203.0.113.7",
		},
		"document": map[string]any{"id": documentID},
		"context":  map[string]any{},
	}
}

func (s *verificationSteps) signature() map[string]any {
	return s.tc.payload["signature"].(map[string]any)
}

func (s *verificationSteps) evidence() map[string]any {
	return s.tc.payload["context"].(map[string]any)
}

func (s *verificationSteps) digitalSignature(signatureID, documentID string) error {
	s.basePayload(signatureID, documentID, "DIGITAL")
	now := time.Now().UTC()
	s.signature()["certificate_info"] = map[string]any{
		"issuer":            "Examplestan Qualified CA",
		"serial_number":     "01:02:03",
		"valid_from":        now.Add(-3 * 365 * 24 * time.Hour).Format(time.RFC3339),
		"valid_until":       now.Add(365 * 24 * time.Hour).Format(time.RFC3339),
		"certificate_chain": []string{"leaf", "root"},
	}
	return nil
}

func (s *verificationSteps) unhashedElectronicSignature(signatureID, documentID string) error {
	s.basePayload(signatureID, documentID, "ELECTRONIC")
	s.signature()["signature_data"] = map[string]any{"verification_hash": ""}
	return nil
}

func (s *verificationSteps) biometricSignature(signatureID, documentID string) error {
	s.basePayload(signatureID, documentID, "BIOMETRIC")
	s.signature()["signature_data"] = map[string]any{
		"verification_hash": "a1b2c3d4",
		"biometric_data":    map[string]any{"type": "fingerprint", "data_hash": "deadbeef"},
	}
	return nil
}

func (s *verificationSteps) timestampHoursInFuture(hours int) error {
	s.signature()["timestamp"] = time.Now().Add(time.Duration(hours) * time.Hour).UTC().Format(time.RFC3339)
	return nil
}

func (s *verificationSteps) timestampDaysOld(days int) error {
	s.signature()["timestamp"] = time.Now().Add(-time.Duration(days) * 24 * time.Hour).UTC().Format(time.RFC3339)
	return nil
}

func (s *verificationSteps) recordedFromIP(ip string) error {
	s.signature()["ip_address"] = ip
	return nil
}

func (s *verificationSteps) deviceTrusted() error {
	s.evidence()["device_fingerprint"] = "fp-e2e"
	s.evidence()["trusted_devices"] = []string{"fp-e2e"}
	return nil
}

func (s *verificationSteps) deviceNotTrusted() error {
	s.evidence()["device_fingerprint"] = "fp-unknown"
	s.evidence()["trusted_devices"] = []string{"fp-e2e"}
	return nil
}

func (s *verificationSteps) locationFarFromExpected() error {
	s.evidence()["expected_location"] = map[string]any{"latitude": 52.52, "longitude": 13.405}
	s.evidence()["actual_location"] = map[string]any{"latitude": 38.722, "longitude": -9.139}
	return nil
}

func (s *verificationSteps) matchingBiometricEvidence() error {
	s.evidence()["biometric_data"] = map[string]any{"type": "fingerprint", "data_hash": "deadbeef"}
	return nil
}

// =============================================================================
// Request Execution
// =============================================================================

func (s *verificationSteps) submitVerification() error {
	return s.post("/api/v1/signatures/verify", s.tc.payload, s.tc.Token)
}

func (s *verificationSteps) submitWithoutAuth() error {
	s.basePayload("sig-noauth", "doc-noauth", "ELECTRONIC")
	return s.post("/api/v1/signatures/verify", s.tc.payload, "")
}

func (s *verificationSteps) fetchLastResult(signatureID string) error {
	req, err := http.NewRequest(http.MethodGet, s.tc.BaseURL+"/api/v1/signatures/"+signatureID+"/verification", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.tc.Token)
	return s.execute(req)
}

func (s *verificationSteps) post(path string, body map[string]any, token string) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.tc.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.execute(req)
}

func (s *verificationSteps) execute(req *http.Request) error {
	resp, err := s.tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	s.tc.status = resp.StatusCode
	s.tc.body = map[string]any{}
	return json.NewDecoder(resp.Body).Decode(&s.tc.body)
}

// =============================================================================
// Assertions
// =============================================================================

func (s *verificationSteps) statusShouldBe(expected string) error {
	if s.tc.status != http.StatusOK {
		return fmt.Errorf("expected HTTP 200, got %d (body %v)", s.tc.status, s.tc.body)
	}
	got, _ := s.tc.body["verification_status"].(string)
	if got != expected {
		return fmt.Errorf("expected verification status %q, got %q", expected, got)
	}
	return nil
}

func (s *verificationSteps) legalField(field string) (bool, error) {
	legal, ok := s.tc.body["legal_validity"].(map[string]any)
	if !ok {
		return false, fmt.Errorf("response has no legal_validity object")
	}
	value, ok := legal[field].(bool)
	if !ok {
		return false, fmt.Errorf("legal_validity.%s is missing", field)
	}
	return value, nil
}

func (s *verificationSteps) shouldBeEnforceable() error {
	enforceable, err := s.legalField("legally_enforceable")
	if err != nil {
		return err
	}
	if !enforceable {
		return fmt.Errorf("expected the signature to be legally enforceable")
	}
	return nil
}

func (s *verificationSteps) shouldBeAdmissible() error {
	admissible, err := s.legalField("admissible_in_court")
	if err != nil {
		return err
	}
	if !admissible {
		return fmt.Errorf("expected the signature to be admissible in court")
	}
	return nil
}

func (s *verificationSteps) standardsShouldInclude(standard string) error {
	compliance, ok := s.tc.body["compliance_status"].(map[string]any)
	if !ok {
		return fmt.Errorf("response has no compliance_status object")
	}
	met, _ := compliance["standards_met"].([]any)
	for _, item := range met {
		if item == standard {
			return nil
		}
	}
	return fmt.Errorf("standard %q not in standards_met %v", standard, met)
}

func (s *verificationSteps) checkVerdict(name string) (bool, error) {
	details, ok := s.tc.body["details"].(map[string]any)
	if !ok {
		return false, fmt.Errorf("response has no details object")
	}
	checks, ok := details["checks"].(map[string]any)
	if !ok {
		return false, fmt.Errorf("details has no checks map")
	}
	verdict, ok := checks[name].(bool)
	if !ok {
		return false, fmt.Errorf("no verdict for check %q", name)
	}
	return verdict, nil
}

func (s *verificationSteps) checkShouldFail(name string) error {
	verdict, err := s.checkVerdict(name)
	if err != nil {
		return err
	}
	if verdict {
		return fmt.Errorf("expected check %q to fail", name)
	}
	return nil
}

func (s *verificationSteps) checkShouldPass(name string) error {
	verdict, err := s.checkVerdict(name)
	if err != nil {
		return err
	}
	if !verdict {
		return fmt.Errorf("expected check %q to pass", name)
	}
	return nil
}

func (s *verificationSteps) confidenceBelow(limit float64) error {
	confidence, ok := s.tc.body["confidence_score"].(float64)
	if !ok {
		return fmt.Errorf("response has no confidence_score")
	}
	if confidence >= limit {
		return fmt.Errorf("expected confidence below %.2f, got %.3f", limit, confidence)
	}
	return nil
}

func (s *verificationSteps) shouldHaveRecommendations() error {
	recs, _ := s.tc.body["recommendations"].([]any)
	if len(recs) == 0 {
		return fmt.Errorf("expected at least one recommendation")
	}
	return nil
}

func (s *verificationSteps) riskShouldBe(expected string) error {
	details, ok := s.tc.body["details"].(map[string]any)
	if !ok {
		return fmt.Errorf("response has no details object")
	}
	risk, ok := details["risk_assessment"].(map[string]any)
	if !ok {
		return fmt.Errorf("details has no risk_assessment object")
	}
	got, _ := risk["overall_risk"].(string)
	if got != expected {
		return fmt.Errorf("expected overall risk %q, got %q", expected, got)
	}
	return nil
}

func (s *verificationSteps) recommendationsShouldMention(fragment string) error {
	recs, _ := s.tc.body["recommendations"].([]any)
	for _, rec := range recs {
		if text, ok := rec.(string); ok && strings.Contains(strings.ToLower(text), strings.ToLower(fragment)) {
			return nil
		}
	}
	return fmt.Errorf("no recommendation mentions %q in %v", fragment, recs)
}

func (s *verificationSteps) shouldBeUnauthorized() error {
	if s.tc.status != http.StatusUnauthorized {
		return fmt.Errorf("expected HTTP 401, got %d", s.tc.status)
	}
	return nil
}
