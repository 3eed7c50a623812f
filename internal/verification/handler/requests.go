package handler

import (
	"strings"
	"time"

	"signet/internal/domain"
	dErrors "signet/pkg/domain-errors"
	pstrings "signet/pkg/platform/strings"
)

// VerifyRequest is the HTTP request body for POST /signatures/verify.
// Timestamps arrive as RFC3339 strings and are parsed leniently: a malformed
// timestamp becomes the zero time so the corresponding check fails with a
// diagnostic instead of the request being rejected outright.
type VerifyRequest struct {
	Signature SignaturePayload `json:"signature"`
	Document  DocumentPayload  `json:"document"`
	Context   EvidencePayload  `json:"context"`
}

// SignaturePayload mirrors the stored signature record.
type SignaturePayload struct {
	ID          string              `json:"id"`
	DocumentID  string              `json:"document_id"`
	SignerID    string              `json:"signer_id"`
	Type        string              `json:"signature_type"`
	Data        SignatureDataField  `json:"signature_data"`
	Certificate *CertificatePayload `json:"certificate_info,omitempty"`
	Timestamp   string              `json:"timestamp"`
	IPAddress   string              `json:"ip_address"`
}

// SignatureDataField is the variant signature payload.
type SignatureDataField struct {
	VerificationHash string            `json:"verification_hash"`
	DigitalSignature string            `json:"digital_signature,omitempty"`
	Biometric        *BiometricPayload `json:"biometric_data,omitempty"`
}

// BiometricPayload references a captured biometric sample by hash.
type BiometricPayload struct {
	Type     string `json:"type"`
	DataHash string `json:"data_hash"`
}

// CertificatePayload mirrors the signing certificate info.
type CertificatePayload struct {
	Issuer           string   `json:"issuer"`
	SerialNumber     string   `json:"serial_number"`
	ValidFrom        string   `json:"valid_from"`
	ValidUntil       string   `json:"valid_until"`
	PublicKey        string   `json:"public_key"`
	CertificateChain []string `json:"certificate_chain"`
}

// DocumentPayload identifies the signed document.
type DocumentPayload struct {
	ID string `json:"id"`
}

// EvidencePayload is the caller-supplied verification context.
type EvidencePayload struct {
	Biometric         *BiometricPayload  `json:"biometric_data,omitempty"`
	DeviceFingerprint string             `json:"device_fingerprint,omitempty"`
	TrustedDevices    []string           `json:"trusted_devices,omitempty"`
	ExpectedLocation  *CoordinatePayload `json:"expected_location,omitempty"`
	ActualLocation    *CoordinatePayload `json:"actual_location,omitempty"`
}

// CoordinatePayload is a WGS84 point.
type CoordinatePayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks the identifying fields. Signature content is deliberately
// not validated here: the engine converts malformed content into failing
// checks with diagnostics, which callers prefer over a rejected request.
func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Signature.ID = strings.TrimSpace(r.Signature.ID)
	if r.Signature.ID == "" {
		return dErrors.New(dErrors.CodeValidation, "signature.id is required")
	}

	r.Document.ID = strings.TrimSpace(r.Document.ID)
	if r.Document.ID == "" {
		r.Document.ID = strings.TrimSpace(r.Signature.DocumentID)
	}
	if r.Document.ID == "" {
		return dErrors.New(dErrors.CodeValidation, "document.id is required")
	}

	if strings.TrimSpace(r.Signature.Type) == "" {
		return dErrors.New(dErrors.CodeValidation, "signature.signature_type is required")
	}

	return nil
}

// ToSignature converts the payload to the domain record.
func (r *VerifyRequest) ToSignature() domain.Signature {
	sig := domain.Signature{
		ID:         r.Signature.ID,
		DocumentID: r.Document.ID,
		SignerID:   r.Signature.SignerID,
		Type:       domain.SignatureType(strings.ToUpper(strings.TrimSpace(r.Signature.Type))),
		Data: domain.SignatureData{
			VerificationHash: r.Signature.Data.VerificationHash,
			DigitalSignature: r.Signature.Data.DigitalSignature,
			Biometric:        toBiometric(r.Signature.Data.Biometric),
		},
		Timestamp: parseTime(r.Signature.Timestamp),
		IPAddress: r.Signature.IPAddress,
	}

	if cert := r.Signature.Certificate; cert != nil {
		sig.Certificate = &domain.CertificateInfo{
			Issuer:           cert.Issuer,
			SerialNumber:     cert.SerialNumber,
			ValidFrom:        parseTime(cert.ValidFrom),
			ValidUntil:       parseTime(cert.ValidUntil),
			PublicKey:        cert.PublicKey,
			CertificateChain: cert.CertificateChain,
		}
	}

	return sig
}

// ToDocument converts the payload to the domain record.
func (r *VerifyRequest) ToDocument() domain.Document {
	return domain.Document{ID: r.Document.ID}
}

// ToEvidence converts the payload to the domain record. fallbackFingerprint
// is used when the caller did not supply one (derived from the User-Agent by
// the handler).
func (r *VerifyRequest) ToEvidence(fallbackFingerprint string) domain.Evidence {
	fingerprint := r.Context.DeviceFingerprint
	if fingerprint == "" {
		fingerprint = fallbackFingerprint
	}

	return domain.Evidence{
		Biometric:         toBiometric(r.Context.Biometric),
		DeviceFingerprint: fingerprint,
		TrustedDevices:    pstrings.DedupeAndTrim(r.Context.TrustedDevices),
		ExpectedLocation:  toCoordinates(r.Context.ExpectedLocation),
		ActualLocation:    toCoordinates(r.Context.ActualLocation),
	}
}

func toBiometric(p *BiometricPayload) *domain.BiometricSample {
	if p == nil {
		return nil
	}
	return &domain.BiometricSample{Type: p.Type, DataHash: p.DataHash}
}

func toCoordinates(p *CoordinatePayload) *domain.Coordinates {
	if p == nil {
		return nil
	}
	return &domain.Coordinates{Latitude: p.Latitude, Longitude: p.Longitude}
}

// parseTime accepts RFC3339 with or without sub-second precision. Anything
// else maps to the zero time, which downstream checks report as malformed.
func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}
