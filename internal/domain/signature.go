package domain

import "time"

// SignatureType classifies how a signature was produced. Wet-ink signatures are
// recorded upstream and never reach the verification engine.
type SignatureType string

const (
	SignatureTypeElectronic SignatureType = "ELECTRONIC"
	SignatureTypeDigital    SignatureType = "DIGITAL"
	SignatureTypeBiometric  SignatureType = "BIOMETRIC"
)

// BiometricSample is a reference to captured biometric material. Only a hash of
// the raw sample is carried; templates stay in the capture system.
type BiometricSample struct {
	Type     string `json:"type"`
	DataHash string `json:"data_hash"`
}

// SignatureData is the variant payload attached to a signature. VerificationHash
// is always set when the signing pipeline completed; DigitalSignature and
// Biometric are populated for DIGITAL and BIOMETRIC signatures respectively.
type SignatureData struct {
	VerificationHash string           `json:"verification_hash"`
	DigitalSignature string           `json:"digital_signature,omitempty"`
	Biometric        *BiometricSample `json:"biometric_data,omitempty"`
}

// CertificateInfo describes the signing certificate of a DIGITAL signature.
type CertificateInfo struct {
	Issuer           string    `json:"issuer"`
	SerialNumber     string    `json:"serial_number"`
	ValidFrom        time.Time `json:"valid_from"`
	ValidUntil       time.Time `json:"valid_until"`
	PublicKey        string    `json:"public_key"`
	CertificateChain []string  `json:"certificate_chain"`
}

// Signature is a recorded signing event. It is immutable for the duration of a
// verification call; the engine never mutates or persists it.
type Signature struct {
	ID          string           `json:"id"`
	DocumentID  string           `json:"document_id"`
	SignerID    string           `json:"signer_id"`
	Type        SignatureType    `json:"signature_type"`
	Data        SignatureData    `json:"signature_data"`
	Certificate *CertificateInfo `json:"certificate_info,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
	IPAddress   string           `json:"ip_address"`
}
