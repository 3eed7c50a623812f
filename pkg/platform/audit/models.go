package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose. Categories
// map to retention policies and downstream routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// These require tamper-proof storage and long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Action names emitted by the verification service.
const (
	ActionSignatureVerified AuditAction = "signature_verified"
	ActionSignatureRejected AuditAction = "signature_rejected"
)

// AuditAction names the operation an event records.
type AuditAction string

// Event is emitted from domain logic to capture a verification outcome. Keep
// it transport-agnostic so stores and brokers can fan out. SignerIDHash is a
// SHA-256 of the signer identifier so the trail stays free of raw PII.
type Event struct {
	Category     EventCategory `json:"category"`
	Timestamp    time.Time     `json:"timestamp"`
	Action       AuditAction   `json:"action"`
	SignatureID  string        `json:"signature_id"`
	DocumentID   string        `json:"document_id"`
	SignerIDHash string        `json:"signer_id_hash"`
	Decision     string        `json:"decision"`
	RiskLevel    string        `json:"risk_level"`
	Confidence   float64       `json:"confidence"`
	RequestID    string        `json:"request_id,omitempty"`
}

// Sink receives audit events. Implementations are append-only.
type Sink interface {
	Append(ctx context.Context, event Event) error
}
