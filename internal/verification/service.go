package verification

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"signet/internal/compliance"
	"signet/internal/domain"
	"signet/internal/legal"
	"signet/internal/verification/metrics"
	"signet/pkg/platform/audit"
)

// Store persists verification results for the audit trail. The engine itself
// never reads stored results during a verification.
type Store interface {
	Save(ctx context.Context, result *Result) error
	FindBySignature(ctx context.Context, signatureID string) (*Result, error)
}

// Cache holds the latest result per signature for cheap re-reads.
type Cache interface {
	Get(ctx context.Context, signatureID string) (*Result, error)
	Set(ctx context.Context, result *Result) error
}

// AuditEmitter receives one event per verification.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the full verification pipeline: concurrent checks, compliance
// evaluation, legal assessment, confidence scoring, and recommendations. The
// sinks (store, cache, audit) are best-effort; their failures are logged and
// never block the verification outcome.
type Service struct {
	engine    *Engine
	standards *compliance.Evaluator

	store   Store
	cache   Cache
	audit   AuditEmitter
	metrics *metrics.Metrics
	logger  *slog.Logger
	clock   Clock
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

func WithCache(cache Cache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithAudit(emitter AuditEmitter) Option {
	return func(s *Service) { s.audit = emitter }
}

// WithClock fixes the service's notion of now. Tests inject a frozen clock so
// verification is a pure function of its inputs.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs the verification service.
func New(engine *Engine, standards *compliance.Evaluator, opts ...Option) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if standards == nil {
		return nil, fmt.Errorf("standards evaluator is required")
	}

	svc := &Service{
		engine:    engine,
		standards: standards,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Verify runs every check concurrently, evaluates compliance independently,
// and assembles the immutable result. It always resolves to a Result: input
// malformation and dependency failures surface as failed checks and
// recommendations, never as an error.
func (s *Service) Verify(ctx context.Context, sig domain.Signature, doc domain.Document, ev domain.Evidence) *Result {
	start := time.Now()
	now := s.clock()

	// Compliance is independent of the factual checks; evaluate it alongside
	// the fan-out.
	complianceCh := make(chan compliance.Status, 1)
	go func() {
		complianceCh <- s.standards.Evaluate(sig, doc)
	}()

	checkResults := s.engine.RunChecks(ctx, sig, ev, now)
	complianceStatus := <-complianceCh

	valid := overallValid(checkResults)
	risk := riskOf(checkResults)
	validity := legal.Assess(valid, complianceStatus, sig.Timestamp, now)

	result := &Result{
		ID:              uuid.NewString(),
		SignatureID:     sig.ID,
		Valid:           valid,
		ConfidenceScore: confidenceScore(checkResults, complianceStatus),
		Status:          statusOf(valid),
		Compliance:      complianceStatus,
		Legal:           validity,
		CheckResults:    checkResults,
		Details:         buildDetails(checkResults, risk),
		Recommendations: recommendations(checkResults, complianceStatus, validity, risk),
		VerifiedAt:      now,
	}

	s.metrics.IncrementOutcome(string(result.Status))
	s.metrics.IncrementRiskLevel(string(risk.Level))
	s.metrics.ObserveVerifyLatency(time.Since(start))

	s.persist(ctx, result)
	s.emitAudit(ctx, sig, doc, result, risk)

	if s.logger != nil {
		s.logger.InfoContext(ctx, "signature verified",
			"signature_id", sig.ID,
			"document_id", doc.ID,
			"status", result.Status,
			"confidence", result.ConfidenceScore,
			"risk_level", risk.Level,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return result
}

// LastResult returns the most recent stored result for a signature, consulting
// the cache before the store.
func (s *Service) LastResult(ctx context.Context, signatureID string) (*Result, error) {
	if s.cache != nil {
		if result, err := s.cache.Get(ctx, signatureID); err == nil {
			return result, nil
		}
	}
	if s.store == nil {
		return nil, fmt.Errorf("no result store configured")
	}
	return s.store.FindBySignature(ctx, signatureID)
}

func (s *Service) persist(ctx context.Context, result *Result) {
	if s.store != nil {
		if err := s.store.Save(ctx, result); err != nil && s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to persist verification result",
				"signature_id", result.SignatureID,
				"error", err,
			)
		}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, result); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to cache verification result",
				"signature_id", result.SignatureID,
				"error", err,
			)
		}
	}
}

func (s *Service) emitAudit(ctx context.Context, sig domain.Signature, doc domain.Document, result *Result, risk RiskAssessment) {
	if s.audit == nil {
		return
	}

	action := audit.ActionSignatureVerified
	if !result.Valid {
		action = audit.ActionSignatureRejected
	}

	event := audit.Event{
		Category:     audit.CategoryCompliance,
		Timestamp:    result.VerifiedAt,
		Action:       action,
		SignatureID:  sig.ID,
		DocumentID:   doc.ID,
		SignerIDHash: hashIdentifier(sig.SignerID),
		Decision:     string(result.Status),
		RiskLevel:    string(risk.Level),
		Confidence:   result.ConfidenceScore,
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"signature_id", sig.ID,
			"error", err,
		)
	}
}

func statusOf(valid bool) Status {
	if valid {
		return StatusVerified
	}
	return StatusFailed
}

func buildDetails(results []CheckResult, risk RiskAssessment) Details {
	checks := make(map[CheckName]bool, len(results))
	for _, r := range results {
		checks[r.Name] = r.Valid
	}
	return Details{Checks: checks, Risk: risk}
}

// hashIdentifier pseudonymizes a signer identifier for the audit trail.
func hashIdentifier(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}
