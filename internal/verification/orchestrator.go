package verification

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"signet/internal/domain"
	"signet/internal/verification/metrics"
)

const defaultCheckTimeout = 2 * time.Second

// Engine fans the seven check modules out concurrently and joins their
// verdicts. It holds no per-call state; a single Engine serves concurrent
// verifications without locking.
type Engine struct {
	matcher      BiometricMatcher
	metrics      *metrics.Metrics
	tracer       trace.Tracer
	checkTimeout time.Duration
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMatcher replaces the default hash-comparison biometric matcher.
func WithMatcher(matcher BiometricMatcher) EngineOption {
	return func(e *Engine) {
		if matcher != nil {
			e.matcher = matcher
		}
	}
}

// WithEngineMetrics wires check-level metrics.
func WithEngineMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithCheckTimeout bounds each individual check. A check that exceeds the
// bound is reported as failed with a timeout reason; the other checks are
// unaffected.
func WithCheckTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.checkTimeout = d
		}
	}
}

// NewEngine constructs an Engine with the stub matcher and default timeout.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		matcher:      HashMatcher{},
		tracer:       otel.Tracer("signet/verification"),
		checkTimeout: defaultCheckTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunChecks evaluates every check concurrently against the same clock reading
// and returns the results in the fixed AllChecks order regardless of
// completion order. No check failure, panic, or timeout escapes as an error;
// each is folded into its slot's CheckResult.
func (e *Engine) RunChecks(ctx context.Context, sig domain.Signature, ev domain.Evidence, now time.Time) []CheckResult {
	results := make([]CheckResult, len(AllChecks))

	runners := []func(context.Context) CheckResult{
		func(context.Context) CheckResult { return checkCryptographicIntegrity(sig) },
		func(context.Context) CheckResult { return checkTimestampValidity(sig, now) },
		func(context.Context) CheckResult { return checkCertificateValidity(sig, now) },
		func(ctx context.Context) CheckResult { return checkBiometricMatch(ctx, e.matcher, sig, ev) },
		func(context.Context) CheckResult { return checkDeviceTrust(sig, ev) },
		func(context.Context) CheckResult { return checkLocationProximity(ev) },
		func(context.Context) CheckResult { return checkRiskScoring(sig, ev, now) },
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, run := range runners {
		g.Go(func() error {
			results[i] = e.runCheck(ctx, AllChecks[i], run)
			return nil
		})
	}

	// Runners never return errors; failures are folded into results.
	_ = g.Wait()

	return results
}

// runCheck executes one check inside its own timeout with panic containment.
// The inner goroutine lets a stuck external dependency (matcher, verifier) be
// abandoned without stalling the join barrier.
func (e *Engine) runCheck(ctx context.Context, name CheckName, run func(context.Context) CheckResult) CheckResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.checkTimeout)
	defer cancel()

	ctx, span := e.tracer.Start(ctx, "verification.check",
		trace.WithAttributes(attribute.String("check", string(name))))
	defer span.End()

	done := make(chan CheckResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- CheckResult{Name: name, Valid: false, Reason: "check aborted unexpectedly"}
			}
		}()
		done <- run(ctx)
	}()

	var result CheckResult
	select {
	case result = <-done:
	case <-ctx.Done():
		result = CheckResult{Name: name, Valid: false, Reason: "check timed out"}
	}

	e.metrics.ObserveCheckLatency(string(name), time.Since(start))
	e.metrics.IncrementCheckOutcome(string(name), result.Valid)
	return result
}

// overallValid is the AND across all check verdicts.
func overallValid(results []CheckResult) bool {
	for _, r := range results {
		if !r.Valid {
			return false
		}
	}
	return true
}

// riskOf extracts the risk assessment from a joined result set. The risk check
// always populates its slot; the zero assessment only covers malformed input.
func riskOf(results []CheckResult) RiskAssessment {
	for _, r := range results {
		if r.Risk != nil {
			return *r.Risk
		}
	}
	return RiskAssessment{Level: RiskLow, Factors: []RiskFactor{}}
}
