package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"signet/internal/device"
	"signet/internal/domain"
	"signet/internal/verification"
	dErrors "signet/pkg/domain-errors"
	"signet/pkg/platform/httputil"
	"signet/pkg/platform/sentinel"
	"signet/pkg/requestcontext"
)

// Service defines the verification operations the HTTP layer depends on.
type Service interface {
	Verify(ctx context.Context, sig domain.Signature, doc domain.Document, ev domain.Evidence) *verification.Result
	LastResult(ctx context.Context, signatureID string) (*verification.Result, error)
}

// Handler wires verification endpoints to the verification service.
type Handler struct {
	service Service
	devices *device.Service
	logger  *slog.Logger
}

// New constructs a verification handler with its dependencies.
func New(service Service, devices *device.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		devices: devices,
		logger:  logger,
	}
}

// Register mounts verification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/signatures/verify", h.HandleVerify)
	r.Get("/signatures/{signatureID}/verification", h.HandleLastResult)
}

// HandleVerify handles POST /signatures/verify requests.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	// Derive a device fingerprint from the User-Agent when the caller did not
	// supply one and fingerprinting is enabled.
	fallbackFingerprint := ""
	if h.devices != nil {
		fallbackFingerprint = h.devices.ComputeFingerprint(requestcontext.UserAgent(ctx))
	}

	result := h.service.Verify(ctx, req.ToSignature(), req.ToDocument(), req.ToEvidence(fallbackFingerprint))

	h.logger.InfoContext(ctx, "verification request completed",
		"request_id", requestID,
		"signature_id", result.SignatureID,
		"status", result.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleLastResult handles GET /signatures/{signatureID}/verification.
func (h *Handler) HandleLastResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signatureID := chi.URLParam(r, "signatureID")
	if signatureID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "signature ID is required"))
		return
	}

	result, err := h.service.LastResult(ctx, signatureID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no verification result for signature"))
			return
		}
		h.logger.ErrorContext(ctx, "failed to load verification result",
			"request_id", requestcontext.RequestID(ctx),
			"signature_id", signatureID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to load verification result"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}
