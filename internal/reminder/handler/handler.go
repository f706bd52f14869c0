// Package handler exposes the reminder module over HTTP. It delegates to the
// reminder service and processor; no scheduling logic lives here.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"idmonitor/internal/document"
	"idmonitor/internal/platform/metrics"
	"idmonitor/internal/platform/middleware"
	"idmonitor/internal/reminder"
	"idmonitor/internal/transport/http/shared"
	dErrors "idmonitor/pkg/domain-errors"
	"idmonitor/pkg/platform/sentinel"
	"idmonitor/pkg/requestcontext"
)

// Service defines the reminder operations the handler exposes.
type Service interface {
	ResolveConfig(ctx context.Context, userID string, kind *reminder.DocumentKind) (reminder.Config, error)
	UpdateConfig(ctx context.Context, cfg reminder.Config) (reminder.Config, error)
	ScheduleForDocument(ctx context.Context, documentID, userID string, expiresAt time.Time, kind reminder.DocumentKind) (int, error)
	ListForDocument(ctx context.Context, documentID string) ([]reminder.ScheduledReminder, error)
	DeleteForDocument(ctx context.Context, documentID string) error
}

// Processor triggers a due-reminder batch on demand.
type Processor interface {
	ProcessDue(ctx context.Context, now time.Time, batchSize int) (int, error)
}

// Handler handles reminder-related endpoints.
type Handler struct {
	logger       *slog.Logger
	reminders    Service
	processor    Processor
	documents    document.Store
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
	batchSize    int
}

// New creates a new reminder Handler.
func New(
	reminders Service,
	processor Processor,
	documents document.Store,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator,
	batchSize int,
) *Handler {
	return &Handler{
		logger:       logger,
		reminders:    reminders,
		processor:    processor,
		documents:    documents,
		metrics:      metrics,
		jwtValidator: jwtValidator,
		batchSize:    batchSize,
	}
}

// Register registers the reminder routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	reminderRouter := chi.NewRouter()
	reminderRouter.Use(middleware.Recovery(h.logger))
	reminderRouter.Use(middleware.RequestID)
	reminderRouter.Use(middleware.RequestTime)
	reminderRouter.Use(middleware.Logger(h.logger))
	reminderRouter.Use(middleware.Timeout(30 * time.Second))
	reminderRouter.Use(middleware.ContentTypeJSON)
	reminderRouter.Use(middleware.LatencyMiddleware(h.metrics))
	reminderRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

	reminderRouter.Get("/reminders/config", h.handleGetConfig)
	reminderRouter.Put("/reminders/config", h.handleUpdateConfig)
	reminderRouter.Post("/reminders/schedule", h.handleSchedule)
	reminderRouter.Post("/reminders/process", h.handleProcess)
	reminderRouter.Get("/reminders/documents/{documentID}", h.handleListForDocument)
	reminderRouter.Delete("/reminders/documents/{documentID}", h.handleDeleteForDocument)

	r.Mount("/", reminderRouter)
}

// handleGetConfig returns the effective reminder policy for the
// authenticated user, optionally narrowed to a document kind.
func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var kind *reminder.DocumentKind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		parsed, err := reminder.ParseDocumentKind(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		kind = &parsed
	}

	cfg, err := h.reminders.ResolveConfig(ctx, userID, kind)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to resolve reminder config",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toConfigResponse(cfg))
}

// handleUpdateConfig stores a reminder policy for the authenticated user.
func (h *Handler) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid update config request",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	cfg, err := req.ToConfig(userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	stored, err := h.reminders.UpdateConfig(ctx, cfg)
	if err != nil {
		h.logger.WarnContext(ctx, "reminder config rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toConfigResponse(stored))
}

// handleSchedule recomputes the reminder plan for one of the user's
// documents.
func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocumentID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	doc, err := h.loadOwnedDocument(ctx, req.DocumentID, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	count, err := h.reminders.ScheduleForDocument(ctx, doc.ID, userID, doc.ExpiresAt, doc.Kind)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to schedule reminders",
			"request_id", requestID,
			"document_id", doc.ID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, ScheduleResponse{DocumentID: doc.ID, Scheduled: count})
}

// handleProcess triggers a due-reminder batch immediately. Normally the
// worker binary owns the cadence; this endpoint exists for operators.
func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ProcessRequest
	if r.Body != nil {
		// An empty body means default batch size.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = h.batchSize
	}

	processed, err := h.processor.ProcessDue(ctx, requestcontext.Now(ctx).UTC(), batchSize)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to process due reminders",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, ProcessResponse{Processed: processed})
}

// handleListForDocument returns the full reminder history for a document.
func (h *Handler) handleListForDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	documentID := chi.URLParam(r, "documentID")
	if _, err := h.loadOwnedDocument(ctx, documentID, userID); err != nil {
		shared.WriteError(w, err)
		return
	}

	rows, err := h.reminders.ListForDocument(ctx, documentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toReminderResponses(rows))
}

// handleDeleteForDocument drops all reminders for a document.
func (h *Handler) handleDeleteForDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	documentID := chi.URLParam(r, "documentID")
	if _, err := h.loadOwnedDocument(ctx, documentID, userID); err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.reminders.DeleteForDocument(ctx, documentID); err != nil {
		shared.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// loadOwnedDocument fetches a document and verifies it belongs to userID.
// A document owned by someone else reads as not found so the endpoint does
// not leak document existence.
func (h *Handler) loadOwnedDocument(ctx context.Context, documentID, userID string) (document.Document, error) {
	doc, err := h.documents.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return document.Document{}, dErrors.Wrap(err, dErrors.CodeNotFound, "document not found")
		}
		return document.Document{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	if doc.UserID != userID {
		return document.Document{}, dErrors.New(dErrors.CodeNotFound, "document not found")
	}
	return doc, nil
}
