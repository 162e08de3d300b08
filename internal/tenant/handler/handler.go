package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tenantry/internal/tenant/models"
	"tenantry/pkg/platform/httputil"
	"tenantry/pkg/requestcontext"
	"tenantry/pkg/session"
)

// Service defines the tenant operations exposed over HTTP.
type Service interface {
	Authorize(caller *session.Caller) error
	CreateTenant(ctx context.Context, attrs map[string]any) (*models.Tenant, error)
	GetTenant(ctx context.Context, caller *session.Caller) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, attrs map[string]any, caller *session.Caller) (*models.Tenant, error)
	DeleteTenant(ctx context.Context, caller *session.Caller) (*models.Tenant, error)
	EnableTenant(ctx context.Context, caller *session.Caller) (*models.Tenant, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated signup route.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/signup/tenants", h.HandleCreateTenant)
}

// Register mounts the routes that act on the caller's own tenant. They must
// sit behind the auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/tenant", h.HandleGetTenant)
	r.Patch("/tenant", h.HandleUpdateTenant)
	r.Delete("/tenant", h.HandleDeleteTenant)
	r.Post("/tenant/enable", h.HandleEnableTenant)
}

func (h *Handler) HandleCreateTenant(w http.ResponseWriter, r *http.Request) {
	attrs, ok := httputil.DecodeAttrs(w, r, h.logger)
	if !ok {
		return
	}

	ctx := r.Context()
	tenant, err := h.service.CreateTenant(ctx, attrs)
	if err != nil {
		h.logger.WarnContext(ctx, "create tenant failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, tenant)
}

func (h *Handler) HandleGetTenant(w http.ResponseWriter, r *http.Request) {
	h.withCaller(w, r, func(ctx context.Context, caller *session.Caller) (*models.Tenant, error) {
		return h.service.GetTenant(ctx, caller)
	})
}

// HandleUpdateTenant authorizes the caller before reading the body, so a
// caller without the capability is refused regardless of what it sent.
func (h *Handler) HandleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err == nil {
		err = h.service.Authorize(caller)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	attrs, ok := httputil.DecodeAttrs(w, r, h.logger)
	if !ok {
		return
	}
	h.withCaller(w, r, func(ctx context.Context, caller *session.Caller) (*models.Tenant, error) {
		return h.service.UpdateTenant(ctx, attrs, caller)
	})
}

// HandleDeleteTenant soft-deletes the tenant and returns its new state.
func (h *Handler) HandleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	h.withCaller(w, r, func(ctx context.Context, caller *session.Caller) (*models.Tenant, error) {
		return h.service.DeleteTenant(ctx, caller)
	})
}

func (h *Handler) HandleEnableTenant(w http.ResponseWriter, r *http.Request) {
	h.withCaller(w, r, func(ctx context.Context, caller *session.Caller) (*models.Tenant, error) {
		return h.service.EnableTenant(ctx, caller)
	})
}

// withCaller resolves the session, runs op and writes the tenant or the error.
func (h *Handler) withCaller(w http.ResponseWriter, r *http.Request, op func(context.Context, *session.Caller) (*models.Tenant, error)) {
	ctx := r.Context()
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	tenant, err := op(ctx, caller)
	if err != nil {
		h.logger.WarnContext(ctx, "tenant operation failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
			"method", r.Method,
			"path", r.URL.Path,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tenant)
}
