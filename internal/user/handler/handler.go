package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tenantry/internal/user/models"
	"tenantry/internal/user/query"
	id "tenantry/pkg/domain"
	"tenantry/pkg/platform/httputil"
	"tenantry/pkg/requestcontext"
	"tenantry/pkg/session"
)

// Service defines the user operations exposed over HTTP.
type Service interface {
	Authorize(caller *session.Caller) error
	CreateUser(ctx context.Context, attrs map[string]any, caller *session.Caller) (*models.UserChange, error)
	UpdateUser(ctx context.Context, userID id.UserID, attrs map[string]any, caller *session.Caller) (*models.UserChange, error)
	GetUser(ctx context.Context, userID id.UserID, caller *session.Caller) (*models.User, models.Associations, error)
	DeleteUser(ctx context.Context, userID id.UserID, caller *session.Caller) (*models.User, error)
	ListUsers(ctx context.Context, q query.Query, caller *session.Caller) ([]*models.User, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the user routes. They must sit behind the auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/users", h.HandleListUsers)
	r.Post("/users", h.HandleCreateUser)
	r.Get("/users/{id}", h.HandleGetUser)
	r.Patch("/users/{id}", h.HandleUpdateUser)
	r.Delete("/users/{id}", h.HandleDeleteUser)
}

func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.authorized(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, err := parseListUsersRequest(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !httputil.Prepare(w, r, req, h.logger) {
		return
	}

	q := req.Query()
	users, err := h.service.ListUsers(ctx, q, caller)
	if err != nil {
		h.fail(w, r, "list users failed", err)
		return
	}

	resp := &ListUsersResponse{Users: make([]*UserResponse, len(users)), Limit: q.Page.Limit, Offset: q.Page.Offset}
	for i, u := range users {
		resp.Users[i] = toUserResponse(u, nil)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.authorized(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	attrs, ok := httputil.DecodeAttrs(w, r, h.logger)
	if !ok {
		return
	}

	change, err := h.service.CreateUser(ctx, attrs, caller)
	if err != nil {
		h.fail(w, r, "create user failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(change.User, &change.Associations))
}

func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	h.withUser(w, r, func(ctx context.Context, userID id.UserID, caller *session.Caller) {
		u, assoc, err := h.service.GetUser(ctx, userID, caller)
		if err != nil {
			h.fail(w, r, "get user failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, toUserResponse(u, &assoc))
	})
}

func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	h.withUser(w, r, func(ctx context.Context, userID id.UserID, caller *session.Caller) {
		attrs, ok := httputil.DecodeAttrs(w, r, h.logger)
		if !ok {
			return
		}
		change, err := h.service.UpdateUser(ctx, userID, attrs, caller)
		if err != nil {
			h.fail(w, r, "update user failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, toUserResponse(change.User, &change.Associations))
	})
}

func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	h.withUser(w, r, func(ctx context.Context, userID id.UserID, caller *session.Caller) {
		u, err := h.service.DeleteUser(ctx, userID, caller)
		if err != nil {
			h.fail(w, r, "delete user failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, toUserResponse(u, nil))
	})
}

// authorized returns the caller once it is known to be allowed to manage
// users, before any request input is read.
func (h *Handler) authorized(ctx context.Context) (*session.Caller, error) {
	caller, err := httputil.RequireCaller(ctx, h.logger)
	if err != nil {
		return nil, err
	}
	if err := h.service.Authorize(caller); err != nil {
		return nil, err
	}
	return caller, nil
}

// withUser resolves and authorizes the caller, then the {id} path parameter,
// before running op.
func (h *Handler) withUser(w http.ResponseWriter, r *http.Request, op func(context.Context, id.UserID, *session.Caller)) {
	ctx := r.Context()
	caller, err := h.authorized(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	op(ctx, userID, caller)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
		"method", r.Method,
		"path", r.URL.Path,
	)
	httputil.WriteError(w, err)
}
