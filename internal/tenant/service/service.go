package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"tenantry/internal/platform/tracer"
	tenantmetrics "tenantry/internal/tenant/metrics"
	"tenantry/internal/tenant/models"
	id "tenantry/pkg/domain"
	"tenantry/pkg/platform/audit"
	"tenantry/pkg/platform/tx"
	"tenantry/pkg/requestcontext"
	"tenantry/pkg/session"
)

// Service orchestrates the tenant lifecycle: creation, reads, updates and
// soft delete / enable, all funneled through ModifyTenant.
type Service struct {
	tenants TenantStore
	tx      StoreTx
	logger  *slog.Logger
	audit   *audit.Logger
	metrics *tenantmetrics.Metrics
	tracer  tracer.Tracer
}

func New(tenants TenantStore, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.tx == nil {
		cfg.tx = tx.NewInMemory()
	}
	if cfg.tracer == nil {
		cfg.tracer = tracer.NewNoop()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		tenants: tenants,
		tx:      cfg.tx,
		logger:  cfg.logger,
		audit:   cfg.audit,
		metrics: cfg.metrics,
		tracer:  cfg.tracer,
	}
}

// GetTenant returns the caller's own tenant. Authorization is checked before
// the store is consulted, so an unauthorized caller never learns whether the
// tenant exists.
func (s *Service) GetTenant(ctx context.Context, caller *session.Caller) (*models.Tenant, error) {
	if err := s.Authorize(caller); err != nil {
		return nil, err
	}
	t, err := s.tenants.FindByID(ctx, caller.TenantID)
	if err != nil {
		return nil, wrapStoreErr(nil, err, "failed to load tenant")
	}
	return t, nil
}

// CreateTenant validates attrs against a fresh tenant and persists it.
// There is no authorization gate here; the route is the public signup path.
func (s *Service) CreateTenant(ctx context.Context, attrs map[string]any) (_ *models.Tenant, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanTenantCreate)
	defer func() { span.End(err) }()

	now := requestcontext.Now(ctx)
	base := models.NewTenant(id.TenantID(uuid.New()), now)
	cs := models.Changeset(base, attrs)
	if err := cs.Err(); err != nil {
		span.SetAttributes(tracer.Int(tracer.AttrFieldErrors, len(cs.Errors())))
		return nil, err
	}
	created := models.Apply(base, cs, now)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tenants.Create(txCtx, created); err != nil {
			return wrapStoreErr(cs, err, "failed to create tenant")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(tracer.String(tracer.AttrTenantID, created.ID.String()))
	s.audit.Log(ctx, audit.Event{Action: audit.ActionTenantCreated, TenantID: created.ID, Subject: created.Name})
	if s.metrics != nil {
		s.metrics.IncrementTenantCreated()
	}
	return created, nil
}

func (s *Service) UpdateTenant(ctx context.Context, attrs map[string]any, caller *session.Caller) (*models.Tenant, error) {
	return s.ModifyTenant(ctx, attrs, caller)
}

// DeleteTenant soft-deletes the caller's tenant. Deleting an already deleted
// tenant succeeds and keeps the original deletion time.
func (s *Service) DeleteTenant(ctx context.Context, caller *session.Caller) (*models.Tenant, error) {
	return s.ModifyTenant(ctx, map[string]any{"status": string(models.TenantStatusDeleted)}, caller)
}

// EnableTenant reverses DeleteTenant.
func (s *Service) EnableTenant(ctx context.Context, caller *session.Caller) (*models.Tenant, error) {
	return s.ModifyTenant(ctx, map[string]any{"status": string(models.TenantStatusActive)}, caller)
}

// ModifyTenant authorizes the caller, loads its tenant, validates attrs
// against it and persists the merged result in one transaction.
func (s *Service) ModifyTenant(ctx context.Context, attrs map[string]any, caller *session.Caller) (_ *models.Tenant, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanTenantModify)
	defer func() { span.End(err) }()

	if err := s.Authorize(caller); err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrTenantID, caller.TenantID.String()))

	var before, after *models.Tenant
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.tenants.FindByID(txCtx, caller.TenantID)
		if err != nil {
			return wrapStoreErr(nil, err, "failed to load tenant")
		}

		cs := models.Changeset(current, attrs)
		if err := cs.Err(); err != nil {
			span.SetAttributes(tracer.Int(tracer.AttrFieldErrors, len(cs.Errors())))
			return err
		}

		next := models.Apply(current, cs, requestcontext.Now(txCtx))
		if err := s.tenants.Update(txCtx, next); err != nil {
			return wrapStoreErr(cs, err, "failed to update tenant")
		}
		before, after = current, next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.Event{
		Action:   lifecycleAction(before, after),
		TenantID: after.ID,
		ActorID:  caller.UserID,
		Subject:  after.Name,
	})
	if s.metrics != nil {
		s.metrics.IncrementTenantModified(string(after.Status))
	}
	return after, nil
}

func lifecycleAction(before, after *models.Tenant) audit.Action {
	switch {
	case !before.IsDeleted() && after.IsDeleted():
		return audit.ActionTenantDeleted
	case before.IsDeleted() && after.Status == models.TenantStatusActive:
		return audit.ActionTenantEnabled
	default:
		return audit.ActionTenantUpdated
	}
}
