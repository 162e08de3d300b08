package service

import (
	"context"
	"log/slog"

	"tenantry/internal/platform/tracer"
	usermetrics "tenantry/internal/user/metrics"
	"tenantry/internal/user/models"
	"tenantry/internal/user/query"
	id "tenantry/pkg/domain"
	"tenantry/pkg/platform/audit"
	"tenantry/pkg/platform/privacy"
	"tenantry/pkg/platform/tx"
	"tenantry/pkg/requestcontext"
	"tenantry/pkg/secrets"
	"tenantry/pkg/session"
)

// Service runs the user mutation pipeline and the user reads. Every
// operation is scoped to the caller's tenant.
type Service struct {
	users     UserStore
	directory Directory
	hasher    Hasher
	tx        StoreTx
	logger    *slog.Logger
	audit     *audit.Logger
	metrics   *usermetrics.Metrics
	tracer    tracer.Tracer
}

func New(users UserStore, directory Directory, opts ...Option) *Service {
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
	if cfg.hasher == nil {
		cfg.hasher = secrets.NewBcrypt(0)
	}
	return &Service{
		users:     users,
		directory: directory,
		hasher:    cfg.hasher,
		tx:        cfg.tx,
		logger:    cfg.logger,
		audit:     cfg.audit,
		metrics:   cfg.metrics,
		tracer:    cfg.tracer,
	}
}

// GetUser returns a live user of the caller's tenant with its memberships.
func (s *Service) GetUser(ctx context.Context, userID id.UserID, caller *session.Caller) (*models.User, models.Associations, error) {
	if err := s.Authorize(caller); err != nil {
		return nil, models.Associations{}, err
	}
	u, err := s.users.FindByID(ctx, caller.TenantID, userID)
	if err != nil {
		return nil, models.Associations{}, wrapStoreErr(nil, err, "failed to load user")
	}
	assoc, err := s.users.Associations(ctx, u.ID)
	if err != nil {
		return nil, models.Associations{}, wrapStoreErr(nil, err, "failed to load user associations")
	}
	return u, assoc, nil
}

// CreateUser validates attrs as a new user of the caller's tenant and stores
// it with its associations in one transaction.
func (s *Service) CreateUser(ctx context.Context, attrs map[string]any, caller *session.Caller) (*models.UserChange, error) {
	if err := s.Authorize(caller); err != nil {
		return nil, err
	}

	var change *models.UserChange
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		change, err = s.Changeset(txCtx, nil, attrs, caller)
		if err != nil {
			return err
		}
		return s.persist(txCtx, change, s.users.Create, "failed to create user")
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, caller, change.User, audit.ActionUserCreated, usermetrics.OperationCreate)
	return change, nil
}

// UpdateUser loads a live user of the caller's tenant, runs attrs through
// the pipeline and replaces the stored row and associations.
func (s *Service) UpdateUser(ctx context.Context, userID id.UserID, attrs map[string]any, caller *session.Caller) (*models.UserChange, error) {
	if err := s.Authorize(caller); err != nil {
		return nil, err
	}

	var change *models.UserChange
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.users.FindByID(txCtx, caller.TenantID, userID)
		if err != nil {
			return wrapStoreErr(nil, err, "failed to load user")
		}
		change, err = s.Changeset(txCtx, existing, attrs, caller)
		if err != nil {
			return err
		}
		return s.persist(txCtx, change, s.users.Update, "failed to update user")
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, caller, change.User, audit.ActionUserUpdated, usermetrics.OperationUpdate)
	return change, nil
}

// DeleteUser soft-deletes a live user of the caller's tenant. Memberships are
// kept so the account can be inspected later.
func (s *Service) DeleteUser(ctx context.Context, userID id.UserID, caller *session.Caller) (*models.User, error) {
	if err := s.Authorize(caller); err != nil {
		return nil, err
	}

	var deleted *models.User
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		u, err := s.users.FindByID(txCtx, caller.TenantID, userID)
		if err != nil {
			return wrapStoreErr(nil, err, "failed to load user")
		}
		u.SoftDelete(requestcontext.Now(txCtx))
		if err := s.users.SoftDelete(txCtx, u); err != nil {
			return wrapStoreErr(nil, err, "failed to delete user")
		}
		deleted = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, caller, deleted, audit.ActionUserDeleted, usermetrics.OperationDelete)
	return deleted, nil
}

// ListUsers returns one page of the caller's tenant's live users.
func (s *Service) ListUsers(ctx context.Context, q query.Query, caller *session.Caller) (_ []*models.User, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanUserList)
	defer func() { span.End(err) }()

	if err := s.Authorize(caller); err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrTenantID, caller.TenantID.String()))

	users, err := s.users.List(ctx, caller.TenantID, q)
	if err != nil {
		return nil, wrapStoreErr(nil, err, "failed to list users")
	}
	span.SetAttributes(tracer.Int(tracer.AttrResultCount, len(users)))
	if s.metrics != nil {
		s.metrics.ObserveListResults(len(users))
	}
	return users, nil
}

func (s *Service) persist(ctx context.Context, change *models.UserChange, write func(context.Context, *models.User, models.Associations) error, action string) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanUserPersist, tracer.String(tracer.AttrUserID, change.User.ID.String()))
	defer func() { span.End(err) }()

	if err := write(ctx, change.User, change.Associations); err != nil {
		return wrapStoreErr(change, err, action)
	}
	return nil
}

func (s *Service) committed(ctx context.Context, caller *session.Caller, u *models.User, action audit.Action, operation string) {
	s.audit.Log(ctx, audit.Event{
		Action:   action,
		TenantID: caller.TenantID,
		ActorID:  caller.UserID,
		Subject:  u.ID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementMutation(operation)
	}
	s.logger.DebugContext(ctx, "user committed",
		"action", string(action),
		"user_id", u.ID.String(),
		"email", privacy.MaskEmail(u.Email),
	)
}
