package service

import (
	"context"
	"errors"

	"tenantry/internal/user/models"
	"tenantry/internal/user/query"
	id "tenantry/pkg/domain"
	dErrors "tenantry/pkg/domain-errors"
	"tenantry/pkg/platform/sentinel"
)

// UserStore persists users. Create and Update replace both association sets
// and report a *changeset.ConstraintViolation when a named constraint trips.
type UserStore interface {
	FindByID(ctx context.Context, tenantID id.TenantID, userID id.UserID) (*models.User, error)
	Associations(ctx context.Context, userID id.UserID) (models.Associations, error)
	Create(ctx context.Context, user *models.User, assoc models.Associations) error
	Update(ctx context.Context, user *models.User, assoc models.Associations) error
	SoftDelete(ctx context.Context, user *models.User) error
	List(ctx context.Context, tenantID id.TenantID, q query.Query) ([]*models.User, error)
}

// Directory resolves workspace and group ids inside one tenant. Unknown ids
// are dropped rather than reported.
type Directory interface {
	Workspaces(ctx context.Context, tenantID id.TenantID, ids []id.WorkspaceID) ([]models.Workspace, error)
	Groups(ctx context.Context, tenantID id.TenantID, ids []id.GroupID) ([]models.Group, error)
}

// Hasher is the one-way credential hashing collaborator.
type Hasher interface {
	Hash(secret string) (string, error)
}

// StoreTx provides the transactional boundary for user mutations.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// wrapStoreErr translates store failures into domain errors. Constraint
// violations registered on the change come back as field errors.
func wrapStoreErr(change *models.UserChange, err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if change != nil {
		if mapped := change.MapConstraint(err); dErrors.HasCode(mapped, dErrors.CodeValidation) {
			return mapped
		}
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
