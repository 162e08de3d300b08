package service

import (
	"context"
	"errors"

	"tenantry/internal/tenant/models"
	"tenantry/pkg/changeset"
	id "tenantry/pkg/domain"
	dErrors "tenantry/pkg/domain-errors"
	"tenantry/pkg/platform/sentinel"
)

// TenantStore persists tenants. Create and Update report a
// *changeset.ConstraintViolation when the tenants_name_key constraint trips.
type TenantStore interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	Update(ctx context.Context, tenant *models.Tenant) error
	FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error)
}

// StoreTx provides the transactional boundary for tenant mutations.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// wrapStoreErr translates store failures into domain errors. Constraint
// violations registered on cs come back as field errors.
func wrapStoreErr(cs *changeset.Changeset, err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "tenant not found")
	}
	if cs != nil {
		if mapped := cs.MapConstraint(err); dErrors.HasCode(mapped, dErrors.CodeValidation) {
			return mapped
		}
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
