package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	tenantmodels "tenantry/internal/tenant/models"
	usermodels "tenantry/internal/user/models"
	id "tenantry/pkg/domain"
	"tenantry/pkg/session"
)

// TenantStore defines methods for seeding tenants
type TenantStore interface {
	Create(ctx context.Context, t *tenantmodels.Tenant) error
}

// Directory defines methods for seeding roles, workspaces, and groups
type Directory interface {
	AddRole(ctx context.Context, r usermodels.Role) error
	AddWorkspace(ctx context.Context, w usermodels.Workspace) error
	AddGroup(ctx context.Context, g usermodels.Group) error
}

// UserService creates users through the regular mutation pipeline so seeded
// rows obey the same rules as API-created ones.
type UserService interface {
	CreateUser(ctx context.Context, attrs map[string]any, caller *session.Caller) (*usermodels.UserChange, error)
}

// Result identifies what was seeded.
type Result struct {
	TenantID id.TenantID
	AdminID  id.UserID
	Users    int
}

// Seeder populates empty stores with a demo tenant
type Seeder struct {
	tenants   TenantStore
	directory Directory
	users     UserService
	logger    *slog.Logger
}

// New creates a new seeder
func New(tenants TenantStore, directory Directory, users UserService, logger *slog.Logger) *Seeder {
	return &Seeder{
		tenants:   tenants,
		directory: directory,
		users:     users,
		logger:    logger,
	}
}

type demoDirectory struct {
	role         id.RoleID
	support      id.WorkspaceID
	portal       id.WorkspaceID
	tierOne      id.GroupID
	vipCustomers id.GroupID
}

// SeedAll creates the demo tenant, its directory, and a handful of users.
func (s *Seeder) SeedAll(ctx context.Context) (*Result, error) {
	s.logger.Info("seeding demo data...")

	tenant, err := s.seedTenant(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed tenant: %w", err)
	}

	dir, err := s.seedDirectory(ctx, tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to seed directory: %w", err)
	}

	result, err := s.seedUsers(ctx, tenant.ID, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}

	s.logger.Info("demo data seeded successfully",
		"tenant_id", tenant.ID.String(),
		"users", result.Users,
	)

	return result, nil
}

func (s *Seeder) seedTenant(ctx context.Context) (*tenantmodels.Tenant, error) {
	tenant := tenantmodels.NewTenant(id.TenantID(uuid.New()), time.Now())
	tenant.Name = "Demo Support Desk"
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *Seeder) seedDirectory(ctx context.Context, tenantID id.TenantID) (demoDirectory, error) {
	dir := demoDirectory{
		role:         id.RoleID(uuid.New()),
		support:      id.WorkspaceID(uuid.New()),
		portal:       id.WorkspaceID(uuid.New()),
		tierOne:      id.GroupID(uuid.New()),
		vipCustomers: id.GroupID(uuid.New()),
	}

	if err := s.directory.AddRole(ctx, usermodels.Role{ID: dir.role, TenantID: tenantID, Name: "administrator"}); err != nil {
		return dir, err
	}

	workspaces := []usermodels.Workspace{
		{ID: dir.support, TenantID: tenantID, Name: "Support"},
		{ID: dir.portal, TenantID: tenantID, Name: "Customer Portal", AllowContacts: true},
	}
	for _, w := range workspaces {
		if err := s.directory.AddWorkspace(ctx, w); err != nil {
			return dir, err
		}
	}

	groups := []usermodels.Group{
		{ID: dir.tierOne, TenantID: tenantID, Name: "Tier 1", Audience: usermodels.AccountTypeAgent},
		{ID: dir.vipCustomers, TenantID: tenantID, Name: "VIP Customers", Audience: usermodels.AccountTypeContact},
	}
	for _, g := range groups {
		if err := s.directory.AddGroup(ctx, g); err != nil {
			return dir, err
		}
	}

	return dir, nil
}

func (s *Seeder) seedUsers(ctx context.Context, tenantID id.TenantID, dir demoDirectory) (*Result, error) {
	// The seeding caller never exists as a row; it only carries the tenant
	// and the account class the pipeline requires.
	caller := &session.Caller{
		UserID:       id.UserID(uuid.New()),
		TenantID:     tenantID,
		AccountClass: session.AccountClassAgent,
	}

	demoUsers := []struct {
		accountType usermodels.AccountType
		email       string
		name        string
		status      usermodels.UserStatus
	}{
		{usermodels.AccountTypeAgent, "admin@demo.test", "Ada Admin", usermodels.UserStatusActive},
		{usermodels.AccountTypeAgent, "bob@demo.test", "Bob Brown", usermodels.UserStatusActive},
		{usermodels.AccountTypeAgent, "carol@demo.test", "Carol Chen", usermodels.UserStatusInactive},
		{usermodels.AccountTypeContact, "dan@customer.test", "Dan Davis", usermodels.UserStatusActive},
		{usermodels.AccountTypeContact, "erin@customer.test", "Erin Evans", usermodels.UserStatusActive},
	}

	result := &Result{TenantID: tenantID}
	for _, u := range demoUsers {
		attrs := map[string]any{
			"type":                   string(u.accountType),
			"status":                 string(u.status),
			"email":                  u.email,
			"name":                   u.name,
			"role_id":                dir.role.String(),
			usermodels.FieldPassword: "demo-password",
			"workspace_ids":          []any{dir.support.String(), dir.portal.String()},
			"group_ids":              []any{dir.tierOne.String(), dir.vipCustomers.String()},
		}

		change, err := s.users.CreateUser(ctx, attrs, caller)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", u.email, err)
		}
		if result.AdminID.IsNil() {
			result.AdminID = change.User.ID
		}
		result.Users++
	}

	return result, nil
}
