package testutil

import (
	"time"

	"github.com/google/uuid"

	tenantmodels "tenantry/internal/tenant/models"
	usermodels "tenantry/internal/user/models"
	id "tenantry/pkg/domain"
	"tenantry/pkg/session"
)

// TestIDs provides pre-generated IDs for deterministic test data.
var TestIDs = struct {
	UserID1      id.UserID
	UserID2      id.UserID
	TenantID1    id.TenantID
	TenantID2    id.TenantID
	RoleID1      id.RoleID
	WorkspaceID1 id.WorkspaceID
	WorkspaceID2 id.WorkspaceID
	GroupID1     id.GroupID
	GroupID2     id.GroupID
}{
	UserID1:      id.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	UserID2:      id.UserID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	TenantID1:    id.TenantID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000001")),
	TenantID2:    id.TenantID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000002")),
	RoleID1:      id.RoleID(uuid.MustParse("bbbb0000-0000-0000-0000-000000000001")),
	WorkspaceID1: id.WorkspaceID(uuid.MustParse("cccc0000-0000-0000-0000-000000000001")),
	WorkspaceID2: id.WorkspaceID(uuid.MustParse("cccc0000-0000-0000-0000-000000000002")),
	GroupID1:     id.GroupID(uuid.MustParse("dddd0000-0000-0000-0000-000000000001")),
	GroupID2:     id.GroupID(uuid.MustParse("dddd0000-0000-0000-0000-000000000002")),
}

// UserBuilder provides a fluent interface for building persisted test users.
type UserBuilder struct {
	user *usermodels.User
}

// NewUserBuilder starts from an active agent in TenantID1.
func NewUserBuilder() *UserBuilder {
	now := time.Now()
	return &UserBuilder{
		user: &usermodels.User{
			ID:        id.UserID(uuid.New()),
			TenantID:  TestIDs.TenantID1,
			RoleID:    TestIDs.RoleID1,
			Type:      usermodels.AccountTypeAgent,
			Status:    usermodels.UserStatusActive,
			Email:     "test@example.com",
			Name:      "Test User",
			Provider:  usermodels.DefaultProvider,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (b *UserBuilder) WithID(userID id.UserID) *UserBuilder {
	b.user.ID = userID
	return b
}

func (b *UserBuilder) WithTenantID(tenantID id.TenantID) *UserBuilder {
	b.user.TenantID = tenantID
	return b
}

func (b *UserBuilder) WithRoleID(roleID id.RoleID) *UserBuilder {
	b.user.RoleID = roleID
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.user.Name = name
	return b
}

func (b *UserBuilder) WithType(t usermodels.AccountType) *UserBuilder {
	b.user.Type = t
	return b
}

func (b *UserBuilder) WithStatus(status usermodels.UserStatus) *UserBuilder {
	b.user.Status = status
	return b
}

func (b *UserBuilder) WithPasswordHash(hash string) *UserBuilder {
	b.user.PasswordHash = hash
	return b
}

func (b *UserBuilder) Build() *usermodels.User {
	u := *b.user
	return &u
}

// TenantBuilder provides a fluent interface for building test tenants.
type TenantBuilder struct {
	tenant *tenantmodels.Tenant
}

func NewTenantBuilder() *TenantBuilder {
	t := tenantmodels.NewTenant(TestIDs.TenantID1, time.Now())
	t.Name = "Test Tenant"
	return &TenantBuilder{tenant: t}
}

func (b *TenantBuilder) WithID(tenantID id.TenantID) *TenantBuilder {
	b.tenant.ID = tenantID
	return b
}

func (b *TenantBuilder) WithName(name string) *TenantBuilder {
	b.tenant.Name = name
	return b
}

// Deleted marks the tenant deleted at the given time.
func (b *TenantBuilder) Deleted(at time.Time) *TenantBuilder {
	b.tenant.Status = tenantmodels.TenantStatusDeleted
	b.tenant.DeletedAt = &at
	return b
}

func (b *TenantBuilder) Build() *tenantmodels.Tenant {
	t := *b.tenant
	return &t
}

// AgentCaller returns an agent of tenantID holding the given capabilities.
func AgentCaller(tenantID id.TenantID, capabilities ...session.Capability) *session.Caller {
	return &session.Caller{
		UserID:       TestIDs.UserID1,
		TenantID:     tenantID,
		Capabilities: capabilities,
		AccountClass: session.AccountClassAgent,
	}
}

// ContactCaller returns a contact of tenantID holding the given capabilities.
func ContactCaller(tenantID id.TenantID, capabilities ...session.Capability) *session.Caller {
	return &session.Caller{
		UserID:       TestIDs.UserID2,
		TenantID:     tenantID,
		Capabilities: capabilities,
		AccountClass: session.AccountClassContact,
	}
}
