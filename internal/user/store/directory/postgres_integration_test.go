//go:build integration

package directory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"tenantry/internal/user/models"
	"tenantry/internal/user/store/directory"
	id "tenantry/pkg/domain"
	"tenantry/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *directory.PostgresStore
	ctx      context.Context
	tenant   id.TenantID
	other    id.TenantID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = directory.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateModuleTables(s.ctx))
	s.tenant = s.postgres.CreateTestTenant(s.ctx, s.T())
	s.other = s.postgres.CreateTestTenant(s.ctx, s.T())
}

func (s *PostgresStoreSuite) TestWorkspacesAreTenantScopedAndOrdered() {
	a := models.Workspace{ID: id.WorkspaceID(uuid.New()), TenantID: s.tenant, Name: "Support"}
	b := models.Workspace{ID: id.WorkspaceID(uuid.New()), TenantID: s.tenant, Name: "Portal", AllowContacts: true}
	foreign := models.Workspace{ID: id.WorkspaceID(uuid.New()), TenantID: s.other, Name: "Sales"}
	for _, w := range []models.Workspace{a, b, foreign} {
		s.Require().NoError(s.store.AddWorkspace(s.ctx, w))
	}

	got, err := s.store.Workspaces(s.ctx, s.tenant, []id.WorkspaceID{b.ID, foreign.ID, a.ID, b.ID})
	s.Require().NoError(err)
	s.Equal([]models.Workspace{b, a}, got)

	got, err = s.store.Workspaces(s.ctx, s.tenant, nil)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *PostgresStoreSuite) TestGroupsCarryAudience() {
	agents := models.Group{ID: id.GroupID(uuid.New()), TenantID: s.tenant, Name: "Tier 1", Audience: models.AccountTypeAgent}
	contacts := models.Group{ID: id.GroupID(uuid.New()), TenantID: s.tenant, Name: "VIP", Audience: models.AccountTypeContact}
	s.Require().NoError(s.store.AddGroup(s.ctx, agents))
	s.Require().NoError(s.store.AddGroup(s.ctx, contacts))

	got, err := s.store.Groups(s.ctx, s.tenant, []id.GroupID{contacts.ID, agents.ID})
	s.Require().NoError(err)
	s.Equal([]models.Group{contacts, agents}, got)

	got, err = s.store.Groups(s.ctx, s.other, []id.GroupID{contacts.ID})
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *PostgresStoreSuite) TestRoleExists() {
	role := models.Role{ID: id.RoleID(uuid.New()), TenantID: s.tenant, Name: "admin"}
	s.Require().NoError(s.store.AddRole(s.ctx, role))

	ok, err := s.store.RoleExists(s.ctx, s.tenant, role.ID)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.RoleExists(s.ctx, s.tenant, id.RoleID(uuid.New()))
	s.Require().NoError(err)
	s.False(ok)

	other := s.postgres.CreateTestTenant(s.ctx, s.T())
	ok, err = s.store.RoleExists(s.ctx, other, role.ID)
	s.Require().NoError(err)
	s.False(ok)
}
