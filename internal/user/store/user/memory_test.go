package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"tenantry/internal/user/models"
	"tenantry/internal/user/query"
	"tenantry/internal/user/store/directory"
	"tenantry/pkg/changeset"
	id "tenantry/pkg/domain"
	"tenantry/pkg/platform/sentinel"
	"tenantry/pkg/testutil"
)

type InMemoryStoreSuite struct {
	suite.Suite
	ctx    context.Context
	dir    *directory.InMemory
	store  *InMemory
	tenant id.TenantID
	role   id.RoleID
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.dir = directory.NewInMemory()
	s.store = NewInMemory(s.dir)
	s.tenant = id.TenantID(uuid.New())
	s.role = id.RoleID(uuid.New())
	s.Require().NoError(s.dir.AddRole(s.ctx, models.Role{ID: s.role, TenantID: s.tenant, Name: "agent"}))
}

func (s *InMemoryStoreSuite) newUser(name, email string) *models.User {
	now := time.Now()
	u := models.NewUser(s.tenant)
	u.ID = id.UserID(uuid.New())
	u.RoleID = s.role
	u.Type = models.AccountTypeAgent
	u.Name = name
	u.Email = email
	u.CreatedAt, u.UpdatedAt = now, now
	return u
}

func (s *InMemoryStoreSuite) requireViolation(err error, kind changeset.ConstraintKind, name string) {
	var violation *changeset.ConstraintViolation
	s.Require().True(errors.As(err, &violation), "expected constraint violation, got %v", err)
	s.Equal(kind, violation.Kind)
	s.Equal(name, violation.Name)
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	u := s.newUser("Ada", "ada@example.com")
	assoc := models.Associations{WorkspaceIDs: []id.WorkspaceID{id.WorkspaceID(uuid.New())}}

	s.Require().NoError(s.store.Create(s.ctx, u, assoc))

	found, err := s.store.FindByID(s.ctx, s.tenant, u.ID)
	s.Require().NoError(err)
	s.Equal(u, found)

	stored, err := s.store.Associations(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(assoc, stored)
}

func (s *InMemoryStoreSuite) TestFindIsTenantScoped() {
	u := s.newUser("Ada", "ada@example.com")
	s.Require().NoError(s.store.Create(s.ctx, u, models.Associations{}))

	_, err := s.store.FindByID(s.ctx, id.TenantID(uuid.New()), u.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestEmailUniqueness() {
	s.Require().NoError(s.store.Create(s.ctx, s.newUser("Ada", "ada@example.com"), models.Associations{}))

	s.Run("create with different case", func() {
		s.requireViolation(s.store.Create(s.ctx, s.newUser("Other", "ADA@example.com"), models.Associations{}), changeset.Unique, models.ConstraintEmail)
	})

	s.Run("update onto a taken email", func() {
		other := s.newUser("Bob", "bob@example.com")
		s.Require().NoError(s.store.Create(s.ctx, other, models.Associations{}))
		other.Email = "Ada@Example.com"
		s.requireViolation(s.store.Update(s.ctx, other, models.Associations{}), changeset.Unique, models.ConstraintEmail)
	})
}

func (s *InMemoryStoreSuite) TestDuplicateID() {
	u := s.newUser("Ada", "ada@example.com")
	s.Require().NoError(s.store.Create(s.ctx, u, models.Associations{}))

	again := s.newUser("Ada", "ada2@example.com")
	again.ID = u.ID
	s.requireViolation(s.store.Create(s.ctx, again, models.Associations{}), changeset.Unique, models.ConstraintPrimary)
}

func (s *InMemoryStoreSuite) TestUnknownRole() {
	u := s.newUser("Ada", "ada@example.com")
	u.RoleID = id.RoleID(uuid.New())
	s.requireViolation(s.store.Create(s.ctx, u, models.Associations{}), changeset.ForeignKey, models.ConstraintRole)
}

func (s *InMemoryStoreSuite) TestRoleOfAnotherTenant() {
	foreign := id.RoleID(uuid.New())
	s.Require().NoError(s.dir.AddRole(s.ctx, models.Role{ID: foreign, TenantID: id.TenantID(uuid.New()), Name: "agent"}))

	u := s.newUser("Ada", "ada@example.com")
	u.RoleID = foreign
	s.requireViolation(s.store.Create(s.ctx, u, models.Associations{}), changeset.ForeignKey, models.ConstraintRole)
}

func (s *InMemoryStoreSuite) TestUpdateReplacesAssociations() {
	u := s.newUser("Ada", "ada@example.com")
	first := id.GroupID(uuid.New())
	s.Require().NoError(s.store.Create(s.ctx, u, models.Associations{GroupIDs: []id.GroupID{first}}))

	second := id.GroupID(uuid.New())
	u.Email = "ada.lovelace@example.com"
	s.Require().NoError(s.store.Update(s.ctx, u, models.Associations{GroupIDs: []id.GroupID{second}}))

	stored, err := s.store.Associations(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal([]id.GroupID{second}, stored.GroupIDs)

	// The old email is released.
	s.NoError(s.store.Create(s.ctx, s.newUser("Imposter", "ada@example.com"), models.Associations{}))
}

func (s *InMemoryStoreSuite) TestUpdateMissing() {
	s.ErrorIs(s.store.Update(s.ctx, s.newUser("Ghost", "ghost@example.com"), models.Associations{}), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestSoftDeleteHidesUser() {
	u := s.newUser("Ada", "ada@example.com")
	s.Require().NoError(s.store.Create(s.ctx, u, models.Associations{}))

	u.SoftDelete(time.Now())
	s.Require().NoError(s.store.SoftDelete(s.ctx, u))

	_, err := s.store.FindByID(s.ctx, s.tenant, u.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	listed, err := s.store.List(s.ctx, s.tenant, query.New(query.Filter{}, query.Sort{}, query.Page{}))
	s.Require().NoError(err)
	s.Empty(listed)

	// Deleted users still hold their email.
	s.requireViolation(s.store.Create(s.ctx, s.newUser("Ada", "ada@example.com"), models.Associations{}), changeset.Unique, models.ConstraintEmail)
}

func (s *InMemoryStoreSuite) TestList() {
	ws := id.WorkspaceID(uuid.New())
	for i, name := range []string{"carol", "Alice", "bob", "dave"} {
		assoc := models.Associations{}
		if i%2 == 0 {
			assoc.WorkspaceIDs = []id.WorkspaceID{ws, id.WorkspaceID(uuid.New())}
		}
		s.Require().NoError(s.store.Create(s.ctx, s.newUser(name, name+"@example.com"), assoc))
	}
	foreign := s.newUser("Zed", "zed@example.com")
	foreign.TenantID = id.TenantID(uuid.New())
	s.Require().NoError(s.store.Create(s.ctx, foreign, models.Associations{}))

	s.Run("default sort and tenant scope", func() {
		got, err := s.store.List(s.ctx, s.tenant, query.New(query.Filter{}, query.Sort{}, query.Page{}))
		s.Require().NoError(err)
		s.Equal([]string{"Alice", "bob", "carol", "dave"}, userNames(got))
	})

	s.Run("workspace filter returns each user once", func() {
		f := query.ParseFilter(map[string]any{"workspace_ids": []string{ws.String()}})
		got, err := s.store.List(s.ctx, s.tenant, query.New(f, query.Sort{}, query.Page{}))
		s.Require().NoError(err)
		s.Equal([]string{"bob", "carol"}, userNames(got))
	})

	s.Run("page window", func() {
		got, err := s.store.List(s.ctx, s.tenant, query.New(query.Filter{}, query.ParseSort("name", "desc"), query.Page{Limit: 2, Offset: 1}))
		s.Require().NoError(err)
		s.Equal([]string{"carol", "bob"}, userNames(got))
	})
}

func (s *InMemoryStoreSuite) TestConcurrentCreateSameEmail() {
	result := testutil.RunConcurrent(20, func(int) error {
		u := testutil.NewUserBuilder().
			WithID(id.UserID(uuid.New())).
			WithTenantID(s.tenant).
			WithRoleID(s.role).
			WithEmail("race@example.com").
			Build()
		return s.store.Create(s.ctx, u, models.Associations{})
	})

	s.Equal(int32(1), result.Successes)
	s.Equal(int32(19), result.Conflicts)
	s.Zero(result.Errors)
}

func userNames(users []*models.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Name
	}
	return out
}

func TestNilRoleCheckerSkipsReferenceCheck(t *testing.T) {
	store := NewInMemory(nil)
	u := models.NewUser(id.TenantID(uuid.New()))
	u.ID = id.UserID(uuid.New())
	u.RoleID = id.RoleID(uuid.New())
	u.Email = "x@example.com"

	require.NoError(t, store.Create(context.Background(), u, models.Associations{}))
	found, err := store.FindByID(context.Background(), u.TenantID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.RoleID, found.RoleID)
}
