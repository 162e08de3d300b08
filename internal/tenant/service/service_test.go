package service

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks TenantStore,StoreTx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	tenantmetrics "tenantry/internal/tenant/metrics"
	"tenantry/internal/tenant/models"
	"tenantry/internal/tenant/service/mocks"
	tenantstore "tenantry/internal/tenant/store/tenant"
	"tenantry/pkg/changeset"
	id "tenantry/pkg/domain"
	dErrors "tenantry/pkg/domain-errors"
	"tenantry/pkg/platform/audit"
	"tenantry/pkg/platform/sentinel"
	"tenantry/pkg/requestcontext"
	"tenantry/pkg/session"
	"tenantry/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockStore *mocks.MockTenantStore
	store     *tenantstore.InMemory
	recorder  *audit.Recorder
	metrics   *tenantmetrics.Metrics
	registry  *prometheus.Registry
	service   *Service
	ctx       context.Context
	now       time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockTenantStore(s.ctrl)
	s.store = tenantstore.NewInMemory()
	s.recorder = audit.NewRecorder()
	s.registry = prometheus.NewRegistry()
	s.metrics = tenantmetrics.NewWithRegisterer(s.registry)
	s.service = s.newService(s.store)
	s.now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) newService(store TenantStore) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store,
		WithLogger(logger),
		WithAuditLogger(audit.NewLogger(logger, s.recorder)),
		WithMetrics(s.metrics),
	)
}

func (s *ServiceSuite) manager(tenantID id.TenantID) *session.Caller {
	return testutil.AgentCaller(tenantID, session.CapabilityManageTenant)
}

func (s *ServiceSuite) createTenant(name string) *models.Tenant {
	t, err := s.service.CreateTenant(s.ctx, map[string]any{"name": name})
	s.Require().NoError(err)
	return t
}

func (s *ServiceSuite) counter(name string) float64 {
	families, err := s.registry.Gather()
	s.Require().NoError(err)
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func (s *ServiceSuite) actions() []audit.Action {
	var out []audit.Action
	for _, e := range s.recorder.Events() {
		out = append(out, e.Action)
	}
	return out
}

func (s *ServiceSuite) TestCreateTenant() {
	s.Run("persists input with defaults", func() {
		t, err := s.service.CreateTenant(s.ctx, map[string]any{"name": "Acme"})

		s.Require().NoError(err)
		s.False(t.ID.IsNil())
		s.Equal("Acme", t.Name)
		s.Equal(models.TenantStatusActive, t.Status)
		s.Equal(models.TenantTypeTrial, t.Type)
		s.Nil(t.DeletedAt)
		s.Equal(s.now, t.CreatedAt)

		stored, err := s.store.FindByID(s.ctx, t.ID)
		s.Require().NoError(err)
		s.Equal(t, stored)
		s.Equal(float64(1), s.counter("tenantry_tenants_created_total"))
	})

	s.Run("explicit status and type are kept", func() {
		t, err := s.service.CreateTenant(s.ctx, map[string]any{"name": "Initech", "status": "suspended", "type": "enterprise"})

		s.Require().NoError(err)
		s.Equal(models.TenantStatusSuspended, t.Status)
		s.Equal(models.TenantTypeEnterprise, t.Type)
	})

	s.Run("creating a deleted tenant stamps deletion time", func() {
		t, err := s.service.CreateTenant(s.ctx, map[string]any{"name": "Gone Inc", "status": "deleted"})

		s.Require().NoError(err)
		s.Require().NotNil(t.DeletedAt)
		s.Equal(s.now, *t.DeletedAt)
	})

	s.Run("all violations are reported together", func() {
		_, err := s.service.CreateTenant(s.ctx, map[string]any{"status": "archived", "type": "gold"})

		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Len(dErrors.Fields(err), 3)
	})

	s.Run("duplicate name maps onto the name field", func() {
		_, err := s.service.CreateTenant(s.ctx, map[string]any{"name": "acme"})

		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal([]dErrors.FieldError{{Field: "name", Rule: "unique", Message: "has already been taken"}}, dErrors.Fields(err))
	})
}

func (s *ServiceSuite) TestCreateTenantStoreFailure() {
	svc := s.newService(s.mockStore)
	s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

	_, err := svc.CreateTenant(s.ctx, map[string]any{"name": "Acme"})

	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestAuthorizationPrecedesExistence() {
	svc := s.newService(s.mockStore)
	tenantID := id.TenantID(uuid.New())
	denied := map[string]*session.Caller{
		"no session":        nil,
		"contact":           testutil.ContactCaller(tenantID, session.CapabilityManageTenant),
		"agent without cap": testutil.AgentCaller(tenantID),
		"unknown class":     {TenantID: tenantID, Capabilities: []session.Capability{session.CapabilityManageTenant}, AccountClass: "robot"},
	}

	for name, caller := range denied {
		s.Run(name, func() {
			_, err := svc.GetTenant(s.ctx, caller)
			s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "get: %v", err)

			_, err = svc.ModifyTenant(s.ctx, map[string]any{"name": "x"}, caller)
			s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "modify: %v", err)

			_, err = svc.DeleteTenant(s.ctx, caller)
			s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "delete: %v", err)

			_, err = svc.EnableTenant(s.ctx, caller)
			s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "enable: %v", err)
		})
	}
	// gomock fails the test if the store was touched.
	s.Equal(float64(4*len(denied)), s.counter("tenantry_tenant_authorization_denied_total"))
}

func (s *ServiceSuite) TestGetTenant() {
	s.Run("returns the caller's tenant", func() {
		t := s.createTenant("Acme")

		got, err := s.service.GetTenant(s.ctx, s.manager(t.ID))

		s.Require().NoError(err)
		s.Equal(t, got)
	})

	s.Run("unknown tenant after authorization is not found", func() {
		_, err := s.service.GetTenant(s.ctx, s.manager(id.TenantID(uuid.New())))

		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestUpdateTenant() {
	s.Run("applies attrs against the loaded tenant", func() {
		t := s.createTenant("Acme")

		got, err := s.service.UpdateTenant(s.ctx, map[string]any{"name": "Acme Corp", "type": "basic"}, s.manager(t.ID))

		s.Require().NoError(err)
		s.Equal("Acme Corp", got.Name)
		s.Equal(models.TenantTypeBasic, got.Type)
		s.Equal(t.CreatedAt, got.CreatedAt)
	})

	s.Run("validation failure leaves the tenant untouched", func() {
		t := s.createTenant("Globex")

		_, err := s.service.UpdateTenant(s.ctx, map[string]any{"status": "gone", "name": ""}, s.manager(t.ID))

		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Len(dErrors.Fields(err), 2)
		stored, _ := s.store.FindByID(s.ctx, t.ID)
		s.Equal("Globex", stored.Name)
	})

	s.Run("renaming onto another tenant is a name error", func() {
		s.createTenant("Umbrella")
		t := s.createTenant("Hooli")

		_, err := s.service.UpdateTenant(s.ctx, map[string]any{"name": "UMBRELLA"}, s.manager(t.ID))

		s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("name", dErrors.Fields(err)[0].Field)
	})

	s.Run("deleted_at cannot be set directly", func() {
		t := s.createTenant("Stark")

		got, err := s.service.UpdateTenant(s.ctx, map[string]any{"deleted_at": "2020-01-01T00:00:00Z"}, s.manager(t.ID))

		s.Require().NoError(err)
		s.Equal(models.TenantStatusActive, got.Status)
		s.Nil(got.DeletedAt)
	})
}

func (s *ServiceSuite) TestDeleteEnableRoundTrip() {
	t := s.createTenant("Wayne")
	caller := s.manager(t.ID)

	deleted, err := s.service.DeleteTenant(s.ctx, caller)
	s.Require().NoError(err)
	s.Equal(models.TenantStatusDeleted, deleted.Status)
	s.Require().NotNil(deleted.DeletedAt)
	s.Equal(s.now, *deleted.DeletedAt)

	later := requestcontext.WithTime(context.Background(), s.now.Add(time.Hour))
	again, err := s.service.DeleteTenant(later, caller)
	s.Require().NoError(err)
	s.Equal(s.now, *again.DeletedAt, "repeat delete keeps the first stamp")

	enabled, err := s.service.EnableTenant(s.ctx, caller)
	s.Require().NoError(err)
	s.Equal(models.TenantStatusActive, enabled.Status)
	s.Nil(enabled.DeletedAt)

	enabledAgain, err := s.service.EnableTenant(s.ctx, caller)
	s.Require().NoError(err)
	s.Equal(models.TenantStatusActive, enabledAgain.Status)

	s.Equal([]audit.Action{
		audit.ActionTenantCreated,
		audit.ActionTenantDeleted,
		audit.ActionTenantUpdated,
		audit.ActionTenantEnabled,
		audit.ActionTenantUpdated,
	}, s.actions())
}

func (s *ServiceSuite) TestModifyTenantRunsInsideTx() {
	mockTx := mocks.NewMockStoreTx(s.ctrl)
	svc := New(s.mockStore, WithTx(mockTx))
	t := models.NewTenant(id.TenantID(uuid.New()), s.now)
	t.Name = "Acme"

	gomock.InOrder(
		mockTx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }),
	)
	s.mockStore.EXPECT().FindByID(gomock.Any(), t.ID).Return(t, nil)
	s.mockStore.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, next *models.Tenant) error {
			s.Equal(models.TenantStatusDeleted, next.Status)
			return nil
		})

	_, err := svc.DeleteTenant(s.ctx, s.manager(t.ID))

	s.Require().NoError(err)
}

func (s *ServiceSuite) TestModifyTenantStoreErrors() {
	t := models.NewTenant(id.TenantID(uuid.New()), s.now)
	t.Name = "Acme"
	svc := s.newService(s.mockStore)

	s.Run("update reports not found", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), t.ID).Return(t, nil)
		s.mockStore.EXPECT().Update(gomock.Any(), gomock.Any()).Return(sentinel.ErrNotFound)

		_, err := svc.UpdateTenant(s.ctx, map[string]any{"name": "New"}, s.manager(t.ID))

		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unregistered constraint is internal", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), t.ID).Return(t, nil)
		s.mockStore.EXPECT().Update(gomock.Any(), gomock.Any()).Return(
			&changeset.ConstraintViolation{Kind: changeset.Unique, Name: "tenants_pkey"})

		_, err := svc.UpdateTenant(s.ctx, map[string]any{"name": "New"}, s.manager(t.ID))

		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
