package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openhire/hireboard/internal/board/db"
	e "github.com/openhire/hireboard/internal/board/errors"
	"github.com/openhire/hireboard/internal/board/events"
	"github.com/openhire/hireboard/internal/board/identity"
	"github.com/openhire/hireboard/internal/board/models"
	"github.com/openhire/hireboard/internal/board/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MockProducer is a test double for the Kafka producer.
type MockProducer struct {
	mu             sync.Mutex
	producedEvents []events.Event
	wg             *sync.WaitGroup
}

// Produce records the event and signals the wait group.
func (m *MockProducer) Produce(eventType events.EventType, payload *events.Payload) {
	m.mu.Lock()
	m.producedEvents = append(m.producedEvents, events.Event{Type: eventType, Payload: payload})
	m.mu.Unlock()
	if m.wg != nil {
		m.wg.Done()
	}
}

func (m *MockProducer) Events() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]events.Event(nil), m.producedEvents...)
}

// testEnv wires the services against in-memory SQLite, the in-process
// object store and the mock producer.
type testEnv struct {
	repo     *db.Repository
	store    *storage.Memory
	producer *MockProducer
	guard    *Guard

	jobs          *JobService
	applications  *ApplicationService
	companies     *CompanyService
	profiles      *ProfileService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to open test database")
	repo, err := db.New(gdb)
	require.NoError(t, err, "failed to migrate test database")

	logger := zaptest.NewLogger(t)
	store := storage.NewMemory()
	producer := &MockProducer{wg: new(sync.WaitGroup)}
	guard := NewGuard(identity.NewResolver(repo, logger))

	return &testEnv{
		repo:          repo,
		store:         store,
		producer:      producer,
		guard:         guard,
		jobs:          NewJobService(repo, guard, producer, logger),
		applications:  NewApplicationService(repo, guard, store, producer, logger),
		companies:     NewCompanyService(repo, guard, store, logger),
		profiles:      NewProfileService(repo, store, nil, logger),
		notifications: NewNotificationService(repo, guard, logger),
	}
}

// seedProfile inserts a profile for an external user id.
func (env *testEnv) seedProfile(t *testing.T, userID string) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		ID:       uuid.New(),
		UserID:   userID,
		FullName: "Seeded User",
		Email:    userID + "@example.test",
	}
	require.NoError(t, env.repo.CreateProfile(context.Background(), profile))
	return profile
}

// seedCompany inserts a company with the given profile as a member.
func (env *testEnv) seedCompany(t *testing.T, profileID uuid.UUID, role models.Role) *models.Company {
	t.Helper()
	company := &models.Company{
		ID:   uuid.New(),
		Name: "Company " + uuid.NewString(),
	}
	require.NoError(t, env.repo.CreateCompany(context.Background(), company))
	require.NoError(t, env.repo.CreateMember(context.Background(), &models.CompanyMember{
		ID:        uuid.New(),
		CompanyID: company.ID,
		ProfileID: profileID,
		Role:      role,
		IsActive:  true,
	}))
	return company
}

// seedSubscription inserts an active subscription for a company.
func (env *testEnv) seedSubscription(t *testing.T, companyID uuid.UUID, limit, used int, endsIn time.Duration) *models.Subscription {
	t.Helper()
	now := time.Now()
	sub := &models.Subscription{
		ID:            uuid.New(),
		CompanyID:     companyID,
		PlanType:      "basic",
		JobPostsLimit: limit,
		JobPostsUsed:  used,
		StartDate:     now,
		EndDate:       now.Add(endsIn),
		IsActive:      true,
	}
	require.NoError(t, env.repo.CreateSubscription(context.Background(), sub))
	return sub
}

// seedRecruiter returns a user id with a profile, a company membership
// and a valid subscription, ready to post jobs.
func (env *testEnv) seedRecruiter(t *testing.T, role models.Role) (string, *models.Company) {
	t.Helper()
	userID := "user-" + uuid.NewString()
	profile := env.seedProfile(t, userID)
	company := env.seedCompany(t, profile.ID, role)
	env.seedSubscription(t, company.ID, 5, 0, 30*24*time.Hour)
	return userID, company
}

func TestGuard_RequireMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	userID := "user-" + uuid.NewString()
	_, err := env.guard.RequireMember(ctx, userID)
	assert.ErrorIs(t, err, e.ErrNoProfile, "unknown user should fail with ErrNoProfile")

	profile := env.seedProfile(t, userID)
	_, err = env.guard.RequireMember(ctx, userID)
	assert.ErrorIs(t, err, e.ErrNoMembership, "profile without company should fail with ErrNoMembership")

	company := env.seedCompany(t, profile.ID, models.RoleRecruiter)

	principal, err := env.guard.RequireMember(ctx, userID)
	assert.NoError(t, err, "any-role check should pass for an active member")
	assert.Equal(t, company.ID, principal.CompanyID, "principal company should match")

	_, err = env.guard.RequireMember(ctx, userID, models.RoleAdmin)
	assert.ErrorIs(t, err, e.ErrForbidden, "recruiter should not pass an admin-only check")

	principal, err = env.guard.RequireMember(ctx, userID, models.RoleAdmin, models.RoleRecruiter)
	assert.NoError(t, err, "recruiter should pass a recruiter-or-admin check")
	assert.Equal(t, models.RoleRecruiter, principal.Role, "principal role should match")
}

// TestEventHandler verifies the consumer callback keeps the cached job
// counter in step with job lifecycle events.
func TestEventHandler(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	company := &models.Company{ID: uuid.New(), Name: "Counter Co"}
	require.NoError(t, env.repo.CreateCompany(ctx, company))

	handler := NewEventHandler(env.repo, logger)

	require.NoError(t, handler(ctx, events.Event{
		Type:    events.JobCreated,
		Payload: &events.Payload{CompanyID: company.ID},
	}))
	require.NoError(t, handler(ctx, events.Event{
		Type:    events.JobCreated,
		Payload: &events.Payload{CompanyID: company.ID},
	}))

	got, err := env.repo.GetCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalJob, "two created events should increment twice")

	require.NoError(t, handler(ctx, events.Event{
		Type:    events.JobDeleted,
		Payload: &events.Payload{CompanyID: company.ID},
	}))
	got, err = env.repo.GetCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalJob, "a deleted event should decrement")

	// Events for vanished companies and non-job events are ignored.
	assert.NoError(t, handler(ctx, events.Event{
		Type:    events.JobDeleted,
		Payload: &events.Payload{CompanyID: uuid.New()},
	}), "missing company should not error")
	assert.NoError(t, handler(ctx, events.Event{
		Type:    events.ApplicationReceived,
		Payload: &events.Payload{CompanyID: company.ID},
	}), "application events should be ignored")
	assert.NoError(t, handler(ctx, events.Event{Type: events.JobCreated}), "nil payload should be ignored")
}
