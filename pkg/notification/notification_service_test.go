package notification

import (
	"context"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"lifecycle/domain"
	"lifecycle/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testUser = "5f0c8a86-2a8e-4b7e-b0a5-7d0c3f1b9e42"

type mockNotificationRepository struct {
	rows []*entities.ScheduledNotification
}

func (m *mockNotificationRepository) Create(_ context.Context, n *entities.ScheduledNotification) error {
	m.rows = append(m.rows, n)
	return nil
}

func (m *mockNotificationRepository) find(id string) *entities.ScheduledNotification {
	for _, n := range m.rows {
		if n.ID.String() == id {
			return n
		}
	}
	return nil
}

func (m *mockNotificationRepository) Cancel(_ context.Context, userID string, id string) error {
	if n := m.find(id); n != nil && n.UserID.String() == userID && n.Status == StatusScheduled {
		n.Status = StatusCancelled
	}
	return nil
}

func (m *mockNotificationRepository) CancelAllForUser(_ context.Context, userID string, kinds []string) error {
	for _, n := range m.rows {
		if n.UserID.String() == userID && n.Status == StatusScheduled && (len(kinds) == 0 || slices.Contains(kinds, n.Kind)) {
			n.Status = StatusCancelled
		}
	}
	return nil
}

func (m *mockNotificationRepository) ListByUser(_ context.Context, userID string, limit int) ([]*entities.ScheduledNotification, error) {
	var out []*entities.ScheduledNotification
	for _, n := range m.rows {
		if n.UserID.String() == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FireAt.After(out[j].FireAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockNotificationRepository) ClaimDue(_ context.Context, now time.Time, limit int) ([]*entities.ScheduledNotification, error) {
	var out []*entities.ScheduledNotification
	for _, n := range m.rows {
		if n.Status == StatusScheduled && !n.FireAt.After(now) && len(out) < limit {
			n.Status = StatusSending
			n.UpdatedAt = now
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepository) ReleaseStale(_ context.Context, claimedBefore time.Time) (int64, error) {
	var released int64
	for _, n := range m.rows {
		if n.Status == StatusSending && n.UpdatedAt.Before(claimedBefore) {
			n.Status = StatusScheduled
			released++
		}
	}
	return released, nil
}

func (m *mockNotificationRepository) MarkSent(_ context.Context, id string, sentAt time.Time) error {
	if n := m.find(id); n != nil {
		n.Status = StatusSent
		n.SentAt = &sentAt
	}
	return nil
}

func (m *mockNotificationRepository) MarkFailed(_ context.Context, id string, reason string) error {
	if n := m.find(id); n != nil {
		n.Status = StatusFailed
		n.FailureReason = &reason
	}
	return nil
}

func (m *mockNotificationRepository) withStatus(status string) []*entities.ScheduledNotification {
	var out []*entities.ScheduledNotification
	for _, n := range m.rows {
		if n.Status == status {
			out = append(out, n)
		}
	}
	return out
}

type mockKeyValueStore struct {
	values map[string]string
}

func (m *mockKeyValueStore) MultiGet(_ context.Context, _ string, keys []string) (map[string]string, error) {
	out := map[string]string{}
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *mockKeyValueStore) MultiSet(_ context.Context, _ string, values map[string]string) error {
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

func (m *mockKeyValueStore) MultiRemove(_ context.Context, _ string, keys []string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

type mockProductSource struct {
	products []*entities.Product
	calls    int
}

func (m *mockProductSource) GetProductsByUserID(context.Context, string) ([]*entities.Product, error) {
	m.calls++
	return m.products, nil
}

type mockSettingsSource struct {
	settings *entities.Settings
}

func (m *mockSettingsSource) GetSettingsByUserID(context.Context, string) (*entities.Settings, error) {
	if m.settings == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.settings, nil
}

type fixture struct {
	svc      *notificationService
	repo     *mockNotificationRepository
	kv       *mockKeyValueStore
	products *mockProductSource
	settings *mockSettingsSource
	now      time.Time
}

// Wednesday afternoon.
var fixedNow = time.Date(2026, 10, 21, 14, 30, 0, 0, time.UTC)

func newFixture() *fixture {
	repo := &mockNotificationRepository{}
	kv := &mockKeyValueStore{values: map[string]string{}}
	products := &mockProductSource{}
	settings := &mockSettingsSource{}
	svc := NewNotificationService(repo, NewScheduler(repo), NewHandleStore(kv), NewMutexLocker(), products, settings).(*notificationService)
	svc.now = func() time.Time { return fixedNow }
	return &fixture{svc: svc, repo: repo, kv: kv, products: products, settings: settings, now: fixedNow}
}

func productExpiring(days int) *entities.Product {
	date := fixedNow.AddDate(0, 0, days).Format("2006-01-02")
	return &entities.Product{
		ID:      uuid.New(),
		Name:    "p",
		Batches: []*entities.ProductBatch{{ID: uuid.New(), ExpiryDate: date}},
	}
}

func enabledSettings() *entities.Settings {
	return &entities.Settings{DailyExpiryAlertsEnabled: true, AlertThreshold: 7}
}

func TestRescheduleEnabled(t *testing.T) {
	f := newFixture()

	products := []*entities.Product{
		productExpiring(0), productExpiring(0), productExpiring(0),
		productExpiring(3), productExpiring(7),
		productExpiring(8), productExpiring(-2),
		{ID: uuid.New(), Name: "no batches"},
	}

	res, err := f.svc.Reschedule(context.Background(), testUser, products, enabledSettings())
	require.NoError(t, err)

	assert.True(t, res.Enabled)
	assert.Equal(t, 3, res.ExpiringToday)
	assert.Equal(t, 5, res.ExpiringWeek)
	require.Len(t, res.Scheduled, 2)

	daily, weekly := res.Scheduled[0], res.Scheduled[1]
	assert.Equal(t, KindDaily, daily.Kind)
	assert.Equal(t, "LifeCycle", daily.Title)
	assert.Equal(t, "3 products expiring today.", daily.Body)
	assert.True(t, daily.FireAt.Equal(time.Date(2026, 10, 22, 9, 0, 0, 0, time.UTC)))

	assert.Equal(t, KindWeekly, weekly.Kind)
	assert.Equal(t, "5 products expiring this week.", weekly.Body)
	assert.True(t, weekly.FireAt.Equal(time.Date(2026, 10, 26, 9, 0, 0, 0, time.UTC)))

	assert.Equal(t, daily.ID, f.kv.values[HandleKeyDaily])
	assert.Equal(t, weekly.ID, f.kv.values[HandleKeyWeekly])

	for _, n := range f.repo.rows {
		assert.Equal(t, Channel, n.Channel)
		assert.Equal(t, Sound, n.Sound)
	}
}

func TestRescheduleReplacesPreviousSummaries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.svc.Reschedule(ctx, testUser, nil, enabledSettings())
	require.NoError(t, err)
	assert.Equal(t, "No products expiring today.", first.Scheduled[0].Body)

	second, err := f.svc.Reschedule(ctx, testUser, []*entities.Product{productExpiring(0)}, enabledSettings())
	require.NoError(t, err)
	assert.Equal(t, "1 product expiring today.", second.Scheduled[0].Body)
	assert.Equal(t, "1 product expiring this week.", second.Scheduled[1].Body)

	assert.Len(t, f.repo.withStatus(StatusCancelled), 2)
	pending := f.repo.withStatus(StatusScheduled)
	require.Len(t, pending, 2)
	assert.Equal(t, second.Scheduled[0].ID, pending[0].ID.String())
	assert.Equal(t, second.Scheduled[1].ID, pending[1].ID.String())
}

func TestRescheduleDisabledCancelsAndSchedulesNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Reschedule(ctx, testUser, nil, enabledSettings())
	require.NoError(t, err)
	require.Len(t, f.repo.withStatus(StatusScheduled), 2)

	res, err := f.svc.Reschedule(ctx, testUser, []*entities.Product{productExpiring(0)}, &entities.Settings{DailyExpiryAlertsEnabled: false})
	require.NoError(t, err)

	assert.False(t, res.Enabled)
	assert.Empty(t, res.Scheduled)
	assert.Empty(t, f.repo.withStatus(StatusScheduled))
	assert.Len(t, f.repo.withStatus(StatusCancelled), 2)
	assert.Empty(t, f.kv.values)
}

func TestRescheduleDisabledCancelsAdHocAlerts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.ScheduleExpiryAlert(ctx, testUser, domain.ExpiryAlertRequest{Title: "Milk", Body: "soon"})
	require.NoError(t, err)

	_, err = f.svc.Reschedule(ctx, testUser, nil, &entities.Settings{DailyExpiryAlertsEnabled: false})
	require.NoError(t, err)
	assert.Empty(t, f.repo.withStatus(StatusScheduled))
}

func TestRescheduleSweepsSummariesWithoutHandles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	stray, err := f.svc.scheduler.Schedule(ctx, Request{UserID: testUser, Kind: KindDaily, Title: Title, FireAt: fixedNow.Add(time.Hour)})
	require.NoError(t, err)
	alert, err := f.svc.ScheduleExpiryAlert(ctx, testUser, domain.ExpiryAlertRequest{Title: "Milk", Body: "soon"})
	require.NoError(t, err)

	res, err := f.svc.Reschedule(ctx, testUser, nil, enabledSettings())
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, f.repo.find(stray.ID.String()).Status)
	assert.Equal(t, StatusScheduled, f.repo.find(alert.ID).Status)

	pending := f.repo.withStatus(StatusScheduled)
	require.Len(t, pending, 3)
	assert.Equal(t, res.Scheduled[0].ID, f.kv.values[HandleKeyDaily])
}

func TestConcurrentReschedulesLeaveTwoSummaries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Reschedule(ctx, testUser, []*entities.Product{productExpiring(1)}, enabledSettings())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	pending := f.repo.withStatus(StatusScheduled)
	require.Len(t, pending, 2)
	kinds := []string{pending[0].Kind, pending[1].Kind}
	assert.ElementsMatch(t, []string{KindDaily, KindWeekly}, kinds)
	assert.ElementsMatch(t,
		[]string{pending[0].ID.String(), pending[1].ID.String()},
		[]string{f.kv.values[HandleKeyDaily], f.kv.values[HandleKeyWeekly]})
}

func TestMutexLockerSerialisesPerUser(t *testing.T) {
	locker := NewMutexLocker().(*mutexLocker)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		running int
		maxSeen int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = locker.WithUserLock(ctx, testUser, func(context.Context) error {
				mu.Lock()
				running++
				if running > maxSeen {
					maxSeen = running
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, locker.locks)
}

func TestRescheduleForUserWithoutSettingsRow(t *testing.T) {
	f := newFixture()
	f.products.products = []*entities.Product{productExpiring(0)}

	res, err := f.svc.RescheduleForUser(context.Background(), testUser)
	require.NoError(t, err)

	assert.False(t, res.Enabled)
	assert.Empty(t, f.repo.rows)
	assert.Equal(t, 0, f.products.calls)
}

func TestRescheduleForUserLoadsProducts(t *testing.T) {
	f := newFixture()
	f.settings.settings = enabledSettings()
	f.products.products = []*entities.Product{productExpiring(0), productExpiring(2)}

	res, err := f.svc.RescheduleForUser(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, 1, f.products.calls)
	assert.Equal(t, 1, res.ExpiringToday)
	assert.Equal(t, 2, res.ExpiringWeek)
}

func TestSendTest(t *testing.T) {
	f := newFixture()

	res, err := f.svc.SendTest(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, KindTest, res.Kind)
	assert.Equal(t, StatusScheduled, res.Status)
	assert.True(t, res.FireAt.Equal(fixedNow.Add(3*time.Second)))
}

func TestScheduleExpiryAlert(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.ScheduleExpiryAlert(ctx, testUser, domain.ExpiryAlertRequest{Title: "Milk", Body: "3 items expire today"})
	require.NoError(t, err)
	assert.Equal(t, KindExpiryAlert, res.Kind)
	assert.True(t, res.FireAt.Equal(fixedNow.Add(time.Second)))

	in := 60
	res, err = f.svc.ScheduleExpiryAlert(ctx, testUser, domain.ExpiryAlertRequest{Title: "Milk", Body: "later", InSeconds: &in})
	require.NoError(t, err)
	assert.True(t, res.FireAt.Equal(fixedNow.Add(time.Minute)))
}

func TestScheduleRejectsBadUserID(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SendTest(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrParseUUID)
}

func TestListNotificationsNewestFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Reschedule(ctx, testUser, nil, enabledSettings())
	require.NoError(t, err)
	_, err = f.svc.SendTest(ctx, testUser)
	require.NoError(t, err)

	list, err := f.svc.ListNotifications(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, KindWeekly, list[0].Kind)
	assert.Equal(t, KindTest, list[2].Kind)
}
