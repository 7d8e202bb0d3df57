package notification

import (
	"context"
	"time"

	"lifecycle/domain"
	"lifecycle/entities"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Request struct {
	UserID string
	Kind   string
	Title  string
	Body   string
	FireAt time.Time
}

// Scheduler books a notification for later delivery and returns an opaque
// handle that can be used to cancel it.
type Scheduler interface {
	Schedule(ctx context.Context, req Request) (*entities.ScheduledNotification, error)
	Cancel(ctx context.Context, userID string, handle string) error
	// CancelAll cancels every pending notification of the given kinds, or
	// of any kind when none are given.
	CancelAll(ctx context.Context, userID string, kinds ...string) error
}

type dbScheduler struct {
	notificationRepository NotificationRepository
}

// NewScheduler stores notifications as rows that the Dispatcher delivers.
func NewScheduler(notificationRepository NotificationRepository) Scheduler {
	return &dbScheduler{notificationRepository: notificationRepository}
}

func (s *dbScheduler) Schedule(ctx context.Context, req Request) (*entities.ScheduledNotification, error) {
	userUUID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	n := &entities.ScheduledNotification{
		ID:      uuid.New(),
		UserID:  userUUID,
		Kind:    req.Kind,
		Channel: Channel,
		Title:   req.Title,
		Body:    req.Body,
		Sound:   Sound,
		FireAt:  req.FireAt,
		Status:  StatusScheduled,
	}
	if err := s.notificationRepository.Create(ctx, n); err != nil {
		return nil, errors.Wrapf(err, "schedule %s notification", req.Kind)
	}
	return n, nil
}

func (s *dbScheduler) Cancel(ctx context.Context, userID string, handle string) error {
	if _, err := uuid.Parse(handle); err != nil {
		return nil
	}
	return errors.Wrap(s.notificationRepository.Cancel(ctx, userID, handle), "cancel notification")
}

func (s *dbScheduler) CancelAll(ctx context.Context, userID string, kinds ...string) error {
	return errors.Wrap(s.notificationRepository.CancelAllForUser(ctx, userID, kinds), "cancel notifications")
}

// Handles are the identifiers of the pending daily and weekly summaries.
type Handles struct {
	Daily  string
	Weekly string
}

type HandleStore interface {
	Load(ctx context.Context, userID string) (Handles, error)
	Save(ctx context.Context, userID string, h Handles) error
	Clear(ctx context.Context, userID string) error
}

// KeyValueStore is the subset of the preference service the handle store
// needs.
type KeyValueStore interface {
	MultiGet(ctx context.Context, userID string, keys []string) (map[string]string, error)
	MultiSet(ctx context.Context, userID string, values map[string]string) error
	MultiRemove(ctx context.Context, userID string, keys []string) error
}

type kvHandleStore struct {
	store KeyValueStore
}

func NewHandleStore(store KeyValueStore) HandleStore {
	return &kvHandleStore{store: store}
}

func (h *kvHandleStore) Load(ctx context.Context, userID string) (Handles, error) {
	values, err := h.store.MultiGet(ctx, userID, []string{HandleKeyDaily, HandleKeyWeekly})
	if err != nil {
		return Handles{}, err
	}
	return Handles{Daily: values[HandleKeyDaily], Weekly: values[HandleKeyWeekly]}, nil
}

func (h *kvHandleStore) Save(ctx context.Context, userID string, handles Handles) error {
	return h.store.MultiSet(ctx, userID, map[string]string{
		HandleKeyDaily:  handles.Daily,
		HandleKeyWeekly: handles.Weekly,
	})
}

func (h *kvHandleStore) Clear(ctx context.Context, userID string) error {
	return h.store.MultiRemove(ctx, userID, []string{HandleKeyDaily, HandleKeyWeekly})
}
