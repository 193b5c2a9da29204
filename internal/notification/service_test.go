package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carenow-backend/internal/metrics"
	"carenow-backend/internal/models"
	"carenow-backend/internal/repository"
	"carenow-backend/internal/repository/memory"
	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/logger"
)

type call struct {
	kind, target, title string
}

type recordingMessenger struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (m *recordingMessenger) record(kind, target, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call{kind, target, title})
	return m.err
}

func (m *recordingMessenger) SendToToken(_ context.Context, token, title, _ string, _ map[string]string) error {
	return m.record("token", token, title)
}

func (m *recordingMessenger) SendToTopic(_ context.Context, topic, title, _ string, _ map[string]string) error {
	return m.record("topic", topic, title)
}

func (m *recordingMessenger) Subscribe(_ context.Context, tokens []string, topic string) error {
	return m.record("subscribe", topic, tokens[0])
}

func (m *recordingMessenger) Unsubscribe(_ context.Context, tokens []string, topic string) error {
	return m.record("unsubscribe", topic, tokens[0])
}

func setup(t *testing.T) (*Service, *recordingMessenger, repository.Repositories, *models.User) {
	t.Helper()
	repos := memory.NewStore().Repositories()
	user := &models.User{FullName: "Ana", Email: "ana@example.com", RoleID: models.RoleClient, FCMToken: "tok-1"}
	require.NoError(t, repos.Users.Create(context.Background(), user))

	m := &recordingMessenger{}
	return NewService(repos.Notifications, repos.Users, m, metrics.New(), logger.Nop()), m, repos, user
}

func TestNotifyStoresAndPushes(t *testing.T) {
	ctx := context.Background()
	svc, m, _, user := setup(t)

	require.NoError(t, svc.Notify(ctx, user.ID, models.NotificationBooking, "Booking confirmed", "See you soon", map[string]string{"booking_id": "b1"}))

	inbox, err := svc.List(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "b1", inbox[0].Data["booking_id"])
	assert.False(t, inbox[0].IsRead)
	assert.Equal(t, []call{{"token", "tok-1", "Booking confirmed"}}, m.calls)
}

func TestNotifyRespectsPreferences(t *testing.T) {
	ctx := context.Background()
	svc, m, _, user := setup(t)

	// promotions are off by default
	require.NoError(t, svc.Notify(ctx, user.ID, models.NotificationPromotion, "Promo", "50% off", nil))
	assert.Empty(t, m.calls)

	off := false
	_, err := svc.UpdatePreferences(ctx, user.ID, models.UpdatePreferenceInput{BookingUpdates: &off})
	require.NoError(t, err)
	require.NoError(t, svc.Notify(ctx, user.ID, models.NotificationBooking, "Booking confirmed", "", nil))
	assert.Empty(t, m.calls)

	// still in the inbox
	inbox, err := svc.List(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Len(t, inbox, 2)

	// system messages ignore preferences
	require.NoError(t, svc.Notify(ctx, user.ID, models.NotificationSystem, "Maintenance", "", nil))
	assert.Len(t, m.calls, 1)
}

func TestPushFailureIsNotReturned(t *testing.T) {
	svc, m, _, user := setup(t)
	m.err = errors.New("unregistered token")

	assert.NoError(t, svc.Notify(context.Background(), user.ID, models.NotificationBooking, "t", "b", nil))
}

func TestPromotionsTopicFollowsPreference(t *testing.T) {
	ctx := context.Background()
	svc, m, _, user := setup(t)

	on, off := true, false
	pref, err := svc.UpdatePreferences(ctx, user.ID, models.UpdatePreferenceInput{Promotions: &on})
	require.NoError(t, err)
	assert.True(t, pref.Promotions)
	assert.True(t, pref.BookingUpdates)

	_, err = svc.UpdatePreferences(ctx, user.ID, models.UpdatePreferenceInput{Promotions: &off})
	require.NoError(t, err)

	assert.Equal(t, []call{
		{"subscribe", PromotionsTopic, "tok-1"},
		{"unsubscribe", PromotionsTopic, "tok-1"},
	}, m.calls)
}

func TestRegisterAndClearToken(t *testing.T) {
	ctx := context.Background()
	svc, m, repos, user := setup(t)

	require.NoError(t, svc.RegisterToken(ctx, user.ID, "tok-2"))
	got, err := repos.Users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got.FCMToken)
	assert.Empty(t, m.calls)

	require.NoError(t, svc.ClearToken(ctx, user.ID))
	got, err = repos.Users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, got.FCMToken)
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	svc, _, _, user := setup(t)

	require.NoError(t, svc.Notify(ctx, user.ID, models.NotificationReview, "New review", "", nil))
	require.NoError(t, svc.Notify(ctx, user.ID, models.NotificationReview, "New review", "", nil))
	inbox, err := svc.List(ctx, user.ID, 0)
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, user.ID, inbox[0].ID))
	assert.True(t, errs.Is(svc.MarkRead(ctx, "someone-else", inbox[1].ID), models.ErrNotFound))

	require.NoError(t, svc.MarkAllRead(ctx, user.ID))
	inbox, err = svc.List(ctx, user.ID, 0)
	require.NoError(t, err)
	for _, n := range inbox {
		assert.True(t, n.IsRead)
	}
}

func TestBroadcastValidatesTopic(t *testing.T) {
	svc, m, _, _ := setup(t)

	err := svc.Broadcast(context.Background(), models.BroadcastInput{Topic: "bad topic!", Title: "t", Body: "b"})
	assert.True(t, errs.Is(err, models.ErrValidation))

	require.NoError(t, svc.Broadcast(context.Background(), models.BroadcastInput{Topic: "jakarta-partners", Title: "t", Body: "b"}))
	assert.Equal(t, []call{{"topic", "jakarta-partners", "t"}}, m.calls)
}
