package subrequest_test

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/langell/super-league-sub001/internal/metrics"
	"github.com/langell/super-league-sub001/internal/notifier"
	"github.com/langell/super-league-sub001/internal/pubsub"
	"github.com/langell/super-league-sub001/internal/subrequest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	*fixture
	service  *subrequest.Service
	notifier *notifier.Mock
	events   *pubsub.MockPubSubClient
	metrics  *metrics.Mock
}

func setupService(t *testing.T) *harness {
	t.Helper()
	f := setupFixture(t)
	h := &harness{
		fixture:  f,
		notifier: notifier.NewMock(),
		events:   pubsub.NewMock(),
		metrics:  metrics.NewMock(),
	}
	h.service = subrequest.NewService(subrequest.New(f.db), f.leagues, h.notifier, h.events, h.metrics).WithClock(clock)
	return h
}

func TestScenario_CreateBroadcastsToSubs(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)
	mp := seat(t, h.upcoming, h.player)

	req, err := h.service.Create(ctx, mp, h.player.ID, "Work trip")
	require.NoError(t, err)
	assert.Equal(t, subrequest.StatusOpen, req.Status)
	assert.Equal(t, now, req.CreatedAt)

	require.Len(t, h.notifier.BroadcastCalls, 1)
	call := h.notifier.BroadcastCalls[0]
	assert.Equal(t, h.org.ID, call.OrganizationID)
	assert.Equal(t, h.player.ID, call.RequestedBy)
	assert.Equal(t, "Work trip", call.Note)
	assert.True(t, call.MatchDate.After(now))

	require.Len(t, h.notifier.AnnounceCalls, 1)
	assert.Equal(t, notifier.AnnouncementCreated, h.notifier.AnnounceCalls[0].Kind)
	assert.Equal(t, "Alice", h.notifier.AnnounceCalls[0].RequesterName)

	calls := h.events.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, pubsub.EventSubRequestCreated, calls[0].Topic)
	assert.Equal(t, 1, h.metrics.SubRequests("open"))

	slots, err := h.service.Eligible(ctx, h.player.ID, h.org.ID)
	require.NoError(t, err)
	for _, slot := range slots {
		assert.NotEqual(t, mp, slot.MatchPlayerID)
	}
}

func TestScenario_SubAcceptsAndRequesterIsNotified(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)
	mp := seat(t, h.upcoming, h.player)
	sub := h.subs[0]

	req, err := h.service.Create(ctx, mp, h.player.ID, "")
	require.NoError(t, err)

	accepted, err := h.service.Accept(ctx, req.ID, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, subrequest.StatusAccepted, accepted.Status)

	match, err := h.leagues.GetMatch(ctx, h.upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, mp, seat(t, match, sub))

	require.Len(t, h.notifier.DispatchCalls, 1)
	assert.Equal(t, h.player.ID, h.notifier.DispatchCalls[0].UserID)
	assert.Equal(t, "Sub Request Accepted", h.notifier.DispatchCalls[0].Message.Title)
	assert.Contains(t, h.notifier.DispatchCalls[0].Message.Body, "Bob")

	event := h.events.Calls()[1]
	assert.Equal(t, pubsub.EventSubRequestAccepted, event.Topic)
	payload := event.Data.(pubsub.SubRequestEvent)
	assert.Equal(t, sub.ID, payload.AcceptedBy)
	assert.Equal(t, "accepted", payload.Status)
}

func TestCreate_PreconditionsAndNoBroadcastOnFailure(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)

	_, err := h.service.Create(ctx, seat(t, h.upcoming, h.player), h.other.ID, "")
	assert.ErrorIs(t, err, subrequest.ErrUnauthorized)

	_, err = h.service.Create(ctx, seat(t, h.past, h.player), h.player.ID, "")
	assert.ErrorIs(t, err, subrequest.ErrMatchNotUpcoming)

	_, err = h.service.Create(ctx, "missing", h.player.ID, "")
	assert.ErrorIs(t, err, subrequest.ErrNotFound)

	_, err = h.service.Create(ctx, seat(t, h.upcoming, h.player), h.player.ID, "")
	require.NoError(t, err)
	_, err = h.service.Create(ctx, seat(t, h.upcoming, h.player), h.player.ID, "")
	assert.ErrorIs(t, err, subrequest.ErrDuplicateOpenRequest)

	_, broadcasts, _ := h.notifier.Counts()
	assert.Equal(t, 1, broadcasts)
}

func TestAccept_NotificationFailureDoesNotFailAccept(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)
	h.notifier.DispatchFunc = func(ctx context.Context, userID string, msg notifier.Message) error {
		return errors.New("ses is down")
	}
	h.events.SendMessageFunc = func(ctx context.Context, topic pubsub.EventType, data any) error {
		return errors.New("pubsub is down")
	}

	req, err := h.service.Create(ctx, seat(t, h.upcoming, h.player), h.player.ID, "")
	require.NoError(t, err)

	accepted, err := h.service.Accept(ctx, req.ID, h.subs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, subrequest.StatusAccepted, accepted.Status)
	assert.Equal(t, 1, h.metrics.SubRequests("accepted"))
}

func TestAccept_NonSubIsRejected(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)

	req, err := h.service.Create(ctx, seat(t, h.upcoming, h.player), h.player.ID, "")
	require.NoError(t, err)

	_, err = h.service.Accept(ctx, req.ID, h.other.ID)
	assert.ErrorIs(t, err, subrequest.ErrUnauthorized)

	dispatches, _, _ := h.notifier.Counts()
	assert.Zero(t, dispatches)
}

func TestCancel_AnnouncesWithoutPersonalNotification(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)

	req, err := h.service.Create(ctx, seat(t, h.upcoming, h.player), h.player.ID, "")
	require.NoError(t, err)

	cancelled, err := h.service.Cancel(ctx, req.ID, h.player.ID)
	require.NoError(t, err)
	assert.Equal(t, subrequest.StatusCancelled, cancelled.Status)

	dispatches, broadcasts, announcements := h.notifier.Counts()
	assert.Zero(t, dispatches)
	assert.Equal(t, 1, broadcasts)
	assert.Equal(t, 2, announcements)
	assert.Equal(t, notifier.AnnouncementCancelled, h.notifier.AnnounceCalls[1].Kind)

	_, err = h.service.Cancel(ctx, req.ID, h.player.ID)
	assert.ErrorIs(t, err, subrequest.ErrRequestNotOpen)

	got, err := h.service.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, subrequest.StatusCancelled, got.Status)
}

func TestListOpenThroughService(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)

	_, err := h.service.Create(ctx, seat(t, h.upcoming, h.player), h.player.ID, "")
	require.NoError(t, err)

	open, err := h.service.ListOpen(ctx, h.org.ID)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestNotificationsUseLeagueTimeZone(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	h.service.WithLocation(chicago)

	req, err := h.service.Create(ctx, seat(t, h.upcoming, h.player), h.player.ID, "")
	require.NoError(t, err)
	_, err = h.service.Accept(ctx, req.ID, h.subs[0].ID)
	require.NoError(t, err)

	require.Len(t, h.notifier.BroadcastCalls, 1)
	assert.Equal(t, chicago, h.notifier.BroadcastCalls[0].MatchDate.Location())
	for _, a := range h.notifier.AnnounceCalls {
		assert.Equal(t, chicago, a.MatchDate.Location())
	}
	require.Len(t, h.notifier.DispatchCalls, 1)
	// Upcoming match is at 12:00 UTC, 07:00 in Chicago.
	assert.Contains(t, h.notifier.DispatchCalls[0].Message.Body, "7:00 AM CDT")
}
