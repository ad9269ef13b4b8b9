package notifier

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/langell/super-league-sub001/internal/league"
	"github.com/langell/super-league-sub001/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var matchDate = time.Date(2026, time.June, 9, 17, 30, 0, 0, time.UTC)

func TestDispatch_SMSPreferenceWithPhone(t *testing.T) {
	dir := league.NewMockDirectory()
	dir.AddUser("", league.User{ID: "u1", Phone: "+15555550100", Email: "u1@example.com", NotificationPreference: league.PreferSMS}, "")
	sms := &MockSMSSender{}
	email := &MockEmailSender{}
	m := metrics.NewMock()
	d := NewDispatcher(dir, m, WithSMS(sms), WithEmail(email))

	err := d.Dispatch(context.Background(), "u1", Message{Title: "Hello", Body: "world"})
	require.NoError(t, err)

	require.Len(t, sms.Sent, 1)
	assert.Equal(t, "+15555550100", sms.Sent[0].To)
	assert.Equal(t, "Hello: world", sms.Sent[0].Body)
	assert.Empty(t, email.Sent)
	assert.Equal(t, 1, m.Sent(metrics.ChannelSMS))
}

func TestDispatch_SMSPreferenceWithoutPhoneFallsBackToEmail(t *testing.T) {
	dir := league.NewMockDirectory()
	dir.AddUser("", league.User{ID: "u1", Email: "u1@example.com", NotificationPreference: league.PreferSMS}, "")
	sms := &MockSMSSender{}
	email := &MockEmailSender{}
	d := NewDispatcher(dir, metrics.NewMock(), WithSMS(sms), WithEmail(email))

	err := d.Dispatch(context.Background(), "u1", Message{Title: "Hello", Body: "world", HTML: "<p>world</p>"})
	require.NoError(t, err)

	assert.Empty(t, sms.Sent)
	require.Len(t, email.Sent, 1)
	assert.Equal(t, "u1@example.com", email.Sent[0].To)
	assert.Equal(t, "Hello", email.Sent[0].Subject)
	assert.Equal(t, "<p>world</p>", email.Sent[0].HTMLBody)
}

func TestDispatch_UnknownUserIsNotAnError(t *testing.T) {
	email := &MockEmailSender{}
	d := NewDispatcher(league.NewMockDirectory(), metrics.NewMock(), WithEmail(email))

	assert.NoError(t, d.Dispatch(context.Background(), "ghost", Message{Title: "Hi"}))
	assert.Empty(t, email.Sent)
}

func TestDispatch_UnavailableTransportIsAbsorbed(t *testing.T) {
	dir := league.NewMockDirectory()
	dir.AddUser("", league.User{ID: "u1", Email: "u1@example.com"}, "")
	m := metrics.NewMock()
	d := NewDispatcher(dir, m)

	assert.NoError(t, d.Dispatch(context.Background(), "u1", Message{Title: "Hi"}))
	assert.Equal(t, 1, m.Unavailable(metrics.ChannelEmail))

	email := &MockEmailSender{SendFunc: func(ctx context.Context, to, subject, textBody, htmlBody string) error {
		return ErrTransportUnavailable
	}}
	d = NewDispatcher(dir, m, WithEmail(email))
	assert.NoError(t, d.Dispatch(context.Background(), "u1", Message{Title: "Hi"}))
	assert.Equal(t, 2, m.Unavailable(metrics.ChannelEmail))
}

func TestDispatch_TransportFailureIsReturned(t *testing.T) {
	dir := league.NewMockDirectory()
	dir.AddUser("", league.User{ID: "u1", Email: "u1@example.com"}, "")
	sendErr := errors.New("ses throttled")
	m := metrics.NewMock()
	d := NewDispatcher(dir, m, WithEmail(&MockEmailSender{SendFunc: func(ctx context.Context, to, subject, textBody, htmlBody string) error {
		return sendErr
	}}))

	err := d.Dispatch(context.Background(), "u1", Message{Title: "Hi"})
	assert.ErrorIs(t, err, sendErr)
	assert.Equal(t, 1, m.Failed(metrics.ChannelEmail))
}

func TestDispatch_AppliesTimeout(t *testing.T) {
	dir := league.NewMockDirectory()
	dir.AddUser("", league.User{ID: "u1", Email: "u1@example.com"}, "")
	var deadline time.Time
	email := &MockEmailSender{SendFunc: func(ctx context.Context, to, subject, textBody, htmlBody string) error {
		deadline, _ = ctx.Deadline()
		return nil
	}}
	d := NewDispatcher(dir, metrics.NewMock(), WithEmail(email), WithTimeout(2*time.Second))

	require.NoError(t, d.Dispatch(context.Background(), "u1", Message{Title: "Hi"}))
	assert.WithinDuration(t, time.Now().Add(2*time.Second), deadline, time.Second)
}

func TestBroadcastSubRequest_IsolatesFailures(t *testing.T) {
	dir := league.NewMockDirectory()
	dir.AddUser("org", league.User{ID: "s1", Name: "Sub One", Email: "s1@example.com"}, league.RoleSub)
	dir.AddUser("org", league.User{ID: "s2", Name: "Sub Two", Email: "s2@example.com"}, league.RoleSub)
	dir.AddUser("org", league.User{ID: "s3", Name: "Sub Three", Email: "s3@example.com"}, league.RoleSub)
	dir.AddUser("org", league.User{ID: "p1", Name: "Player", Email: "p1@example.com"}, league.RolePlayer)

	email := &MockEmailSender{SendFunc: func(ctx context.Context, to, subject, textBody, htmlBody string) error {
		if to == "s2@example.com" {
			return errors.New("mailbox full")
		}
		return nil
	}}
	m := metrics.NewMock()
	d := NewDispatcher(dir, m, WithEmail(email))

	result := d.BroadcastSubRequest(context.Background(), "org", "p1", matchDate, "Bring a cart")

	assert.Equal(t, BroadcastResult{Attempted: 3, Delivered: 2, Failed: 1}, result)
	require.Len(t, email.Sent, 3)
	assert.Equal(t, "s1@example.com", email.Sent[0].To)
	assert.Equal(t, "s2@example.com", email.Sent[1].To)
	assert.Equal(t, "s3@example.com", email.Sent[2].To)
	for _, sent := range email.Sent {
		assert.Equal(t, "Sub Request", sent.Subject)
		assert.Contains(t, sent.TextBody, "Bring a cart")
	}
	assert.Equal(t, 1, m.BroadcastCount())
}

func TestBroadcastSubRequest_SkipsRequester(t *testing.T) {
	dir := league.NewMockDirectory()
	dir.AddUser("org", league.User{ID: "s1", Email: "s1@example.com"}, league.RoleSub)
	dir.AddUser("org", league.User{ID: "s2", Email: "s2@example.com"}, league.RoleSub)
	email := &MockEmailSender{}
	d := NewDispatcher(dir, metrics.NewMock(), WithEmail(email))

	// s1 took a seat earlier and now needs a sub of their own.
	result := d.BroadcastSubRequest(context.Background(), "org", "s1", matchDate, "")

	assert.Equal(t, BroadcastResult{Attempted: 1, Delivered: 1}, result)
	require.Len(t, email.Sent, 1)
	assert.Equal(t, "s2@example.com", email.Sent[0].To)
}

func TestBroadcastSubRequest_NoSubs(t *testing.T) {
	d := NewDispatcher(league.NewMockDirectory(), metrics.NewMock())
	assert.Equal(t, BroadcastResult{}, d.BroadcastSubRequest(context.Background(), "org", "p1", matchDate, ""))
}

func TestAnnounce(t *testing.T) {
	m := metrics.NewMock()
	NewDispatcher(league.NewMockDirectory(), m).Announce(context.Background(), Announcement{Kind: AnnouncementCreated})

	announcer := &MockAnnouncer{AnnounceFunc: func(ctx context.Context, a Announcement) error {
		return errors.New("slack down")
	}}
	d := NewDispatcher(league.NewMockDirectory(), m, WithAnnouncer(announcer))
	d.Announce(context.Background(), Announcement{Kind: AnnouncementAccepted, OrganizationID: "org"})

	require.Len(t, announcer.Calls, 1)
	assert.Equal(t, AnnouncementAccepted, announcer.Calls[0].Kind)
	assert.Equal(t, 1, m.Failed(metrics.ChannelSlack))
}

func TestMessages(t *testing.T) {
	msg := SubRequestMessage(matchDate, "<b>late</b>")
	assert.Equal(t, "Sub Request", msg.Title)
	assert.Contains(t, msg.Body, "Tue Jun 9, 2026 5:30 PM")
	assert.Contains(t, msg.HTML, "&lt;b&gt;late&lt;/b&gt;")

	accepted := AcceptedMessage("Bob", matchDate)
	assert.Equal(t, "Sub Request Accepted: Bob will sub for you in the match on Tue Jun 9, 2026 5:30 PM UTC.", SMSBody(accepted))
}

func TestFormatDate_UsesLeagueTimeZone(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	assert.Equal(t, "Tue Jun 9, 2026 12:30 PM CDT", FormatDate(matchDate.In(chicago)))
	assert.Contains(t, SubRequestMessage(matchDate.In(chicago), "").Body, "12:30 PM CDT")
}
