package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/langell/super-league-sub001/internal/league"
	"github.com/langell/super-league-sub001/internal/metrics"
)

var _ Notifier = (*Dispatcher)(nil)

// Dispatcher routes notifications to a user's preferred channel. Any of the
// transports may be nil, in which case that channel is unavailable.
type Dispatcher struct {
	directory league.Directory
	email     EmailSender
	sms       SMSSender
	announcer Announcer
	metrics   metrics.Metrics
	timeout   time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithEmail(s EmailSender) Option   { return func(d *Dispatcher) { d.email = s } }
func WithSMS(s SMSSender) Option       { return func(d *Dispatcher) { d.sms = s } }
func WithAnnouncer(a Announcer) Option { return func(d *Dispatcher) { d.announcer = a } }

// WithTimeout bounds every outbound call. The default is 10 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(directory league.Directory, metrics metrics.Metrics, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		directory: directory,
		metrics:   metrics,
		timeout:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type outcome int

const (
	delivered outcome = iota
	skipped
	failed
)

// Dispatch delivers msg to userID over SMS when the user prefers it and has a
// phone number on file, and over email otherwise. Unknown users and
// unavailable transports are logged and reported as success; transport
// errors are returned.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, msg Message) error {
	_, err := d.dispatch(ctx, userID, msg)
	return err
}

func (d *Dispatcher) dispatch(ctx context.Context, userID string, msg Message) (outcome, error) {
	user, err := d.directory.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, league.ErrNotFound) {
			log.Warn("Skipping notification for unknown user", "user", userID, "title", msg.Title)
			return skipped, nil
		}
		return failed, fmt.Errorf("failed to look up user %s: %w", userID, err)
	}

	if user.NotificationPreference == league.PreferSMS && user.Phone != "" {
		return d.send(ctx, metrics.ChannelSMS, userID, func(ctx context.Context) error {
			if d.sms == nil {
				return ErrTransportUnavailable
			}
			return d.sms.Send(ctx, user.Phone, SMSBody(msg))
		})
	}

	if user.Email == "" {
		log.Warn("Skipping notification, no email on file", "user", userID, "title", msg.Title)
		return skipped, nil
	}
	return d.send(ctx, metrics.ChannelEmail, userID, func(ctx context.Context) error {
		if d.email == nil {
			return ErrTransportUnavailable
		}
		return d.email.Send(ctx, user.Email, msg.Title, msg.Body, msg.HTML)
	})
}

func (d *Dispatcher) send(ctx context.Context, channel, recipient string, fn func(ctx context.Context) error) (outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := fn(ctx)
	switch {
	case err == nil:
		d.metrics.IncNotificationSent(channel)
		log.Debug("Notification sent", "channel", channel, "recipient", recipient)
		return delivered, nil
	case errors.Is(err, ErrTransportUnavailable):
		d.metrics.IncNotificationUnavailable(channel)
		log.Warn("Notification channel not configured", "channel", channel, "recipient", recipient)
		return skipped, nil
	default:
		d.metrics.IncNotificationFailed(channel)
		log.Error("Failed to send notification", "channel", channel, "recipient", recipient, "error", err)
		return failed, fmt.Errorf("failed to send %s notification to %s: %w", channel, recipient, err)
	}
}

// BroadcastSubRequest notifies every sub of organizationID other than the
// requester, one at a time in directory order. A failure for one recipient
// does not stop the rest.
func (d *Dispatcher) BroadcastSubRequest(ctx context.Context, organizationID, requestedBy string, matchDate time.Time, note string) BroadcastResult {
	start := time.Now()
	defer func() { d.metrics.ObserveBroadcastDuration(time.Since(start).Seconds()) }()

	var result BroadcastResult
	subs, err := d.directory.ListMembers(ctx, organizationID, league.RoleSub)
	if err != nil {
		log.Error("Failed to list subs for broadcast", "organization", organizationID, "error", err)
		return result
	}

	msg := SubRequestMessage(matchDate, note)
	for _, sub := range subs {
		if sub.UserID == requestedBy {
			continue
		}
		result.Attempted++
		o, _ := d.dispatch(ctx, sub.UserID, msg)
		switch o {
		case delivered:
			result.Delivered++
		case skipped:
			result.Skipped++
		default:
			result.Failed++
		}
	}
	log.Info("Broadcast sub request", "organization", organizationID,
		"attempted", result.Attempted, "delivered", result.Delivered,
		"failed", result.Failed, "skipped", result.Skipped)
	return result
}

// Announce posts a to the league channel when one is configured. Failures
// are logged only.
func (d *Dispatcher) Announce(ctx context.Context, a Announcement) {
	if d.announcer == nil {
		log.Debug("No announcer configured", "kind", a.Kind, "request", a.RequestID)
		return
	}
	_, _ = d.send(ctx, metrics.ChannelSlack, a.OrganizationID, func(ctx context.Context) error {
		return d.announcer.Announce(ctx, a)
	})
}
