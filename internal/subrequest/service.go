package subrequest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/langell/super-league-sub001/internal/league"
	"github.com/langell/super-league-sub001/internal/metrics"
	"github.com/langell/super-league-sub001/internal/notifier"
	"github.com/langell/super-league-sub001/internal/pubsub"
)

var _ Lifecycle = (*Service)(nil)

// Service runs the sub request workflow. Notification and event publishing
// failures after a committed change are logged and never returned.
type Service struct {
	store     Store
	directory league.Directory
	notifier  notifier.Notifier
	events    pubsub.PubSubClient
	metrics   metrics.Metrics
	now       func() time.Time
	loc       *time.Location
}

// NewService creates a new Service.
func NewService(store Store, directory league.Directory, n notifier.Notifier, events pubsub.PubSubClient, m metrics.Metrics) *Service {
	return &Service{
		store:     store,
		directory: directory,
		notifier:  n,
		events:    events,
		metrics:   m,
		now:       time.Now,
		loc:       time.UTC,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithLocation sets the league time zone match dates are shown in.
func (s *Service) WithLocation(loc *time.Location) *Service {
	if loc != nil {
		s.loc = loc
	}
	return s
}

func (s *Service) Eligible(ctx context.Context, userID, organizationID string) ([]Slot, error) {
	return s.store.Eligible(ctx, userID, organizationID, s.now())
}

func (s *Service) Get(ctx context.Context, requestID string) (*SubRequest, error) {
	return s.store.Get(ctx, requestID)
}

func (s *Service) ListOpen(ctx context.Context, organizationID string) ([]OpenRequest, error) {
	return s.store.ListOpen(ctx, organizationID, s.now())
}

// Create opens a sub request for a slot held by requestedBy and tells every
// sub of the league about it.
func (s *Service) Create(ctx context.Context, matchPlayerID, requestedBy, note string) (*SubRequest, error) {
	now := s.now()
	slot, err := s.store.GetSlot(ctx, matchPlayerID)
	if err != nil {
		return nil, err
	}
	if slot.UserID != requestedBy {
		return nil, fmt.Errorf("%w: %s does not hold match player %s", ErrUnauthorized, requestedBy, matchPlayerID)
	}
	if !slot.MatchDate.After(now) {
		return nil, fmt.Errorf("%w: match on %s", ErrMatchNotUpcoming, slot.MatchDate.Format(time.RFC3339))
	}

	req, err := s.store.Create(ctx, matchPlayerID, requestedBy, note, now)
	if err != nil {
		return nil, err
	}
	s.metrics.IncSubRequests(string(StatusOpen))

	ctx = context.WithoutCancel(ctx)
	matchDate := slot.MatchDate.In(s.loc)
	result := s.notifier.BroadcastSubRequest(ctx, slot.OrganizationID, requestedBy, matchDate, note)
	log.Debug("Sub request broadcast finished", "id", req.ID, "delivered", result.Delivered, "failed", result.Failed)
	s.notifier.Announce(ctx, notifier.Announcement{
		Kind:           notifier.AnnouncementCreated,
		OrganizationID: slot.OrganizationID,
		RequestID:      req.ID,
		MatchDate:      matchDate,
		Note:           note,
		RequesterName:  s.userName(ctx, requestedBy),
	})
	s.publish(ctx, pubsub.EventSubRequestCreated, req, slot)
	return req, nil
}

// Accept gives the slot to userID and tells the requester.
func (s *Service) Accept(ctx context.Context, requestID, userID string) (*SubRequest, error) {
	accepted, err := s.store.Accept(ctx, requestID, userID, s.now())
	if err != nil {
		return nil, err
	}
	s.metrics.IncSubRequests(string(StatusAccepted))

	req, slot := accepted.Request, accepted.Slot
	ctx = context.WithoutCancel(ctx)
	matchDate := slot.MatchDate.In(s.loc)
	subName := s.userName(ctx, userID)
	if err := s.notifier.Dispatch(ctx, req.RequestedBy, notifier.AcceptedMessage(subName, matchDate)); err != nil {
		log.Error("Failed to notify requester", "id", requestID, "requester", req.RequestedBy, "error", err)
	}
	s.notifier.Announce(ctx, notifier.Announcement{
		Kind:           notifier.AnnouncementAccepted,
		OrganizationID: slot.OrganizationID,
		RequestID:      req.ID,
		MatchDate:      matchDate,
		RequesterName:  s.userName(ctx, req.RequestedBy),
		AcceptedByName: subName,
	})
	s.publish(ctx, pubsub.EventSubRequestAccepted, req, slot)
	return req, nil
}

// Cancel withdraws an open request. The subs are not messaged individually.
func (s *Service) Cancel(ctx context.Context, requestID, userID string) (*SubRequest, error) {
	req, err := s.store.Cancel(ctx, requestID, userID, s.now())
	if err != nil {
		return nil, err
	}
	s.metrics.IncSubRequests(string(StatusCancelled))

	ctx = context.WithoutCancel(ctx)
	slot, err := s.store.GetSlot(ctx, req.MatchPlayerID)
	if err != nil {
		log.Warn("Could not load slot of cancelled request", "id", requestID, "error", err)
		return req, nil
	}
	s.notifier.Announce(ctx, notifier.Announcement{
		Kind:           notifier.AnnouncementCancelled,
		OrganizationID: slot.OrganizationID,
		RequestID:      req.ID,
		MatchDate:      slot.MatchDate.In(s.loc),
		RequesterName:  s.userName(ctx, userID),
	})
	s.publish(ctx, pubsub.EventSubRequestCancelled, req, slot)
	return req, nil
}

func (s *Service) userName(ctx context.Context, userID string) string {
	user, err := s.directory.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, league.ErrNotFound) {
			log.Warn("Failed to look up user", "user", userID, "error", err)
		}
		return ""
	}
	return user.Name
}

func (s *Service) publish(ctx context.Context, topic pubsub.EventType, req *SubRequest, slot *Slot) {
	event := pubsub.SubRequestEvent{
		RequestID:      req.ID,
		MatchPlayerID:  req.MatchPlayerID,
		OrganizationID: slot.OrganizationID,
		RequestedBy:    req.RequestedBy,
		Status:         string(req.Status),
		MatchDate:      slot.MatchDate.Unix(),
		OccurredAt:     s.now().Unix(),
	}
	if req.AcceptedBy != nil {
		event.AcceptedBy = *req.AcceptedBy
	}
	if err := s.events.SendMessage(ctx, topic, event); err != nil {
		log.Error("Failed to publish sub request event", "topic", topic, "id", req.ID, "error", err)
	}
}
