package notifier

import (
	"context"
	"errors"
	"time"
)

// ErrTransportUnavailable is returned when a channel has no configured
// transport. It is logged and never treated as a delivery failure.
var ErrTransportUnavailable = errors.New("transport unavailable")

// EmailSender delivers a single email. htmlBody may be empty.
type EmailSender interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}

// SMSSender delivers a single text message.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// Announcer posts league-wide announcements, such as to a Slack channel.
type Announcer interface {
	Announce(ctx context.Context, a Announcement) error
}

// Notifier defines a high-level interface for sending notifications about
// sub request events.
type Notifier interface {
	Dispatch(ctx context.Context, userID string, msg Message) error
	BroadcastSubRequest(ctx context.Context, organizationID, requestedBy string, matchDate time.Time, note string) BroadcastResult
	Announce(ctx context.Context, a Announcement)
}

// Message is a channel independent notification. HTML is used as the email
// body when set.
type Message struct {
	Title string
	Body  string
	HTML  string
}

// BroadcastResult counts the outcome of one broadcast. Skipped covers
// recipients that could not be reached because of missing contact details
// or an unconfigured transport.
type BroadcastResult struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

type AnnouncementKind string

const (
	AnnouncementCreated   AnnouncementKind = "created"
	AnnouncementAccepted  AnnouncementKind = "accepted"
	AnnouncementCancelled AnnouncementKind = "cancelled"
)

// Announcement describes a sub request event for the league channel.
type Announcement struct {
	Kind           AnnouncementKind
	OrganizationID string
	RequestID      string
	MatchDate      time.Time
	Note           string
	RequesterName  string
	AcceptedByName string
}
