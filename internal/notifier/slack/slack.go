package slack

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/langell/super-league-sub001/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Announcer = &Announcer{}

// Announcer posts sub request events to a league's Slack channel. Leagues
// without a channel of their own use the default channel.
type Announcer struct {
	api       slackClient
	channelID string
	channels  map[string]string
}

// NewAnnouncer creates a new Announcer.
func NewAnnouncer(token, channelID string) *Announcer {
	return NewAnnouncerWithAPI(slack.New(token), channelID)
}

// NewAnnouncerWithAPI creates a new Announcer with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewAnnouncerWithAPI(api slackClient, channelID string) *Announcer {
	return &Announcer{
		api:       api,
		channelID: channelID,
		channels:  map[string]string{},
	}
}

// WithLeagueChannels maps league ids to the channel their events go to.
func (s *Announcer) WithLeagueChannels(channels map[string]string) *Announcer {
	for league, channel := range channels {
		s.channels[league] = channel
	}
	return s
}

func (s *Announcer) channelFor(organizationID string) string {
	if channel, ok := s.channels[organizationID]; ok {
		return channel
	}
	return s.channelID
}

// Announce formats a and posts it to the channel of a's league.
func (s *Announcer) Announce(ctx context.Context, a notifier.Announcement) error {
	target := s.channelFor(a.OrganizationID)
	if target == "" {
		return fmt.Errorf("no slack channel for league %s: %w", a.OrganizationID, notifier.ErrTransportUnavailable)
	}
	message, err := format(a)
	if err != nil {
		return err
	}

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		target,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionText(fallbackText(a), false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		log.Error("Failed to send Slack message", "error", err, "channel", target)
		return fmt.Errorf("failed to post message: %w", err)
	}

	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp, "kind", a.Kind)
	return nil
}

func format(a notifier.Announcement) (slack.Message, error) {
	switch a.Kind {
	case notifier.AnnouncementCreated:
		return formatCreated(a), nil
	case notifier.AnnouncementAccepted:
		return formatAccepted(a), nil
	case notifier.AnnouncementCancelled:
		return formatCancelled(a), nil
	}
	return slack.Message{}, fmt.Errorf("unknown announcement kind %q", a.Kind)
}

func formatCreated(a notifier.Announcement) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "⛳ Sub needed! ⛳", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("*Match:* %s", notifier.FormatDate(a.MatchDate))
	if a.RequesterName != "" {
		detailsText += fmt.Sprintf("\n*Requested by:* %s", a.RequesterName)
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", detailsText, false, false), nil, nil))

	if a.Note != "" {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", a.Note, false, false), nil, nil))
	}

	// Context - For simpler, single-line info.
	contextText := slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("Request `%s` · subs can accept it from the league page", a.RequestID), false, false)
	blocks = append(blocks, slack.NewContextBlock("", contextText))

	return slack.NewBlockMessage(blocks...)
}

func formatAccepted(a notifier.Announcement) slack.Message {
	text := fmt.Sprintf("✅ *%s* is subbing in for *%s* on %s.", name(a.AcceptedByName), name(a.RequesterName), notifier.FormatDate(a.MatchDate))
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}

func formatCancelled(a notifier.Announcement) slack.Message {
	text := fmt.Sprintf("The sub request for %s has been withdrawn.", notifier.FormatDate(a.MatchDate))
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}

// fallbackText is shown in notifications and by clients that cannot render blocks.
func fallbackText(a notifier.Announcement) string {
	switch a.Kind {
	case notifier.AnnouncementAccepted:
		return fmt.Sprintf("%s is subbing on %s", name(a.AcceptedByName), notifier.FormatDate(a.MatchDate))
	case notifier.AnnouncementCancelled:
		return fmt.Sprintf("Sub request for %s withdrawn", notifier.FormatDate(a.MatchDate))
	}
	return fmt.Sprintf("Sub needed for %s", notifier.FormatDate(a.MatchDate))
}

func name(n string) string {
	if n == "" {
		return "A player"
	}
	return n
}
