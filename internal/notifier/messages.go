package notifier

import (
	"fmt"
	"html"
	"time"
)

const (
	subRequestTitle = "Sub Request"
	acceptedTitle   = "Sub Request Accepted"
	dateLayout      = "Mon Jan 2, 2006 3:04 PM MST"
)

// SubRequestMessage is sent to every sub of a league when a spot opens up.
func SubRequestMessage(matchDate time.Time, note string) Message {
	body := fmt.Sprintf("A substitute is needed for the match on %s.", matchDate.Format(dateLayout))
	htmlBody := fmt.Sprintf("<p>A substitute is needed for the match on <strong>%s</strong>.</p>", matchDate.Format(dateLayout))
	if note != "" {
		body += " Note: " + note
		htmlBody += fmt.Sprintf("<p>Note: %s</p>", html.EscapeString(note))
	}
	return Message{Title: subRequestTitle, Body: body, HTML: htmlBody}
}

// AcceptedMessage tells a requester who took their spot.
func AcceptedMessage(subName string, matchDate time.Time) Message {
	body := fmt.Sprintf("%s will sub for you in the match on %s.", subName, matchDate.Format(dateLayout))
	htmlBody := fmt.Sprintf("<p><strong>%s</strong> will sub for you in the match on %s.</p>",
		html.EscapeString(subName), matchDate.Format(dateLayout))
	return Message{Title: acceptedTitle, Body: body, HTML: htmlBody}
}

// SMSBody renders a message for a text channel.
func SMSBody(msg Message) string {
	return fmt.Sprintf("%s: %s", msg.Title, msg.Body)
}

// FormatDate renders a match date the way every channel shows it, in the
// time zone carried by t.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
