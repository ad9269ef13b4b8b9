package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName         string
	Port           string
	LogLevel       string
	Turso          TursoConfig
	SES            SESConfig
	Twilio         TwilioConfig
	Slack          SlackConfig
	ProjectID      string
	NotifyTimeout  time.Duration
	DefaultRegion  string
	RequestTimeout time.Duration
	// Location is the league time zone used when showing match dates.
	Location *time.Location
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
type SESConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Sender          string
}

// Enabled reports whether enough SES settings are present to send email.
func (c SESConfig) Enabled() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != "" && c.Region != "" && c.Sender != ""
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	APIURL     string
}

func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != ""
}

// SlackConfig posts announcements to ChannelID, or to the channel mapped to
// a league in Channels when there is one.
type SlackConfig struct {
	Token     string
	ChannelID string
	Channels  map[string]string
}

func (c SlackConfig) Enabled() bool {
	return c.Token != "" && (c.ChannelID != "" || len(c.Channels) > 0)
}
