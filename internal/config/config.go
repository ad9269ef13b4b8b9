package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	defaultTwilioAPIURL  = "https://api.twilio.com/2010-04-01"
	defaultNotifyTimeout = 10 * time.Second
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	return Config{
		DBName:   getEnv("DB_NAME"),
		Port:     getEnv("PORT"),
		LogLevel: getEnvDefault("LOG_LEVEL", "info"),
		Turso: TursoConfig{
			PrimaryURL: os.Getenv("TURSO_PRIMARY_URL"),
			AuthToken:  os.Getenv("TURSO_AUTH_TOKEN"),
		},
		SES: SESConfig{
			AccessKeyID:     os.Getenv("SES_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("SES_SECRET_ACCESS_KEY"),
			Region:          os.Getenv("SES_REGION"),
			Sender:          os.Getenv("SES_SENDER"),
		},
		Twilio: TwilioConfig{
			AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			From:       os.Getenv("TWILIO_FROM_NUMBER"),
			APIURL:     getEnvDefault("TWILIO_API_URL", defaultTwilioAPIURL),
		},
		Slack: SlackConfig{
			Token:     os.Getenv("SLACK_BOT_TOKEN"),
			ChannelID: os.Getenv("SLACK_CHANNEL_ID"),
			Channels:  parseChannels(os.Getenv("SLACK_LEAGUE_CHANNELS")),
		},
		ProjectID:      os.Getenv("GCP_PROJECT"),
		NotifyTimeout:  getEnvSeconds("NOTIFY_TIMEOUT_SECONDS", defaultNotifyTimeout),
		RequestTimeout: getEnvSeconds("REQUEST_TIMEOUT_SECONDS", 15*time.Second),
		DefaultRegion:  getEnvDefault("DEFAULT_PHONE_REGION", "US"),
		Location:       getEnvLocation("LEAGUE_TIMEZONE"),
	}
}

func getEnvDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		log.Warn("Ignoring invalid duration setting", "key", key, "value", value)
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// getEnvLocation loads the IANA time zone named by key, falling back to UTC.
func getEnvLocation(key string) *time.Location {
	name := getEnvDefault(key, "UTC")
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn("Unknown time zone, using UTC", "key", key, "value", name)
		return time.UTC
	}
	return loc
}

// parseChannels reads "leagueID=channelID" pairs separated by commas.
func parseChannels(value string) map[string]string {
	channels := map[string]string{}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		league, channel, ok := strings.Cut(pair, "=")
		league, channel = strings.TrimSpace(league), strings.TrimSpace(channel)
		if !ok || league == "" || channel == "" {
			log.Warn("Ignoring malformed slack league channel", "value", pair)
			continue
		}
		channels[league] = channel
	}
	return channels
}
