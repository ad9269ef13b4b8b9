package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/langell/super-league-sub001/internal/config"
	"github.com/langell/super-league-sub001/internal/notifier"
	"github.com/nyaruka/phonenumbers"
)

var _ notifier.SMSSender = (*TwilioSender)(nil)

// TwilioSender sends text messages through the Twilio Messages API.
type TwilioSender struct {
	apiURL     string
	accountSID string
	authToken  string
	from       string
	region     string
	client     *http.Client
}

// twilioError is the error body returned by the Twilio REST API.
type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// New creates a Twilio sender. region is the default region used to
// interpret phone numbers stored without a country code.
func New(cfg config.TwilioConfig, region string, timeout time.Duration) (*TwilioSender, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("twilio account sid, auth token and from number are required: %w", notifier.ErrTransportUnavailable)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TwilioSender{
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.From,
		region:     region,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// Normalize returns phone in E.164 form.
func Normalize(phone, region string) (string, error) {
	num, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return "", fmt.Errorf("invalid phone number %q: %w", phone, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number %q", phone)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Send posts one message. HTTP Basic auth uses the account SID and auth token.
func (s *TwilioSender) Send(ctx context.Context, to, body string) error {
	if s == nil {
		return notifier.ErrTransportUnavailable
	}
	recipient, err := Normalize(to, s.region)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("To", recipient)
	form.Set("From", s.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.apiURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create twilio request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to twilio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr twilioError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("twilio returned %d (code %d): %s", resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("twilio returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var sent struct {
		SID    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sent); err != nil {
		log.Warn("Could not decode twilio response", "error", err)
	}
	log.Debug("Sent SMS", "to", recipient, "sid", sent.SID, "status", sent.Status)
	return nil
}
