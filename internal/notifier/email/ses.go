package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/charmbracelet/log"
	"github.com/langell/super-league-sub001/internal/config"
	"github.com/langell/super-league-sub001/internal/notifier"
)

var _ notifier.EmailSender = (*SESSender)(nil)

// sesAPI is the part of the sesv2 client we use.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends email through AWS SESv2.
type SESSender struct {
	client sesAPI
	sender string
}

// New initializes an SES sender using static credentials and region.
func New(ctx context.Context, cfg config.SESConfig) (*SESSender, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("ses credentials, region and sender are required: %w", notifier.ErrTransportUnavailable)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewWithAPI(sesv2.NewFromConfig(awsCfg), cfg.Sender), nil
}

// NewWithAPI creates a sender over an existing client.
func NewWithAPI(api sesAPI, sender string) *SESSender {
	return &SESSender{client: api, sender: sender}
}

// Send delivers one email. The HTML part is included when htmlBody is set.
func (s *SESSender) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	if s == nil || s.client == nil {
		return notifier.ErrTransportUnavailable
	}
	if to == "" {
		return fmt.Errorf("recipient is required")
	}

	body := &types.Body{
		Text: &types.Content{Data: aws.String(textBody), Charset: aws.String("UTF-8")},
	}
	if htmlBody != "" {
		body.Html = &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")}
	}

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
		FromEmailAddress: aws.String(s.sender),
	})
	if err != nil {
		log.Error("Failed to send SES email", "error", err, "recipient", to, "subject", subject)
		return fmt.Errorf("failed to send ses email: %w", err)
	}
	log.Debug("Sent SES email", "recipient", to, "messageID", aws.ToString(out.MessageId))
	return nil
}
