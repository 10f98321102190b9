package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/resend/resend-go/v2"

	"virtualevents/internal/domain"
)

// Supported email providers.
const (
	ProviderSES    = "ses"
	ProviderResend = "resend"
	ProviderNoop   = "noop"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
}

// ResendConfig holds configuration for the Resend API. BaseURL overrides the API endpoint.
type ResendConfig struct {
	APIKey  string
	BaseURL string
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SES         SESConfig
	Resend      ResendConfig
}

func (c MailerConfig) source() string {
	if c.FromName != "" {
		return fmt.Sprintf("%s <%s>", c.FromName, c.FromAddress)
	}
	return c.FromAddress
}

// NewMailer creates a mailer from config. Provider "ses" uses AWS SES, "resend" uses the Resend API, and
// "noop" or an unknown provider only logs.
func NewMailer(config MailerConfig, logger *slog.Logger) (domain.Mailer, error) {
	switch config.Provider {
	case ProviderSES:
		sesConfig := config.SES
		if sesConfig.Region == "" {
			return nil, errors.New("ses mailer requires a region")
		}
		if sesConfig.InsecureSkipVerify {
			logger.Warn("TLS certificate verification is disabled for SES. Use only in development.")
		}
		httpClient := &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: sesConfig.InsecureSkipVerify,
					MinVersion:         tls.VersionTLS12,
				},
			},
		}
		awsCfg := aws.Config{
			Region: sesConfig.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					sesConfig.AccessKeyID,
					sesConfig.SecretAccessKey,
					"",
				),
			),
			HTTPClient: httpClient,
		}
		return &sesMailer{
			client: ses.NewFromConfig(awsCfg),
			source: config.source(),
			logger: logger,
		}, nil
	case ProviderResend:
		if config.Resend.APIKey == "" {
			return nil, errors.New("resend mailer requires an API key")
		}
		client := resend.NewClient(config.Resend.APIKey)
		if config.Resend.BaseURL != "" {
			u, err := url.Parse(config.Resend.BaseURL)
			if err != nil {
				return nil, fmt.Errorf("parse resend base url: %w", err)
			}
			client.BaseURL = u
		}
		return &resendMailer{client: client, source: config.source(), logger: logger}, nil
	case ProviderNoop, "":
		return &noopMailer{logger: logger}, nil
	default:
		logger.Warn("unknown email provider, using noop", "provider", config.Provider)
		return &noopMailer{logger: logger}, nil
	}
}

type sesMailer struct {
	client *ses.Client
	source string
	logger *slog.Logger
}

func (s *sesMailer) Send(ctx context.Context, to, subject, html, text string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.source),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}
	if html != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(html),
			Charset: aws.String("UTF-8"),
		}
	}
	if text != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(text),
			Charset: aws.String("UTF-8"),
		}
	}
	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	s.logger.InfoContext(ctx, "email sent via SES", "message_id", aws.ToString(result.MessageId), "to", to)
	return nil
}

type resendMailer struct {
	client *resend.Client
	source string
	logger *slog.Logger
}

// Send delivers through the Resend API. Rate limit responses are reported, not retried.
func (m *resendMailer) Send(ctx context.Context, to, subject, html, text string) error {
	params := &resend.SendEmailRequest{
		From:    m.source,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	}
	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			m.logger.WarnContext(ctx, "resend rate limit exceeded",
				"limit", rateLimitErr.Limit, "remaining", rateLimitErr.Remaining, "reset", rateLimitErr.Reset)
			return fmt.Errorf("email rate limit exceeded (limit: %s, resets in: %s seconds): %w",
				rateLimitErr.Limit, rateLimitErr.Reset, err)
		}
		return fmt.Errorf("resend API error: %w", err)
	}
	m.logger.InfoContext(ctx, "email sent via Resend", "email_id", sent.Id, "to", to)
	return nil
}

type noopMailer struct {
	logger *slog.Logger
}

func (n *noopMailer) Send(ctx context.Context, to, subject, html, text string) error {
	n.logger.InfoContext(ctx, "email would be sent (noop)", "to", to, "subject", subject)
	return nil
}
