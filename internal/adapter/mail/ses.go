// Package mail sends transactional e-mail through Amazon SES.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/heartmarshall/kiddict-backend/internal/config"
)

const charset = "UTF-8"

// Message is one outgoing e-mail.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Sender delivers messages via SES. A sender without a from address is
// disabled and drops messages.
type Sender struct {
	client     sesAPI
	from       string
	appBaseURL string
	log        *slog.Logger
}

// NewSender loads the default AWS credential chain for cfg.Region.
func NewSender(ctx context.Context, cfg config.MailConfig, logger *slog.Logger) (*Sender, error) {
	log := logger.With("adapter", "ses")
	if cfg.FromEmail == "" {
		log.Info("mail disabled: no from address configured")
		return &Sender{log: log, appBaseURL: cfg.AppBaseURL}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	log.Info("mail enabled", slog.String("from", cfg.FromEmail), slog.String("region", cfg.Region))
	return newSender(sesv2.NewFromConfig(awsCfg), cfg, log), nil
}

func newSender(client sesAPI, cfg config.MailConfig, log *slog.Logger) *Sender {
	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}
	return &Sender{client: client, from: from, appBaseURL: cfg.AppBaseURL, log: log}
}

// Enabled reports whether messages are actually delivered.
func (s *Sender) Enabled() bool { return s.client != nil }

// AppBaseURL is the front-end address used for links in messages.
func (s *Sender) AppBaseURL() string { return s.appBaseURL }

// Send delivers msg. On a disabled sender it logs and returns nil.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	if !s.Enabled() {
		s.log.DebugContext(ctx, "skipping mail (disabled)", slog.String("subject", msg.Subject))
		return nil
	}

	body := &types.Body{}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String(charset)}
	}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String(charset)}
	}

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(charset)},
				Body:    body,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}

	s.log.InfoContext(ctx, "mail sent", slog.String("message_id", aws.ToString(out.MessageId)))
	return nil
}
