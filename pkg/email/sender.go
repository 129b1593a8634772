package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/buy2brands/wholesale-api/pkg/config"
	"github.com/buy2brands/wholesale-api/pkg/logger"
)

// Message is one outbound transactional email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ErrRecipientRequired is returned for messages without a destination.
var ErrRecipientRequired = errors.New("email recipient is required")

type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*sendgridResponse, error)
}

// sendgridResponse mirrors the fields of rest.Response that are inspected.
type sendgridResponse struct {
	StatusCode int
	Body       string
}

type sdkClient struct {
	client *sendgrid.Client
}

func (c sdkClient) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*sendgridResponse, error) {
	resp, err := c.client.SendWithContext(ctx, email)
	if err != nil {
		return nil, err
	}
	return &sendgridResponse{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}

// SendGridSender sends through the SendGrid v3 API. The underlying client is
// built on first use and reused for the life of the process.
type SendGridSender struct {
	apiKey   string
	from     *mail.Email
	logg     *logger.Logger
	once     sync.Once
	client   sendClient
	newFn    func(apiKey string) sendClient
	disabled bool
}

// NewSender returns a SendGrid sender, or a logging no-op sender when no API key is configured.
func NewSender(cfg config.SendgridConfig, logg *logger.Logger) Sender {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return &LogSender{logg: logg}
	}
	return &SendGridSender{
		apiKey: strings.TrimSpace(cfg.APIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.DefaultFrom),
		logg:   logg,
		newFn: func(apiKey string) sendClient {
			return sdkClient{client: sendgrid.NewSendClient(apiKey)}
		},
	}
}

func (s *SendGridSender) get() sendClient {
	s.once.Do(func() {
		s.client = s.newFn(s.apiKey)
		if s.logg != nil {
			s.logg.Info(context.Background(), "email.sendgrid_client_initialized")
		}
	})
	return s.client
}

// Send delivers msg. Any non-2xx response is returned as an error.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrRecipientRequired
	}
	to := mail.NewEmail(msg.ToName, msg.To)
	payload := mail.NewSingleEmail(s.from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := s.get().SendWithContext(ctx, payload)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogSender records messages in the log instead of delivering them.
type LogSender struct {
	logg *logger.Logger
}

func (l *LogSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrRecipientRequired
	}
	if l.logg != nil {
		ctx = l.logg.WithFields(ctx, map[string]any{
			"to":      msg.To,
			"subject": msg.Subject,
		})
		l.logg.Info(ctx, "email.skipped_no_transport")
	}
	return nil
}
