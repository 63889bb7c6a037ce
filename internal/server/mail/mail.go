// Package mail delivers transactional email such as password reset links.
package mail

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/keighl/postmark"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// LogMailer writes messages to the log instead of sending them. It is the
// default when no mail provider is configured.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (l *LogMailer) Send(ctx context.Context, m Message) error {
	l.logger.Info(ctx, "mail not sent, no provider configured", "to", m.To, "subject", m.Subject, "body", m.Text)
	return nil
}

type postmarkSender interface {
	SendEmail(email postmark.Email) (postmark.EmailResponse, error)
}

// PostmarkMailer sends mail through the Postmark API.
type PostmarkMailer struct {
	client postmarkSender
	from   string
}

func NewPostmarkMailer(serverToken, from string) *PostmarkMailer {
	return &PostmarkMailer{client: postmark.NewClient(serverToken, ""), from: from}
}

func (p *PostmarkMailer) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := p.client.SendEmail(postmark.Email{
		From:     p.from,
		To:       m.To,
		Subject:  m.Subject,
		HtmlBody: m.HTML,
		TextBody: m.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if res.ErrorCode != 0 {
		return fmt.Errorf("failed to send email: postmark error %d: %s", res.ErrorCode, res.Message)
	}
	return nil
}

// New returns a PostmarkMailer when serverToken is set and a LogMailer otherwise.
func New(serverToken, from string, logger logging.Logger) Mailer {
	if serverToken == "" {
		return NewLogMailer(logger)
	}
	return NewPostmarkMailer(serverToken, from)
}
