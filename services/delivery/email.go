package delivery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/mailer"

	"registration-system/config"
)

// EmailChannel delivers tickets over the application mailer. The QR
// image is attached inline; when only a URL is known (bulk resend) it is
// fetched back from storage first.
type EmailChannel struct {
	app core.App
	cfg *config.Config
	hc  *http.Client
}

func NewEmailChannel(app core.App, cfg *config.Config) *EmailChannel {
	return &EmailChannel{
		app: app,
		cfg: cfg,
		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *EmailChannel) Provider() Provider {
	return ProviderEmail
}

func (c *EmailChannel) Send(ctx context.Context, msg *Message) error {
	if msg.ToEmail == "" {
		return fmt.Errorf("email delivery: recipient address is empty")
	}

	attachments := msg.Attachments
	if attachments == nil && msg.MediaURL != "" {
		body, err := c.fetchMedia(ctx, msg.MediaURL)
		if err != nil {
			return fmt.Errorf("email delivery: fetch ticket image: %w", err)
		}
		defer body.Close()
		attachments = map[string]io.Reader{"ticket.png": body}
	}

	html := msg.HTML
	if html == "" {
		html = msg.Body
	}

	return c.app.NewMailClient().Send(&mailer.Message{
		From: mail.Address{
			Name:    c.cfg.SenderName,
			Address: c.cfg.SenderAddress,
		},
		To:          []mail.Address{{Address: msg.ToEmail}},
		Subject:     msg.Subject,
		HTML:        html,
		Attachments: attachments,
	})
}

func (c *EmailChannel) fetchMedia(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
