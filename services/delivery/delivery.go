// Package delivery sends rendered ticket notifications to registrants
// through a configurable outbound channel.
package delivery

import (
	"context"
	"fmt"
	"io"

	"github.com/pocketbase/pocketbase/core"

	"registration-system/config"
)

// Provider identifies an outbound delivery backend.
type Provider string

const (
	ProviderEmail    Provider = "email"
	ProviderWhatsApp Provider = "whatsapp"
)

// Message is a rendered notification ready for dispatch. Channels pick
// the address and body variant they understand.
type Message struct {
	ToEmail string
	ToPhone string
	Subject string

	// Body is the plain-text rendering, HTML the rich one.
	Body string
	HTML string

	// MediaURL points at the stored ticket image. Email attaches it,
	// WhatsApp passes the URL through to the gateway.
	MediaURL string

	// Attachments carries the ticket image bytes when the sender still
	// has them (first delivery); when nil the channel falls back to
	// fetching MediaURL.
	Attachments map[string]io.Reader
}

// Channel is the narrow interface every delivery backend implements.
type Channel interface {
	Provider() Provider
	Send(ctx context.Context, msg *Message) error
}

// New creates the delivery channel selected in the configuration.
func New(provider Provider, app core.App, cfg *config.Config) (Channel, error) {
	switch provider {
	case ProviderEmail:
		return NewEmailChannel(app, cfg), nil
	case ProviderWhatsApp:
		return NewWhatsAppChannel(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported delivery provider: %s", provider)
	}
}
