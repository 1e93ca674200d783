package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"registration-system/config"
)

// WhatsAppChannel talks to a WhatsApp messaging gateway over its REST
// API. Any Twilio-compatible gateway works; the channel only needs
// recipient, body and an optional media URL.
type WhatsAppChannel struct {
	// baseURL is the base url of the messaging gateway.
	baseURL string

	// token authenticates against the gateway.
	token string

	// sender is the registered WhatsApp business number.
	sender string

	// countryCode replaces a leading national zero, e.g. "+62".
	countryCode string

	// hc is the http client.
	hc *http.Client
}

func NewWhatsAppChannel(cfg *config.Config) *WhatsAppChannel {
	return &WhatsAppChannel{
		baseURL:     cfg.WhatsAppBaseURL,
		token:       cfg.WhatsAppToken,
		sender:      cfg.WhatsAppSender,
		countryCode: cfg.CountryCode,

		// set http client with timeout.
		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *WhatsAppChannel) Provider() Provider {
	return ProviderWhatsApp
}

type sendRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Body     string `json:"body"`
	MediaURL string `json:"mediaUrl,omitempty"`
}

type sendResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *WhatsAppChannel) Send(ctx context.Context, msg *Message) error {
	if msg.ToPhone == "" {
		return fmt.Errorf("whatsapp delivery: recipient number is empty")
	}

	payload, err := json.Marshal(sendRequest{
		From:     c.sender,
		To:       NormalizePhone(msg.ToPhone, c.countryCode),
		Body:     msg.Body,
		MediaURL: msg.MediaURL,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp delivery: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var gw sendResponse
		if json.Unmarshal(body, &gw) == nil && gw.Message != "" {
			return fmt.Errorf("whatsapp delivery: gateway status %d: %s", resp.StatusCode, gw.Message)
		}
		return fmt.Errorf("whatsapp delivery: gateway status %d", resp.StatusCode)
	}

	return nil
}
