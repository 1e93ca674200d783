package services

import (
	"encoding/json"
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"
	qrcode "github.com/skip2/go-qrcode"

	"registration-system/config"
)

// TicketPayload is what the door scanner reads back from the QR code.
type TicketPayload struct {
	CustomerID string `json:"customerId"`
	EventID    string `json:"eventId"`
	Email      string `json:"email"`
}

func EncodeTicketPayload(customerID, eventID, email string) ([]byte, error) {
	return json.Marshal(TicketPayload{
		CustomerID: customerID,
		EventID:    eventID,
		Email:      email,
	})
}

// IssuedTicket is a freshly rendered ticket asset: the durable storage
// URL plus the PNG bytes, so the first delivery can attach the image
// without fetching it back from storage.
type IssuedTicket struct {
	URL string
	PNG []byte
}

// TicketService turns a persisted registration into a scannable ticket
// asset: QR image rendered from the payload, stored through the app's
// file storage, and referenced by a durable URL on the record.
type TicketService struct {
	app core.App
	cfg *config.Config
}

func NewTicketService(app core.App, cfg *config.Config) *TicketService {
	return &TicketService{app: app, cfg: cfg}
}

// Issue generates the QR asset for an already saved customer record and
// writes the barcode URL back onto it. The record is mutated twice over
// its lifetime: once to exist, once here to attach the ticket asset.
func (s *TicketService) Issue(record *core.Record) (*IssuedTicket, error) {
	payload, err := EncodeTicketPayload(record.Id, record.GetString("event"), record.GetString("email"))
	if err != nil {
		return nil, fmt.Errorf("ticket: encode payload: %w", err)
	}

	png, err := qrcode.Encode(string(payload), qrcode.Medium, 512)
	if err != nil {
		return nil, fmt.Errorf("ticket: render qr: %w", err)
	}

	file, err := filesystem.NewFileFromBytes(png, fmt.Sprintf("qr-%s.png", record.Id))
	if err != nil {
		return nil, fmt.Errorf("ticket: wrap qr file: %w", err)
	}

	url := s.FileURL(record, file.Name)

	record.Set("barcodeFile", file)
	record.Set("barcode", url)
	if err := s.app.Save(record); err != nil {
		return nil, fmt.Errorf("ticket: attach asset: %w", err)
	}

	return &IssuedTicket{URL: url, PNG: png}, nil
}

// FileURL builds the public URL for a file stored on a record.
func (s *TicketService) FileURL(record *core.Record, filename string) string {
	return fmt.Sprintf("%s/api/files/%s/%s/%s",
		s.cfg.PublicURL, record.Collection().Name, record.Id, filename)
}
