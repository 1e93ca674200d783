package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"registration-system/config"
	"registration-system/models"
	"registration-system/monitoring"
	"registration-system/services/delivery"
	"registration-system/status"
	"registration-system/utils"
)

// fixedCustomerKeys are the top-level registration keys; everything else
// in a submission body is a dynamic custom-field answer.
var fixedCustomerKeys = map[string]bool{
	"email":  true,
	"noHp":   true,
	"nama":   true,
	"alamat": true,
	"event":  true,
}

// CustomerInput is a parsed registration submission: the fixed contact
// fields plus whatever dynamic keys the form carried.
type CustomerInput struct {
	Email   string
	NoHp    string
	Nama    string
	Alamat  string
	EventID string
	Dynamic models.RegistrationData
}

// ParseCustomerInput splits a raw JSON body into fixed fields and the
// dynamic remainder. Dynamic values must be strings or string lists.
func ParseCustomerInput(data []byte) (*CustomerInput, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrInvalidInput, err)
	}

	in := &CustomerInput{Dynamic: models.RegistrationData{}}
	for key, value := range raw {
		if fixedCustomerKeys[key] {
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return nil, fmt.Errorf("%w: field %q must be a string", status.ErrInvalidInput, key)
			}
			switch key {
			case "email":
				in.Email = s
			case "noHp":
				in.NoHp = s
			case "nama":
				in.Nama = s
			case "alamat":
				in.Alamat = s
			case "event":
				in.EventID = s
			}
			continue
		}

		var fv models.FieldValue
		if err := json.Unmarshal(value, &fv); err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", status.ErrInvalidInput, key, err)
		}
		in.Dynamic[key] = fv
	}
	return in, nil
}

func (in *CustomerInput) validateForCreate() error {
	if in.Email == "" || in.NoHp == "" || in.Nama == "" || in.Alamat == "" || in.EventID == "" {
		return fmt.Errorf("%w: email, noHp, nama, alamat and event are required", status.ErrInvalidInput)
	}
	return nil
}

// RegistrationResult reports a created registration. Warning carries a
// delivery or issuance failure that did not prevent the registration
// itself; the caller must surface it for manual follow-up.
type RegistrationResult struct {
	Customer models.Customer `json:"customer"`
	Message  string          `json:"message,omitempty"`
	Warning  string          `json:"warning,omitempty"`
}

// VerificationSummary is the display-ready response for a door scan,
// with the registration bag re-keyed by field label.
type VerificationSummary struct {
	Nama             string                       `json:"nama"`
	Email            string                       `json:"email"`
	NoHp             string                       `json:"noHp"`
	VerifiedAt       types.DateTime               `json:"verifiedAt"`
	Event            string                       `json:"event"`
	RegistrationData map[string]models.FieldValue `json:"registrationData"`
}

// ResendResult is the per-recipient outcome of a bulk resend.
type ResendResult struct {
	CustomerID string `json:"customerId"`
	Recipient  string `json:"recipient"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// CustomerService owns the registration lifecycle: create with ticket
// issuance and notification, partial update with the event-change
// cascade, listing, soft delete, one-time verification and bulk resend.
type CustomerService struct {
	app     core.App
	cfg     *config.Config
	tickets *TicketService
	channel delivery.Channel
	breaker *utils.CircuitBreaker
	feed    *CheckinFeed
}

func NewCustomerService(app core.App, cfg *config.Config, tickets *TicketService, channel delivery.Channel, feed *CheckinFeed) *CustomerService {
	return &CustomerService{
		app:     app,
		cfg:     cfg,
		tickets: tickets,
		channel: channel,
		breaker: utils.NewCircuitBreaker("delivery", 5, 30*time.Second),
		feed:    feed,
	}
}

// Register creates a customer record, issues its ticket asset and
// dispatches the notification. Issuance or delivery failures never roll
// the record back; they come back as a warning on the result.
func (s *CustomerService) Register(ctx context.Context, in *CustomerInput) (*RegistrationResult, error) {
	if err := in.validateForCreate(); err != nil {
		return nil, err
	}

	eventRecord, err := s.app.FindRecordById("events", in.EventID)
	if err != nil {
		return nil, status.ErrEventNotFound
	}
	event := models.EventFromRecord(eventRecord)

	// Point-in-time capacity check. Two registrations racing past this
	// line near the cap can both get through; the cap is advisory.
	if s.cfg.MaxRegistrations > 0 {
		count, err := s.countForEvent(in.EventID)
		if err != nil {
			return nil, err
		}
		if count >= int64(s.cfg.MaxRegistrations) {
			return nil, status.ErrCapacityReached
		}
	}

	bag := FilterRegistrationData(event.CustomFields, in.Dynamic)
	if err := ValidateRequiredFields(event.CustomFields, bag); err != nil {
		return nil, err
	}

	collection, err := s.app.FindCollectionByNameOrId("customers")
	if err != nil {
		return nil, err
	}
	record := core.NewRecord(collection)
	record.Set("email", in.Email)
	record.Set("noHp", in.NoHp)
	record.Set("nama", in.Nama)
	record.Set("alamat", in.Alamat)
	record.Set("event", in.EventID)
	record.Set("registrationData", bag)

	if err := s.app.Save(record); err != nil {
		return nil, err
	}
	monitoring.TrackRegistration(in.EventID)

	result := &RegistrationResult{}

	ticket, err := s.tickets.Issue(record)
	if err != nil {
		slog.Error("ticket issuance failed", "customer_id", record.Id, "error", err)
		result.Customer = models.CustomerFromRecord(record)
		result.Customer.Event = event.Ref()
		result.Warning = "registration created but ticket issuance failed: " + err.Error()
		return result, nil
	}

	result.Customer = models.CustomerFromRecord(record)
	result.Customer.Event = event.Ref()

	if err := s.deliver(ctx, result.Customer, event, ticket); err != nil {
		slog.Error("ticket delivery failed", "customer_id", record.Id, "error", err)
		result.Warning = "registration created but ticket delivery failed: " + err.Error()
		return result, nil
	}

	result.Message = "registration created and ticket sent"
	return result, nil
}

func (s *CustomerService) deliver(ctx context.Context, customer models.Customer, event models.Event, ticket *IssuedTicket) error {
	msg, err := RenderTicketMessage(customer, event)
	if err != nil {
		return err
	}

	out := &delivery.Message{
		ToEmail:  customer.Email,
		ToPhone:  customer.NoHp,
		Subject:  msg.Subject,
		Body:     msg.Body,
		HTML:     msg.HTML,
		MediaURL: ticket.URL,
	}
	// A resend only knows the stored URL; the channel fetches it then.
	if len(ticket.PNG) > 0 {
		out.Attachments = map[string]io.Reader{"ticket.png": bytes.NewReader(ticket.PNG)}
	}

	err = s.breaker.Do(ctx, func(ctx context.Context) error {
		return s.channel.Send(ctx, out)
	})
	if err != nil {
		monitoring.TrackDelivery(string(s.channel.Provider()), "failure")
		return err
	}
	monitoring.TrackDelivery(string(s.channel.Provider()), "success")
	return nil
}

// Update applies a partial update. Changing the owning event discards
// the existing registration bag before any new dynamic fields land;
// answers keyed to the old schema mean nothing under the new one.
func (s *CustomerService) Update(ctx context.Context, id string, in *CustomerInput) (*models.Customer, error) {
	record, err := s.app.FindRecordById("customers", id)
	if err != nil {
		return nil, status.ErrCustomerNotFound
	}

	if in.Email != "" {
		record.Set("email", in.Email)
	}
	if in.NoHp != "" {
		record.Set("noHp", in.NoHp)
	}
	if in.Nama != "" {
		record.Set("nama", in.Nama)
	}
	if in.Alamat != "" {
		record.Set("alamat", in.Alamat)
	}

	bag := models.RegistrationData{}
	if err := record.UnmarshalJSONField("registrationData", &bag); err != nil {
		bag = models.RegistrationData{}
	}

	if in.EventID != "" && in.EventID != record.GetString("event") {
		if _, err := s.app.FindRecordById("events", in.EventID); err != nil {
			return nil, status.ErrEventNotFound
		}
		record.Set("event", in.EventID)
		// Schema changed: the old bag is no longer valid.
		bag = models.RegistrationData{}
	}

	if len(in.Dynamic) > 0 {
		eventRecord, err := s.app.FindRecordById("events", record.GetString("event"))
		if err != nil {
			return nil, status.ErrEventNotFound
		}
		event := models.EventFromRecord(eventRecord)
		for key, value := range FilterRegistrationData(event.CustomFields, in.Dynamic) {
			bag[key] = value
		}
	}
	record.Set("registrationData", bag)

	if err := s.app.Save(record); err != nil {
		return nil, err
	}

	customer := models.CustomerFromRecord(record)
	return &customer, nil
}

// List returns all non-deleted customers, newest first, with the owning
// event summary populated.
func (s *CustomerService) List(ctx context.Context) ([]models.Customer, error) {
	records, err := s.app.FindRecordsByFilter(
		"customers",
		"deletedAt = {:empty}",
		"-created",
		0,
		0,
		dbx.Params{"empty": ""},
	)
	if err != nil {
		return nil, err
	}

	customers := make([]models.Customer, 0, len(records))
	refs := map[string]models.EventRef{}
	for _, record := range records {
		customer := models.CustomerFromRecord(record)

		eventID := customer.Event.ID
		ref, ok := refs[eventID]
		if !ok {
			if eventRecord, err := s.app.FindRecordById("events", eventID); err == nil {
				ref = models.EventFromRecord(eventRecord).Ref()
			} else {
				ref = models.EventRef{ID: eventID}
			}
			refs[eventID] = ref
		}
		customer.Event = ref

		customers = append(customers, customer)
	}
	return customers, nil
}

// Get returns one non-deleted customer.
func (s *CustomerService) Get(ctx context.Context, id string) (*models.Customer, error) {
	record, err := s.app.FindRecordById("customers", id)
	if err != nil {
		return nil, status.ErrCustomerNotFound
	}
	if !record.GetDateTime("deletedAt").IsZero() {
		return nil, status.ErrCustomerNotFound
	}

	customer := models.CustomerFromRecord(record)
	if eventRecord, err := s.app.FindRecordById("events", customer.Event.ID); err == nil {
		customer.Event = models.EventFromRecord(eventRecord).Ref()
	}
	return &customer, nil
}

// SoftDelete marks a customer deleted; the record stays in the store.
func (s *CustomerService) SoftDelete(ctx context.Context, id string) error {
	record, err := s.app.FindRecordById("customers", id)
	if err != nil {
		return status.ErrCustomerNotFound
	}
	if !record.GetDateTime("deletedAt").IsZero() {
		return status.ErrCustomerNotFound
	}

	record.Set("deletedAt", types.NowDateTime())
	return s.app.Save(record)
}

// CheckVerifiable is the verification gate decision: it reports why a
// customer cannot be verified for the supplied event, or nil when the
// transition is allowed.
func CheckVerifiable(customer models.Customer, eventID string) error {
	switch {
	case !customer.DeletedAt.IsZero():
		return status.ErrAlreadyDeleted
	case customer.IsVerified:
		return status.ErrAlreadyVerified
	case customer.Event.ID != eventID:
		return status.ErrEventMismatch
	}
	return nil
}

// Verify transitions a ticket from unverified to verified exactly once.
// The final transition is a conditional UPDATE keyed on the unverified
// state, so two simultaneous scans cannot both succeed: the loser
// matches zero rows and gets the already-verified conflict.
func (s *CustomerService) Verify(ctx context.Context, customerID, eventID string) (*VerificationSummary, error) {
	record, err := s.app.FindRecordById("customers", customerID)
	if err != nil {
		monitoring.TrackVerification(eventID, "not_found")
		return nil, status.ErrCustomerNotFound
	}

	customer := models.CustomerFromRecord(record)
	if err := CheckVerifiable(customer, eventID); err != nil {
		monitoring.TrackVerification(eventID, "conflict")
		return nil, err
	}

	now := types.NowDateTime()
	res, err := s.app.DB().
		Update(
			"customers",
			dbx.Params{"isVerified": true, "verifiedAt": now.String()},
			dbx.HashExp{"id": customerID, "isVerified": false},
		).
		Execute()
	if err != nil {
		return nil, err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		// Lost the race against a concurrent scan of the same ticket.
		monitoring.TrackVerification(eventID, "conflict")
		return nil, status.ErrAlreadyVerified
	}
	monitoring.TrackVerification(eventID, "verified")

	summary := &VerificationSummary{
		Nama:             customer.Nama,
		Email:            customer.Email,
		NoHp:             customer.NoHp,
		VerifiedAt:       now,
		RegistrationData: map[string]models.FieldValue{},
	}

	if eventRecord, err := s.app.FindRecordById("events", eventID); err == nil {
		event := models.EventFromRecord(eventRecord)
		summary.Event = event.Nama
		summary.RegistrationData = ResolveLabels(event.CustomFields, customer.RegistrationData)
	} else {
		for key, value := range customer.RegistrationData {
			summary.RegistrationData[key] = value
		}
	}

	s.feed.PublishCheckin(eventID, summary)

	return summary, nil
}

// ResendTickets re-renders and re-dispatches notifications for a batch
// of existing registrations, pausing between sends to stay inside the
// provider's rate limits.
func (s *CustomerService) ResendTickets(ctx context.Context, customerIDs []string) []ResendResult {
	results := make([]ResendResult, 0, len(customerIDs))

	for i, id := range customerIDs {
		if i > 0 && s.cfg.ResendDelay > 0 {
			select {
			case <-ctx.Done():
				results = append(results, ResendResult{CustomerID: id, Error: ctx.Err().Error()})
				continue
			case <-time.After(s.cfg.ResendDelay):
			}
		}
		results = append(results, s.resendOne(ctx, id))
	}
	return results
}

func (s *CustomerService) resendOne(ctx context.Context, id string) ResendResult {
	result := ResendResult{CustomerID: id}

	record, err := s.app.FindRecordById("customers", id)
	if err != nil || !record.GetDateTime("deletedAt").IsZero() {
		result.Error = status.ErrCustomerNotFound.Error()
		return result
	}
	customer := models.CustomerFromRecord(record)
	result.Recipient = recipientFor(s.channel.Provider(), customer)

	eventRecord, err := s.app.FindRecordById("events", customer.Event.ID)
	if err != nil {
		result.Error = status.ErrEventNotFound.Error()
		return result
	}
	event := models.EventFromRecord(eventRecord)

	if err := s.deliver(ctx, customer, event, &IssuedTicket{URL: customer.Barcode}); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	return result
}

func recipientFor(provider delivery.Provider, customer models.Customer) string {
	if provider == delivery.ProviderWhatsApp {
		return customer.NoHp
	}
	return customer.Email
}

func (s *CustomerService) countForEvent(eventID string) (int64, error) {
	return s.app.CountRecords("customers", dbx.HashExp{"event": eventID, "deletedAt": ""})
}

// CountForEvent exposes the non-deleted registration count per event.
func (s *CustomerService) CountForEvent(ctx context.Context, eventID string) (int64, error) {
	if _, err := s.app.FindRecordById("events", eventID); err != nil {
		return 0, status.ErrEventNotFound
	}
	return s.countForEvent(eventID)
}
