package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"

	"registration-system/models"
	"registration-system/services"
	"registration-system/utils"
)

type EventHandler struct {
	app       *pocketbase.PocketBase
	customers *services.CustomerService
}

func NewEventHandler(app *pocketbase.PocketBase, customers *services.CustomerService) *EventHandler {
	return &EventHandler{app: app, customers: customers}
}

type eventRequest struct {
	Nama            string          `json:"nama"`
	Tanggal         string          `json:"tanggal"`
	Lokasi          string          `json:"lokasi"`
	Deskripsi       *string         `json:"deskripsi"`
	BackgroundColor string          `json:"backgroundColor"`
	CustomFields    json.RawMessage `json:"customFields"`

	// Base64 image payload, optionally with a data URI prefix. The form
	// uploads images inline instead of multipart.
	BackgroundImage       string `json:"backgroundImage"`
	BackgroundImageType   string `json:"backgroundImageType"`
	RemoveBackgroundImage bool   `json:"removeBackgroundImage"`
}

// parseCustomFields accepts either a JSON array or, for older form
// clients, the same array wrapped in a string.
func parseCustomFields(raw json.RawMessage) ([]models.CustomField, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	data := []byte(raw)
	var wrapped string
	if err := json.Unmarshal(data, &wrapped); err == nil {
		data = []byte(wrapped)
	}

	var fields []models.CustomField
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("customFields must be an array of field definitions")
	}
	return fields, nil
}

func decodeImage(payload, mimeType string) (*filesystem.File, error) {
	if idx := strings.Index(payload, ","); strings.HasPrefix(payload, "data:") && idx >= 0 {
		payload = payload[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("backgroundImage must be base64 encoded")
	}

	ext := ".jpg"
	switch mimeType {
	case "image/png":
		ext = ".png"
	case "image/gif":
		ext = ".gif"
	case "image/webp":
		ext = ".webp"
	}
	return filesystem.NewFileFromBytes(data, "background"+ext)
}

// GetEvents - List all events, newest first
func (h *EventHandler) GetEvents(e *core.RequestEvent) error {
	var records []*core.Record
	if err := h.app.RecordQuery("events").OrderBy("created DESC").All(&records); err != nil {
		return toAPIError(err)
	}

	events := make([]models.Event, 0, len(records))
	for _, record := range records {
		events = append(events, models.EventFromRecord(record))
	}
	return e.JSON(http.StatusOK, events)
}

// GetEvent - Get a single event by id
func (h *EventHandler) GetEvent(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("events", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}
	return e.JSON(http.StatusOK, models.EventFromRecord(record))
}

// GetEventBySlug - Public lookup for the registration page
func (h *EventHandler) GetEventBySlug(e *core.RequestEvent) error {
	record, err := h.app.FindFirstRecordByFilter(
		"events",
		"registrationSlug = {:slug}",
		dbx.Params{"slug": e.Request.PathValue("slug")},
	)
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}
	return e.JSON(http.StatusOK, models.EventFromRecord(record))
}

// GetEventImage - Serve the display background from file storage
func (h *EventHandler) GetEventImage(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("events", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}

	filename := record.GetString("backgroundImage")
	if filename == "" {
		return apis.NewNotFoundError("Image not found", nil)
	}

	fsys, err := h.app.NewFilesystem()
	if err != nil {
		return toAPIError(err)
	}
	defer fsys.Close()

	e.Response.Header().Set("Cache-Control", "public, max-age=86400")
	return fsys.Serve(e.Response, e.Request, record.BaseFilesPath()+"/"+filename, filename)
}

// CreateEvent - Create an event with its registration schema (admin)
func (h *EventHandler) CreateEvent(e *core.RequestEvent) error {
	var req eventRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Nama == "" || req.Tanggal == "" || req.Lokasi == "" {
		return apis.NewBadRequestError("nama, tanggal and lokasi are required", nil)
	}

	fields, err := parseCustomFields(req.CustomFields)
	if err != nil {
		return apis.NewBadRequestError(err.Error(), nil)
	}
	if err := models.ValidateCustomFields(fields); err != nil {
		return apis.NewBadRequestError(err.Error(), nil)
	}
	if fields == nil {
		fields = []models.CustomField{}
	}

	slug, err := utils.Slugify(req.Nama)
	if err != nil {
		return toAPIError(err)
	}

	collection, err := h.app.FindCollectionByNameOrId("events")
	if err != nil {
		return toAPIError(err)
	}
	record := core.NewRecord(collection)
	record.Set("nama", req.Nama)
	record.Set("tanggal", req.Tanggal)
	record.Set("lokasi", req.Lokasi)
	if req.Deskripsi != nil {
		record.Set("deskripsi", *req.Deskripsi)
	}
	record.Set("backgroundColor", req.BackgroundColor)
	record.Set("registrationSlug", slug)
	record.Set("customFields", fields)

	if req.BackgroundImage != "" {
		file, err := decodeImage(req.BackgroundImage, req.BackgroundImageType)
		if err != nil {
			return apis.NewBadRequestError(err.Error(), nil)
		}
		record.Set("backgroundImage", file)
	}

	if err := h.app.Save(record); err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusCreated, models.EventFromRecord(record))
}

// UpdateEvent - Partial update of an event (admin)
func (h *EventHandler) UpdateEvent(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("events", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}

	var req eventRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if req.Nama != "" {
		record.Set("nama", req.Nama)
	}
	if req.Tanggal != "" {
		record.Set("tanggal", req.Tanggal)
	}
	if req.Lokasi != "" {
		record.Set("lokasi", req.Lokasi)
	}
	if req.Deskripsi != nil {
		record.Set("deskripsi", *req.Deskripsi)
	}
	if req.BackgroundColor != "" {
		record.Set("backgroundColor", req.BackgroundColor)
	}

	if len(req.CustomFields) > 0 {
		fields, err := parseCustomFields(req.CustomFields)
		if err != nil {
			return apis.NewBadRequestError(err.Error(), nil)
		}
		if err := models.ValidateCustomFields(fields); err != nil {
			return apis.NewBadRequestError(err.Error(), nil)
		}
		record.Set("customFields", fields)
	}

	if req.RemoveBackgroundImage {
		record.Set("backgroundImage", "")
	} else if req.BackgroundImage != "" {
		file, err := decodeImage(req.BackgroundImage, req.BackgroundImageType)
		if err != nil {
			return apis.NewBadRequestError(err.Error(), nil)
		}
		record.Set("backgroundImage", file)
	}

	if err := h.app.Save(record); err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, models.EventFromRecord(record))
}

// DeleteEvent - Remove an event entirely (admin)
func (h *EventHandler) DeleteEvent(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("events", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}

	if err := h.app.Delete(record); err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]string{"message": "Event deleted"})
}

// UpdateCustomFields - Replace the registration schema wholesale (admin)
func (h *EventHandler) UpdateCustomFields(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("events", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}

	var req struct {
		CustomFields []models.CustomField `json:"customFields"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.CustomFields == nil {
		return apis.NewBadRequestError("customFields must be an array", nil)
	}
	if err := models.ValidateCustomFields(req.CustomFields); err != nil {
		return apis.NewBadRequestError(err.Error(), nil)
	}

	record.Set("customFields", req.CustomFields)
	if err := h.app.Save(record); err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, models.EventFromRecord(record))
}

// GetEventCount - Count non-deleted registrations for an event
func (h *EventHandler) GetEventCount(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("id")

	count, err := h.customers.CountForEvent(e.Request.Context(), eventID)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"eventId": eventID,
		"count":   count,
	})
}
