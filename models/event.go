package models

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// Field types an event organizer can attach to a registration form.
const (
	FieldTypeText     = "text"
	FieldTypeTextarea = "textarea"
	FieldTypeSelect   = "select"
	FieldTypeCheckbox = "checkbox"
	FieldTypeRadio    = "radio"
)

// CustomField is one admin-defined registration question. FieldID is the
// storage key inside a customer's registration data.
type CustomField struct {
	FieldID     string   `json:"fieldId"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Options     []string `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
}

// IsChoice reports whether the field type carries a fixed option list.
func (f CustomField) IsChoice() bool {
	return f.Type == FieldTypeSelect || f.Type == FieldTypeCheckbox || f.Type == FieldTypeRadio
}

var validFieldTypes = map[string]bool{
	FieldTypeText:     true,
	FieldTypeTextarea: true,
	FieldTypeSelect:   true,
	FieldTypeCheckbox: true,
	FieldTypeRadio:    true,
}

// ValidateCustomFields checks a field definition list before it is stored
// on an event. Every entry needs fieldId, label and type; choice types
// need a non-empty options list; fieldIds must be unique per event.
func ValidateCustomFields(fields []CustomField) error {
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if f.FieldID == "" || f.Label == "" || f.Type == "" {
			return fmt.Errorf("custom field %d: fieldId, label and type are required", i)
		}
		if !validFieldTypes[f.Type] {
			return fmt.Errorf("custom field %q: unknown type %q", f.FieldID, f.Type)
		}
		if f.IsChoice() && len(f.Options) == 0 {
			return fmt.Errorf("custom field %q: type %s requires a non-empty options list", f.FieldID, f.Type)
		}
		if seen[f.FieldID] {
			return fmt.Errorf("custom field %q: duplicate fieldId", f.FieldID)
		}
		seen[f.FieldID] = true
	}
	return nil
}

// EventRef is the compact event representation embedded in customer
// responses, matching the event fields the listing endpoints expose.
type EventRef struct {
	ID      string         `json:"id"`
	Nama    string         `json:"nama,omitempty"`
	Tanggal types.DateTime `json:"tanggal,omitempty"`
	Lokasi  string         `json:"lokasi,omitempty"`
}

type Event struct {
	ID                 string         `json:"id"`
	Nama               string         `json:"nama"`
	Tanggal            types.DateTime `json:"tanggal"`
	Lokasi             string         `json:"lokasi"`
	Deskripsi          string         `json:"deskripsi,omitempty"`
	BackgroundColor    string         `json:"backgroundColor,omitempty"`
	HasBackgroundImage bool           `json:"hasBackgroundImage"`
	RegistrationSlug   string         `json:"registrationSlug"`
	CustomFields       []CustomField  `json:"customFields"`
	Created            types.DateTime `json:"createdAt"`
}

// Ref returns the compact representation embedded in customer responses.
func (e Event) Ref() EventRef {
	return EventRef{ID: e.ID, Nama: e.Nama, Tanggal: e.Tanggal, Lokasi: e.Lokasi}
}

// EventFromRecord maps a stored event record to its API shape. The image
// itself is never inlined; clients fetch it from the image endpoint.
func EventFromRecord(record *core.Record) Event {
	e := Event{
		ID:                 record.Id,
		Nama:               record.GetString("nama"),
		Tanggal:            record.GetDateTime("tanggal"),
		Lokasi:             record.GetString("lokasi"),
		Deskripsi:          record.GetString("deskripsi"),
		BackgroundColor:    record.GetString("backgroundColor"),
		HasBackgroundImage: record.GetString("backgroundImage") != "",
		RegistrationSlug:   record.GetString("registrationSlug"),
		Created:            record.GetDateTime("created"),
	}
	if err := record.UnmarshalJSONField("customFields", &e.CustomFields); err != nil || e.CustomFields == nil {
		e.CustomFields = []CustomField{}
	}
	return e
}
