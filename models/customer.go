package models

import (
	"encoding/json"
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// FieldValue is a single registration answer: a scalar string or, for
// checkbox-style fields, an ordered list of selections.
type FieldValue struct {
	Text   string
	List   []string
	IsList bool
}

func StringValue(s string) FieldValue {
	return FieldValue{Text: s}
}

func ListValue(items []string) FieldValue {
	return FieldValue{List: items, IsList: true}
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.IsList {
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Text)
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case string:
		*v = StringValue(val)
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("registration value list must contain only strings, got %T", item)
			}
			items = append(items, s)
		}
		*v = ListValue(items)
	case float64:
		// Numeric answers from older form clients; stored as text.
		*v = StringValue(formatNumber(val))
	case bool:
		*v = StringValue(fmt.Sprintf("%t", val))
	case nil:
		*v = StringValue("")
	default:
		return fmt.Errorf("unsupported registration value type %T", raw)
	}
	return nil
}

// Display renders the value for message templates and verification
// summaries. List values are comma joined.
func (v FieldValue) Display() string {
	if v.IsList {
		out := ""
		for i, item := range v.List {
			if i > 0 {
				out += ", "
			}
			out += item
		}
		return out
	}
	return v.Text
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// RegistrationData is the per-customer bag of custom field answers,
// keyed by the owning event's fieldIds.
type RegistrationData map[string]FieldValue

type Customer struct {
	ID               string           `json:"id"`
	Email            string           `json:"email"`
	NoHp             string           `json:"noHp"`
	Nama             string           `json:"nama"`
	Alamat           string           `json:"alamat"`
	Event            EventRef         `json:"event"`
	RegistrationData RegistrationData `json:"registrationData"`
	IsVerified       bool             `json:"isVerified"`
	VerifiedAt       types.DateTime   `json:"verifiedAt"`
	Barcode          string           `json:"barcode,omitempty"`
	Created          types.DateTime   `json:"createdAt"`
	DeletedAt        types.DateTime   `json:"-"`
}

func CustomerFromRecord(record *core.Record) Customer {
	c := Customer{
		ID:         record.Id,
		Email:      record.GetString("email"),
		NoHp:       record.GetString("noHp"),
		Nama:       record.GetString("nama"),
		Alamat:     record.GetString("alamat"),
		Event:      EventRef{ID: record.GetString("event")},
		IsVerified: record.GetBool("isVerified"),
		VerifiedAt: record.GetDateTime("verifiedAt"),
		Barcode:    record.GetString("barcode"),
		Created:    record.GetDateTime("created"),
		DeletedAt:  record.GetDateTime("deletedAt"),
	}
	if err := record.UnmarshalJSONField("registrationData", &c.RegistrationData); err != nil || c.RegistrationData == nil {
		c.RegistrationData = RegistrationData{}
	}
	return c
}
