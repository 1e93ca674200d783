package services

import (
	"fmt"
	"strings"

	"registration-system/models"
	"registration-system/status"
)

// FilterRegistrationData reduces a submitted dynamic-field map to the
// subset the event actually defines. Unknown keys are dropped silently;
// the submission form may carry stray inputs and those are not the
// registrant's fault. An event with no custom fields accepts everything
// as-is.
func FilterRegistrationData(fields []models.CustomField, submitted models.RegistrationData) models.RegistrationData {
	out := models.RegistrationData{}
	if len(fields) == 0 {
		for key, value := range submitted {
			out[key] = value
		}
		return out
	}

	valid := make(map[string]bool, len(fields))
	for _, f := range fields {
		valid[f.FieldID] = true
	}

	for key, value := range submitted {
		if valid[key] {
			out[key] = value
		}
	}
	return out
}

// ValidateRequiredFields checks that every required custom field has a
// non-empty answer in the bag. Returns a caller-facing error naming the
// missing fields by label.
func ValidateRequiredFields(fields []models.CustomField, bag models.RegistrationData) error {
	var missing []string
	for _, f := range fields {
		if !f.Required {
			continue
		}
		value, ok := bag[f.FieldID]
		if !ok || value.Display() == "" {
			missing = append(missing, f.Label)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", status.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// FieldLabels builds the fieldId to label lookup used for display.
func FieldLabels(fields []models.CustomField) map[string]string {
	labels := make(map[string]string, len(fields))
	for _, f := range fields {
		labels[f.FieldID] = f.Label
	}
	return labels
}

// ResolveLabels re-keys a registration bag by display label. Keys with no
// matching definition (the event's fields changed after registration)
// fall back to the raw key.
func ResolveLabels(fields []models.CustomField, bag models.RegistrationData) map[string]models.FieldValue {
	labels := FieldLabels(fields)
	out := make(map[string]models.FieldValue, len(bag))
	for key, value := range bag {
		label, ok := labels[key]
		if !ok {
			label = key
		}
		out[label] = value
	}
	return out
}
