package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registration-system/models"
	"registration-system/status"
)

var formFields = []models.CustomField{
	{FieldID: "company", Label: "Perusahaan", Type: models.FieldTypeText, Required: true},
	{FieldID: "session", Label: "Sesi", Type: models.FieldTypeSelect, Options: []string{"pagi", "siang"}},
	{FieldID: "interests", Label: "Minat", Type: models.FieldTypeCheckbox, Options: []string{"tech", "design"}},
}

func TestFilterRegistrationData_DropsUnknownKeys(t *testing.T) {
	submitted := models.RegistrationData{
		"company":  models.StringValue("PT Maju Jaya"),
		"session":  models.StringValue("pagi"),
		"stray":    models.StringValue("should disappear"),
		"honeypot": models.StringValue("bot"),
	}

	got := FilterRegistrationData(formFields, submitted)

	assert.Len(t, got, 2)
	assert.Equal(t, "PT Maju Jaya", got["company"].Text)
	assert.Equal(t, "pagi", got["session"].Text)
	assert.NotContains(t, got, "stray")
	assert.NotContains(t, got, "honeypot")
}

func TestFilterRegistrationData_KeepsOnlyIntersection(t *testing.T) {
	submitted := models.RegistrationData{
		"interests": models.ListValue([]string{"tech"}),
	}

	got := FilterRegistrationData(formFields, submitted)

	assert.Len(t, got, 1)
	assert.Equal(t, []string{"tech"}, got["interests"].List)
}

func TestFilterRegistrationData_PassthroughWithoutDefinitions(t *testing.T) {
	submitted := models.RegistrationData{
		"anything": models.StringValue("goes"),
		"really":   models.ListValue([]string{"a", "b"}),
	}

	got := FilterRegistrationData(nil, submitted)

	assert.Equal(t, submitted, got)
}

func TestFilterRegistrationData_EmptySubmission(t *testing.T) {
	got := FilterRegistrationData(formFields, models.RegistrationData{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestValidateRequiredFields_Satisfied(t *testing.T) {
	bag := models.RegistrationData{
		"company": models.StringValue("PT Maju Jaya"),
	}

	assert.NoError(t, ValidateRequiredFields(formFields, bag))
}

func TestValidateRequiredFields_Missing(t *testing.T) {
	err := ValidateRequiredFields(formFields, models.RegistrationData{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrInvalidInput))
	assert.Contains(t, err.Error(), "Perusahaan")
}

func TestValidateRequiredFields_EmptyAnswerCountsAsMissing(t *testing.T) {
	bag := models.RegistrationData{
		"company": models.StringValue(""),
	}

	err := ValidateRequiredFields(formFields, bag)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrInvalidInput))
}

func TestValidateRequiredFields_EmptyListCountsAsMissing(t *testing.T) {
	fields := []models.CustomField{
		{FieldID: "interests", Label: "Minat", Type: models.FieldTypeCheckbox, Required: true, Options: []string{"tech"}},
	}
	bag := models.RegistrationData{
		"interests": models.ListValue(nil),
	}

	assert.Error(t, ValidateRequiredFields(fields, bag))
}

func TestValidateRequiredFields_OptionalFieldsMayBeAbsent(t *testing.T) {
	fields := []models.CustomField{
		{FieldID: "notes", Label: "Catatan", Type: models.FieldTypeTextarea},
	}

	assert.NoError(t, ValidateRequiredFields(fields, models.RegistrationData{}))
}

func TestResolveLabels_MapsKnownKeys(t *testing.T) {
	bag := models.RegistrationData{
		"company":   models.StringValue("PT Maju Jaya"),
		"interests": models.ListValue([]string{"tech", "design"}),
	}

	got := ResolveLabels(formFields, bag)

	assert.Equal(t, "PT Maju Jaya", got["Perusahaan"].Text)
	assert.Equal(t, []string{"tech", "design"}, got["Minat"].List)
	assert.NotContains(t, got, "company")
}

func TestResolveLabels_FallsBackToRawKey(t *testing.T) {
	bag := models.RegistrationData{
		"legacyField": models.StringValue("kept"),
	}

	got := ResolveLabels(formFields, bag)

	assert.Equal(t, "kept", got["legacyField"].Text)
}

func TestFieldLabels(t *testing.T) {
	labels := FieldLabels(formFields)

	assert.Equal(t, "Perusahaan", labels["company"])
	assert.Equal(t, "Sesi", labels["session"])
	assert.Equal(t, "Minat", labels["interests"])
}
