package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registration-system/models"
)

func testTicketCustomer() models.Customer {
	return models.Customer{
		ID:    "cust1",
		Nama:  "Budi Santoso",
		Email: "budi@example.com",
		NoHp:  "081234567890",
		RegistrationData: models.RegistrationData{
			"company":   models.StringValue("PT Maju Jaya"),
			"interests": models.ListValue([]string{"tech", "design"}),
		},
	}
}

func testTicketEvent() models.Event {
	return models.Event{
		ID:   "evt1",
		Nama: "Tech Conference 2026",
		CustomFields: []models.CustomField{
			{FieldID: "company", Label: "Perusahaan", Type: models.FieldTypeText},
			{FieldID: "interests", Label: "Minat", Type: models.FieldTypeCheckbox, Options: []string{"tech", "design"}},
		},
	}
}

func TestRenderTicketMessage(t *testing.T) {
	msg, err := RenderTicketMessage(testTicketCustomer(), testTicketEvent())
	require.NoError(t, err)

	assert.Equal(t, "Tiket Event: Tech Conference 2026", msg.Subject)

	assert.Contains(t, msg.Body, "Halo *Budi Santoso*")
	assert.Contains(t, msg.Body, "*Tech Conference 2026*")
	assert.Contains(t, msg.Body, "*ID Tiket:* cust1")
	assert.Contains(t, msg.Body, "• *Perusahaan:* PT Maju Jaya")
	assert.Contains(t, msg.Body, "• *Minat:* tech, design")

	assert.Contains(t, msg.HTML, "<strong>Budi Santoso</strong>")
	assert.Contains(t, msg.HTML, "<strong>Perusahaan:</strong> PT Maju Jaya")
}

func TestRenderTicketMessage_DetailOrderFollowsFieldOrder(t *testing.T) {
	msg, err := RenderTicketMessage(testTicketCustomer(), testTicketEvent())
	require.NoError(t, err)

	company := strings.Index(msg.Body, "Perusahaan")
	interests := strings.Index(msg.Body, "Minat")
	require.GreaterOrEqual(t, company, 0)
	require.GreaterOrEqual(t, interests, 0)
	assert.Less(t, company, interests)
}

func TestRenderTicketMessage_LeftoverKeysAppendedSorted(t *testing.T) {
	customer := testTicketCustomer()
	customer.RegistrationData["zeta"] = models.StringValue("last")
	customer.RegistrationData["alpha"] = models.StringValue("first")

	msg, err := RenderTicketMessage(customer, testTicketEvent())
	require.NoError(t, err)

	alpha := strings.Index(msg.Body, "alpha")
	zeta := strings.Index(msg.Body, "zeta")
	minat := strings.Index(msg.Body, "Minat")
	require.GreaterOrEqual(t, alpha, 0)
	require.GreaterOrEqual(t, zeta, 0)

	// Defined fields first, then leftovers in sorted order.
	assert.Less(t, minat, alpha)
	assert.Less(t, alpha, zeta)
}

func TestRenderTicketMessage_NoDetailsWhenBagEmpty(t *testing.T) {
	customer := testTicketCustomer()
	customer.RegistrationData = models.RegistrationData{}

	msg, err := RenderTicketMessage(customer, testTicketEvent())
	require.NoError(t, err)

	assert.NotContains(t, msg.Body, "Detail Pendaftaran")
	assert.NotContains(t, msg.HTML, "Detail Pendaftaran")
}

func TestRenderTicketMessage_EscapesHTML(t *testing.T) {
	customer := testTicketCustomer()
	customer.Nama = `<script>alert("x")</script>`

	msg, err := RenderTicketMessage(customer, testTicketEvent())
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "<script>")
}
