package services

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"sort"
	"strings"
	texttemplate "text/template"

	"registration-system/models"
)

// ticketTextTemplate is the WhatsApp ticket body. Formatting markers
// (*bold*) follow WhatsApp conventions; the audience is Indonesian, as
// on the registration forms.
var ticketTextTemplate = texttemplate.Must(texttemplate.New("ticket").Parse(
	"*TIKET EVENT*\n\n" +
		"Halo *{{.Nama}}*,\n\n" +
		"Terima kasih telah mendaftar di *{{.EventNama}}*. Berikut adalah tiket digital Anda:\n\n" +
		"*ID Tiket:* {{.TicketID}}\n" +
		"{{.Details}}\n" +
		"*Petunjuk:*\n" +
		"1. Simpan pesan ini untuk referensi Anda.\n" +
		"2. Tunjukkan QR code kepada petugas saat acara berlangsung.\n" +
		"3. Pastikan perangkat Anda sudah terisi daya.\n\n" +
		"Jika Anda memiliki pertanyaan atau membutuhkan bantuan, jangan ragu untuk menghubungi petugas kami",
))

var ticketHTMLTemplate = htmltemplate.Must(htmltemplate.New("ticket").Parse(`
<h2>Tiket Event</h2>
<p>Halo <strong>{{.Nama}}</strong>,</p>
<p>Terima kasih telah mendaftar di <strong>{{.EventNama}}</strong>. Berikut adalah tiket digital Anda.</p>
<p><strong>ID Tiket:</strong> {{.TicketID}}</p>
{{if .Rows}}<h3>Detail Pendaftaran</h3>
<ul>
{{range .Rows}}<li><strong>{{.Label}}:</strong> {{.Value}}</li>
{{end}}</ul>
{{end}}<p>Tunjukkan QR code terlampir kepada petugas saat acara berlangsung.</p>
`))

type detailRow struct {
	Label string
	Value string
}

type ticketMessageData struct {
	Nama      string
	EventNama string
	TicketID  string
	Details   string
	Rows      []detailRow
}

// TicketMessage is a rendered notification, one variant per channel.
type TicketMessage struct {
	Subject string
	Body    string
	HTML    string
}

// RenderTicketMessage builds the outbound ticket notification for a
// registration. Detail rows follow the event's field order so messages
// stay stable across sends; stored keys the event no longer defines are
// appended last under their raw key.
func RenderTicketMessage(customer models.Customer, event models.Event) (*TicketMessage, error) {
	rows := detailRows(event.CustomFields, customer.RegistrationData)

	data := ticketMessageData{
		Nama:      customer.Nama,
		EventNama: event.Nama,
		TicketID:  customer.ID,
		Details:   formatDetails(rows),
		Rows:      rows,
	}

	var body bytes.Buffer
	if err := ticketTextTemplate.Execute(&body, data); err != nil {
		return nil, err
	}

	var html bytes.Buffer
	if err := ticketHTMLTemplate.Execute(&html, data); err != nil {
		return nil, err
	}

	return &TicketMessage{
		Subject: fmt.Sprintf("Tiket Event: %s", event.Nama),
		Body:    body.String(),
		HTML:    html.String(),
	}, nil
}

func detailRows(fields []models.CustomField, bag models.RegistrationData) []detailRow {
	var rows []detailRow
	used := make(map[string]bool, len(bag))

	for _, f := range fields {
		if value, ok := bag[f.FieldID]; ok {
			rows = append(rows, detailRow{Label: f.Label, Value: value.Display()})
			used[f.FieldID] = true
		}
	}

	// Leftovers from a schema that changed after registration.
	var leftover []string
	for key := range bag {
		if !used[key] {
			leftover = append(leftover, key)
		}
	}
	sort.Strings(leftover)
	for _, key := range leftover {
		rows = append(rows, detailRow{Label: key, Value: bag[key].Display()})
	}

	return rows
}

func formatDetails(rows []detailRow) string {
	if len(rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n*Detail Pendaftaran:*\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "• *%s:* %s\n", row.Label, row.Value)
	}
	return b.String()
}
