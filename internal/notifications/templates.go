package notifications

import (
	"bytes"
	"fmt"
	"text/template"

	"fleetbook/pkg/model"
)

const confirmedTemplate = `Your booking {{.BookingCode}} is confirmed.

Trip: {{index .Data "origin"}} to {{index .Data "destination"}}
Starts: {{index .Data "start_time"}}
{{- if index .Data "end_time"}}
Ends: {{index .Data "end_time"}}
{{- end}}
Amount paid: {{index .Data "amount"}} {{index .Data "currency"}}

Quote this code at pickup.
`

const cancelledTemplate = `Your booking {{.BookingCode}} has been cancelled.

{{- if eq (index .Data "payment_status") "refunded"}}
A refund of {{index .Data "amount"}} {{index .Data "currency"}} has been issued (reference {{index .Data "refund_id"}}).
{{- else}}
This cancellation is outside the refund window; no refund was issued.
{{- end}}
`

var (
	templates = map[model.NotificationKind]*template.Template{
		model.NotifyBookingConfirmed: template.Must(template.New("booking_confirmed").Parse(confirmedTemplate)),
		model.NotifyBookingCancelled: template.Must(template.New("booking_cancelled").Parse(cancelledTemplate)),
	}

	subjects = map[model.NotificationKind]string{
		model.NotifyBookingConfirmed: "Booking confirmed: %s",
		model.NotifyBookingCancelled: "Booking cancelled: %s",
	}
)

func render(n model.Notification) (subject, body string, err error) {
	tmpl, ok := templates[n.Kind]
	if !ok {
		return "", "", fmt.Errorf("no template for notification kind %q", n.Kind)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, n); err != nil {
		return "", "", fmt.Errorf("failed to render %q template: %w", n.Kind, err)
	}

	return fmt.Sprintf(subjects[n.Kind], n.BookingCode), buf.String(), nil
}
