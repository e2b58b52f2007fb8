package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/salon-booking/internal/booking"
	"github.com/wolfman30/salon-booking/pkg/logging"
)

// ConfirmationMailer emails the client a summary of a confirmed booking.
type ConfirmationMailer struct {
	sender    EmailSender
	salonName string
	replyTo   string
	logger    *logging.Logger
}

// NewConfirmationMailer returns nil when sender is nil so callers can treat a
// missing provider as "no confirmation emails". Client replies go to replyTo
// when it is set.
func NewConfirmationMailer(sender EmailSender, salonName, replyTo string, logger *logging.Logger) *ConfirmationMailer {
	if sender == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(salonName) == "" {
		salonName = "the salon"
	}
	return &ConfirmationMailer{sender: sender, salonName: salonName, replyTo: strings.TrimSpace(replyTo), logger: logger}
}

// SendBookingConfirmation sends one email to the client address on b.
func (m *ConfirmationMailer) SendBookingConfirmation(ctx context.Context, b booking.ConfirmedBooking) error {
	if m == nil || m.sender == nil {
		return nil
	}
	to := strings.TrimSpace(b.ClientEmail)
	if to == "" {
		return fmt.Errorf("notify: confirmation has no client email")
	}

	msg := EmailMessage{
		To:      to,
		ToName:  b.ClientName,
		Subject: fmt.Sprintf("Your appointment at %s on %s at %s", m.salonName, b.Date, b.Time),
		Body:    confirmationText(m.salonName, b),
		HTML:    confirmationHTML(m.salonName, b),
		ReplyTo: m.replyTo,
		Kind:    KindConfirmation,
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: send confirmation: %w", err)
	}
	m.logger.Info("booking confirmation sent", "to", to, "date", b.Date, "time", b.Time)
	return nil
}

func confirmationText(salon string, b booking.ConfirmedBooking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s,\n\n", firstName(b.ClientName))
	fmt.Fprintf(&sb, "Your appointment at %s is confirmed.\n\n", salon)
	fmt.Fprintf(&sb, "Services: %s\n", strings.Join(b.ServiceNames, ", "))
	fmt.Fprintf(&sb, "Location: %s\n", b.LocationName)
	fmt.Fprintf(&sb, "Stylist: %s\n", b.StylistName)
	fmt.Fprintf(&sb, "When: %s at %s\n\n", b.Date, b.Time)
	sb.WriteString("Need to change something? Reply to this email or give us a call.\n")
	return sb.String()
}

func confirmationHTML(salon string, b booking.ConfirmedBooking) string {
	rows := [][2]string{
		{"Services", strings.Join(b.ServiceNames, ", ")},
		{"Location", b.LocationName},
		{"Stylist", b.StylistName},
		{"Date", b.Date},
		{"Time", b.Time},
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "<p>Hi %s,</p>", html.EscapeString(firstName(b.ClientName)))
	fmt.Fprintf(&sb, "<p>Your appointment at <strong>%s</strong> is confirmed.</p>", html.EscapeString(salon))
	sb.WriteString(`<table cellpadding="4" style="border-collapse:collapse">`)
	for _, row := range rows {
		fmt.Fprintf(&sb, "<tr><td><strong>%s</strong></td><td>%s</td></tr>", row[0], html.EscapeString(row[1]))
	}
	sb.WriteString("</table>")
	sb.WriteString("<p>Need to change something? Reply to this email or give us a call.</p>")
	return sb.String()
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

// HandoffSender delivers manual-handoff emails to the front desk through the
// configured EmailSender.
type HandoffSender struct {
	email EmailSender
}

// NewHandoffSender wraps an EmailSender for the manual handoff adapter.
func NewHandoffSender(email EmailSender) *HandoffSender {
	return &HandoffSender{email: email}
}

// SendHandoff implements booking.NotificationSender.
func (h *HandoffSender) SendHandoff(ctx context.Context, msg booking.HandoffEmail) error {
	if h == nil || h.email == nil {
		return fmt.Errorf("notify: email sender not configured")
	}
	return h.email.Send(ctx, EmailMessage{
		To:      msg.To,
		Subject: msg.Subject,
		Body:    msg.Text,
		HTML:    msg.HTML,
		ReplyTo: msg.ReplyTo,
		Kind:    KindHandoff,
	})
}

var _ booking.NotificationSender = (*HandoffSender)(nil)
