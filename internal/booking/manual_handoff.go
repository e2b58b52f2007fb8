package booking

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/salon-booking/pkg/logging"
)

// HandoffEmail is the message sent to the front desk for one request.
type HandoffEmail struct {
	To      string
	Subject string
	Text    string
	HTML    string
	// ReplyTo is the client's address so staff can answer them directly.
	ReplyTo string
}

// NotificationSender delivers handoff emails to the salon.
type NotificationSender interface {
	SendHandoff(ctx context.Context, msg HandoffEmail) error
}

// ManualHandoffConfig holds the salon's notification target.
type ManualHandoffConfig struct {
	SalonName string
	Email     string
}

// ErrNoHandoffChannel is returned when no front-desk address is configured,
// since the request would otherwise be silently dropped.
var ErrNoHandoffChannel = errors.New("booking: manual handoff has no notification channel")

// ManualHandoffAdapter implements Adapter for salons without a scheduling
// integration: it emails the request to the front desk, who enter it in the
// calendar by hand. The booking counts as accepted once the email is sent.
type ManualHandoffAdapter struct {
	sender NotificationSender
	config ManualHandoffConfig
	logger *logging.Logger
}

// NewManualHandoffAdapter creates a manual handoff adapter.
func NewManualHandoffAdapter(sender NotificationSender, cfg ManualHandoffConfig, logger *logging.Logger) *ManualHandoffAdapter {
	if logger == nil {
		logger = logging.Default()
	}
	return &ManualHandoffAdapter{sender: sender, config: cfg, logger: logger}
}

// Name returns "manual".
func (a *ManualHandoffAdapter) Name() string { return "manual" }

// CreateBooking emails req to the front desk.
func (a *ManualHandoffAdapter) CreateBooking(ctx context.Context, req Request) error {
	to := strings.TrimSpace(a.config.Email)
	if a.sender == nil || to == "" {
		a.logger.Warn("manual handoff: no front-desk address configured", "branch_ref", req.BranchRef)
		return ErrNoHandoffChannel
	}

	msg := HandoffEmail{
		To:      to,
		Subject: fmt.Sprintf("Booking request: %s on %s at %s", valueOrNA(req.Client.Name), req.Date, req.Time),
		Text:    fmt.Sprintf("New booking request for %s\n\n%s", a.salonName(), FormatRequestSummary(req)),
		HTML:    FormatRequestSummaryHTML(req),
		ReplyTo: strings.TrimSpace(req.Client.Email),
	}
	if err := a.sender.SendHandoff(ctx, msg); err != nil {
		a.logger.Error("manual handoff: failed to send email", "error", err, "to", to, "branch_ref", req.BranchRef)
		return fmt.Errorf("manual handoff: %w", err)
	}
	a.logger.Info("manual handoff: booking request delivered", "to", to, "branch_ref", req.BranchRef)
	return nil
}

func (a *ManualHandoffAdapter) salonName() string {
	if strings.TrimSpace(a.config.SalonName) == "" {
		return "the salon"
	}
	return a.config.SalonName
}

// FormatRequestSummary renders a plain-text summary of req for staff.
func FormatRequestSummary(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Client: %s\n", valueOrNA(req.Client.Name))
	fmt.Fprintf(&b, "Phone: %s\n", valueOrNA(req.Client.Phone))
	if req.Client.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", req.Client.Email)
	}
	fmt.Fprintf(&b, "Services: %s\n", valueOrNA(strings.Join(req.Summary.ServiceNames, ", ")))
	fmt.Fprintf(&b, "Location: %s\n", valueOrNA(req.Summary.LocationName))
	fmt.Fprintf(&b, "Stylist: %s\n", valueOrNA(req.Summary.StylistName))
	fmt.Fprintf(&b, "When: %s %s\n", valueOrNA(req.Date), req.Time)
	if req.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", req.Notes)
	}
	fmt.Fprintf(&b, "Reference: %s\n", req.IdempotencyKey)
	return b.String()
}

// FormatRequestSummaryHTML renders the same summary as an HTML table.
func FormatRequestSummaryHTML(req Request) string {
	rows := [][2]string{
		{"Client", valueOrNA(req.Client.Name)},
		{"Phone", valueOrNA(req.Client.Phone)},
		{"Email", valueOrNA(req.Client.Email)},
		{"Services", valueOrNA(strings.Join(req.Summary.ServiceNames, ", "))},
		{"Location", valueOrNA(req.Summary.LocationName)},
		{"Stylist", valueOrNA(req.Summary.StylistName)},
		{"When", strings.TrimSpace(req.Date + " " + req.Time)},
	}
	if req.Notes != "" {
		rows = append(rows, [2]string{"Notes", req.Notes})
	}

	var b strings.Builder
	b.WriteString(`<div style="font-family:sans-serif;max-width:600px;">`)
	b.WriteString(`<h2 style="color:#333;">New Booking Request</h2>`)
	b.WriteString(`<table style="border-collapse:collapse;width:100%;">`)
	for _, row := range rows {
		fmt.Fprintf(&b, `<tr><td style="padding:6px 12px;font-weight:bold;">%s</td><td style="padding:6px 12px;">%s</td></tr>`,
			html.EscapeString(row[0]), html.EscapeString(row[1]))
	}
	b.WriteString(`</table>`)
	fmt.Fprintf(&b, `<p style="color:#666;font-size:12px;">Reference %s. Please enter this booking in the calendar and confirm with the client.</p>`,
		html.EscapeString(req.IdempotencyKey))
	b.WriteString(`</div>`)
	return b.String()
}

func valueOrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

var _ Adapter = (*ManualHandoffAdapter)(nil)
