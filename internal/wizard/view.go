package wizard

import "github.com/wolfman30/salon-booking/internal/booking"

// View is the JSON shape a client renders a session from.
type View struct {
	ID        string         `json:"id"`
	Step      booking.Step   `json:"step"`
	StepIndex int            `json:"stepIndex"`
	Steps     []booking.Step `json:"steps"`
	Draft     booking.Draft  `json:"draft"`

	TotalDurationMinutes int     `json:"totalDurationMinutes"`
	TotalPrice           float64 `json:"totalPrice"`

	CanAdvance bool `json:"canAdvance"`
	CanGoBack  bool `json:"canGoBack"`
	CanSubmit  bool `json:"canSubmit"`
	Submitting bool `json:"submitting"`

	Location     *booking.Location         `json:"location,omitempty"`
	Stylists     []booking.Stylist         `json:"stylists,omitempty"`
	Confirmation *booking.ConfirmedBooking `json:"confirmation,omitempty"`
}

// NewView derives the view of s. Totals and guards are recomputed on every
// call.
func NewView(s *Session, submitting bool) View {
	v := View{
		ID:                   s.ID,
		Step:                 s.Step,
		StepIndex:            s.Step.Index(),
		Steps:                booking.Steps,
		Draft:                s.Draft,
		TotalDurationMinutes: s.Draft.TotalDurationMinutes(),
		TotalPrice:           s.Draft.TotalPrice(),
		Submitting:           submitting,
		Location:             s.Location,
		Stylists:             s.CurrentStylists(),
		Confirmation:         s.Confirmation,
	}
	if s.Booked() {
		return v
	}
	if s.Step != booking.StepConfirm {
		v.CanAdvance = booking.CanLeave(s.Step, s.Draft)
	}
	_, v.CanGoBack = booking.Back(s.Step)
	v.CanSubmit = s.Step == booking.StepConfirm && !submitting
	return v
}
