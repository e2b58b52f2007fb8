// Package wizard runs the booking flow for one client session at a time: it
// owns the session's step and draft, resolves choices against the catalog and
// hands the finished draft to the booking orchestrator.
package wizard

import (
	"time"

	"github.com/wolfman30/salon-booking/internal/booking"
)

// Session is the server-side state of one booking wizard.
type Session struct {
	ID    string        `json:"id"`
	Step  booking.Step  `json:"step"`
	Draft booking.Draft `json:"draft"`

	// Location is the option the client picked, kept so submission does not
	// have to fetch the location list again.
	Location *booking.Location `json:"location,omitempty"`
	Stylists StylistOptions    `json:"stylists"`

	Confirmation *booking.ConfirmedBooking `json:"confirmation,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StylistOptions is a stylist list tagged with the location it was fetched for.
type StylistOptions struct {
	LocationID string            `json:"locationId,omitempty"`
	Options    []booking.Stylist `json:"options"`
}

// NewSession starts a session on the first step with an empty draft. The
// session shares the draft's id.
func NewSession(now time.Time) *Session {
	d := booking.NewDraft()
	return &Session{
		ID:        d.ID,
		Step:      booking.InitialStep,
		Draft:     d,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Booked reports whether the session reached the terminal state.
func (s *Session) Booked() bool { return s.Step == booking.StepBooked }

// CurrentStylists returns the options fetched for the selected location, or
// nil when none match it.
func (s *Session) CurrentStylists() []booking.Stylist {
	if s.Draft.LocationID == "" || s.Stylists.LocationID != s.Draft.LocationID {
		return nil
	}
	return s.Stylists.Options
}

// ApplyStylists stores result on s when it was fetched for the location that
// is still selected. A result for an older location is dropped and false is
// returned.
func ApplyStylists(s *Session, result StylistOptions) bool {
	if result.LocationID == "" || result.LocationID != s.Draft.LocationID {
		return false
	}
	s.Stylists = result
	return true
}

func findStylist(options []booking.Stylist, id string) (booking.Stylist, bool) {
	for _, st := range options {
		if st.ID == id {
			return st, true
		}
	}
	return booking.Stylist{}, false
}
