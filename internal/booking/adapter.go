package booking

import "context"

// Location is a salon location as the location list supplies it.
type Location struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	BranchRef string `json:"externalBranchRef"`
}

// Stylist is a calendar-visible stylist at one location.
type Stylist struct {
	ID       string `json:"id"`
	StaffRef string `json:"externalStaffRef"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// ClientContact is the client block of a booking request.
type ClientContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Request is the single payload sent to the external scheduling system.
type Request struct {
	BranchRef  string        `json:"branchRef"`
	StaffRef   *string       `json:"staffRef"` // nil for no preference
	ServiceIDs []string      `json:"serviceIds"`
	Date       string        `json:"date"` // yyyy-mm-dd
	Time       string        `json:"time"` // HH:MM
	Client     ClientContact `json:"client"`
	Notes      string        `json:"notes"`

	// IdempotencyKey is stable for retries of an identical payload from the
	// same draft. Adapters send it out of band.
	IdempotencyKey string `json:"-"`
	// Summary carries display names for adapters that hand the booking to a
	// human instead of an API.
	Summary ConfirmedBooking `json:"-"`
}

// ConfirmedBooking echoes what was submitted for the confirmation screen. No
// booking id is kept locally.
type ConfirmedBooking struct {
	LocationName string   `json:"locationName"`
	StylistName  string   `json:"stylistName"`
	ServiceNames []string `json:"serviceNames"`
	Date         string   `json:"date"`
	Time         string   `json:"time"`
	ClientName   string   `json:"clientName"`
	ClientEmail  string   `json:"clientEmail"`
}

// Adapter is the write side of an external booking platform. Implementations
// return nil once the platform accepted the booking.
type Adapter interface {
	// Name returns the adapter identifier (e.g. "scheduling", "manual").
	Name() string

	// CreateBooking sends req exactly once. It does not retry.
	CreateBooking(ctx context.Context, req Request) error
}
