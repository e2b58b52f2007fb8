package wizard

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("wizard: session not found")

	// ErrUnknownService is returned when a service id is not in the catalog.
	ErrUnknownService = errors.New("wizard: unknown service")

	// ErrUnknownLocation is returned when a location id is not in the location list.
	ErrUnknownLocation = errors.New("wizard: unknown location")

	// ErrUnknownStylist is returned when a stylist id is not offered at the
	// selected location.
	ErrUnknownStylist = errors.New("wizard: unknown stylist")

	// ErrDateUnavailable is returned for a date outside the offered dates.
	ErrDateUnavailable = errors.New("wizard: date not available")

	// ErrSlotUnavailable is returned for a time outside the offered slots.
	ErrSlotUnavailable = errors.New("wizard: time slot not available")

	// ErrNotAtConfirm is returned when submit is called before the confirm step.
	ErrNotAtConfirm = errors.New("wizard: session is not at the confirm step")

	// ErrAlreadyBooked is returned for any change to a booked session.
	ErrAlreadyBooked = errors.New("wizard: session already booked")
)
