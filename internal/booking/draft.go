// Package booking implements the public appointment-booking flow: the draft a
// client builds up, the dates and slots offered to them, the ordered wizard
// steps with their guards, and the single submission to the external
// scheduling system.
package booking

import (
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

const (
	// AnyStylist is the stylist id a client sends for "no preference".
	AnyStylist = "any"
	// FirstAvailable is the display name used when no stylist was chosen.
	FirstAvailable = "First Available"
)

// ServiceEntry is a bookable service as the catalog supplies it.
type ServiceEntry struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	DurationMinutes int      `json:"durationMinutes"`
	Price           *float64 `json:"price"` // nil when the salon has not priced it
}

// ContactField names one of the free-text client fields on a draft.
type ContactField string

const (
	FieldName  ContactField = "name"
	FieldEmail ContactField = "email"
	FieldPhone ContactField = "phone"
	FieldNotes ContactField = "notes"
)

// Draft is everything a client has chosen so far. It is a value type: every
// operation returns a new Draft and never writes through to the receiver, so a
// guard evaluated against one Draft always sees a stable snapshot.
//
// Empty strings and nil pointers mean "not chosen yet".
type Draft struct {
	// ID identifies the draft for the submit guard and idempotency keys.
	ID string `json:"id"`

	Services []ServiceEntry `json:"services"`

	LocationID   string `json:"locationId,omitempty"`
	LocationName string `json:"locationName,omitempty"`

	StylistID   string `json:"stylistId,omitempty"`
	StylistName string `json:"stylistName,omitempty"`

	Date *civil.Date `json:"date,omitempty"`
	Time string      `json:"time,omitempty"` // HH:MM, 24-hour

	ClientName  string `json:"clientName,omitempty"`
	ClientEmail string `json:"clientEmail,omitempty"`
	ClientPhone string `json:"clientPhone,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// NewDraft returns an empty draft with a fresh id.
func NewDraft() Draft {
	return Draft{ID: uuid.NewString()}
}

// ToggleService removes entry when a service with the same id is already
// selected and appends it otherwise. Selection order is preserved.
func (d Draft) ToggleService(entry ServiceEntry) Draft {
	services := make([]ServiceEntry, 0, len(d.Services)+1)
	removed := false
	for _, s := range d.Services {
		if s.ID == entry.ID {
			removed = true
			continue
		}
		services = append(services, s)
	}
	if !removed {
		services = append(services, entry)
	}
	d.Services = services
	return d
}

// SetLocation sets the location and clears the stylist, whose options are
// scoped to the previous location.
func (d Draft) SetLocation(id, name string) Draft {
	d.Services = d.cloneServices()
	d.LocationID = id
	d.LocationName = name
	d.StylistID = ""
	d.StylistName = ""
	return d
}

// SetStylist records the chosen stylist. AnyStylist stores no id and the
// FirstAvailable display name.
func (d Draft) SetStylist(id, name string) Draft {
	d.Services = d.cloneServices()
	if id == AnyStylist {
		d.StylistID = ""
		d.StylistName = FirstAvailable
		return d
	}
	d.StylistID = id
	d.StylistName = name
	return d
}

// SetDate sets the date and clears the time chosen for the previous date.
func (d Draft) SetDate(date civil.Date) Draft {
	d.Services = d.cloneServices()
	d.Date = &date
	d.Time = ""
	return d
}

// SetTime sets the wall-clock time only.
func (d Draft) SetTime(t string) Draft {
	d.Services = d.cloneServices()
	d.Time = t
	return d
}

// SetContactField sets one client field. Unknown fields leave the draft as is.
func (d Draft) SetContactField(field ContactField, value string) Draft {
	d.Services = d.cloneServices()
	switch field {
	case FieldName:
		d.ClientName = value
	case FieldEmail:
		d.ClientEmail = value
	case FieldPhone:
		d.ClientPhone = value
	case FieldNotes:
		d.Notes = value
	}
	return d
}

// TotalDurationMinutes sums the durations of the selected services.
func (d Draft) TotalDurationMinutes() int {
	total := 0
	for _, s := range d.Services {
		total += s.DurationMinutes
	}
	return total
}

// TotalPrice sums the selected services' prices, counting unpriced ones as 0.
func (d Draft) TotalPrice() float64 {
	var total float64
	for _, s := range d.Services {
		if s.Price != nil {
			total += *s.Price
		}
	}
	return total
}

// ServiceIDs returns the selected service ids in selection order.
func (d Draft) ServiceIDs() []string {
	ids := make([]string, 0, len(d.Services))
	for _, s := range d.Services {
		ids = append(ids, s.ID)
	}
	return ids
}

// ServiceNames returns the selected service names in selection order.
func (d Draft) ServiceNames() []string {
	names := make([]string, 0, len(d.Services))
	for _, s := range d.Services {
		names = append(names, s.Name)
	}
	return names
}

func (d Draft) cloneServices() []ServiceEntry {
	if d.Services == nil {
		return nil
	}
	return append([]ServiceEntry(nil), d.Services...)
}
