package booking

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// DefaultHorizonDays is how many calendar days after today are scanned for
// bookable dates.
const DefaultHorizonDays = 14

// BusinessHours is the single salon-wide window time slots are cut from.
// Open and Close are minutes after midnight; Close is exclusive.
//
// The window is global rather than per location. Locations with different
// hours still get the same slots.
type BusinessHours struct {
	Open     int
	Close    int
	Interval int
}

// DefaultBusinessHours offers 09:00 through 18:30 on the half hour.
var DefaultBusinessHours = BusinessHours{Open: 9 * 60, Close: 19 * 60, Interval: 30}

// ParseBusinessHours builds a window from "HH:MM" bounds and a slot interval.
func ParseBusinessHours(openAt, closeAt string, interval time.Duration) (BusinessHours, error) {
	o, err := ParseClock(openAt)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("booking: business open: %w", err)
	}
	c, err := ParseClock(closeAt)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("booking: business close: %w", err)
	}
	step := int(interval / time.Minute)
	if step <= 0 {
		return BusinessHours{}, fmt.Errorf("booking: slot interval must be at least one minute, got %s", interval)
	}
	if c <= o {
		return BusinessHours{}, fmt.Errorf("booking: close %s is not after open %s", closeAt, openAt)
	}
	return BusinessHours{Open: o, Close: c, Interval: step}, nil
}

// Slots lists every HH:MM from Open up to but excluding Close.
func (h BusinessHours) Slots() []string {
	if h.Interval <= 0 || h.Close <= h.Open {
		return nil
	}
	slots := make([]string, 0, (h.Close-h.Open)/h.Interval+1)
	for m := h.Open; m < h.Close; m += h.Interval {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

// GenerateTimeSlots returns the slots of DefaultBusinessHours: 20 entries from
// "09:00" to "18:30".
func GenerateTimeSlots() []string {
	return DefaultBusinessHours.Slots()
}

// GenerateAvailableDates walks the horizonDays calendar days after reference
// and keeps every day that is not a Sunday. The reference day itself is never
// offered. A non-positive horizon uses DefaultHorizonDays.
func GenerateAvailableDates(reference civil.Date, horizonDays int) []civil.Date {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	dates := make([]civil.Date, 0, horizonDays)
	for i := 1; i <= horizonDays; i++ {
		d := reference.AddDays(i)
		if weekday(d) == time.Sunday {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}

// Today returns the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.UTC
	}
	return civil.DateOf(now.In(loc))
}

// IsOfferedDate reports whether d is one of dates.
func IsOfferedDate(dates []civil.Date, d civil.Date) bool {
	return slices.Contains(dates, d)
}

// IsOfferedSlot reports whether slot is one of slots.
func IsOfferedSlot(slots []string, slot string) bool {
	return slices.Contains(slots, slot)
}

// ParseClock converts "HH:MM" to minutes after midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// CategoryGroup is one category of the catalog with its services in catalog
// order.
type CategoryGroup struct {
	Category string         `json:"category"`
	Services []ServiceEntry `json:"services"`
}

// GroupByCategory groups entries by category, keeping categories in the order
// they first appear and entries in their original order.
func GroupByCategory(entries []ServiceEntry) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	for _, e := range entries {
		i, ok := index[e.Category]
		if !ok {
			i = len(groups)
			index[e.Category] = i
			groups = append(groups, CategoryGroup{Category: e.Category})
		}
		groups[i].Services = append(groups[i].Services, e)
	}
	return groups
}

func weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}
