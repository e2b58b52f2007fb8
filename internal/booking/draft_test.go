package booking

import (
	"reflect"
	"testing"

	"cloud.google.com/go/civil"
)

func price(v float64) *float64 { return &v }

var (
	cut    = ServiceEntry{ID: "svc-cut", Name: "Haircut", Category: "Hair", DurationMinutes: 30, Price: price(40)}
	colour = ServiceEntry{ID: "svc-colour", Name: "Colour", Category: "Hair", DurationMinutes: 45, Price: price(60)}
	brow   = ServiceEntry{ID: "svc-brow", Name: "Brow Shape", Category: "Beauty", DurationMinutes: 15}
)

func TestNewDraft_HasID(t *testing.T) {
	a, b := NewDraft(), NewDraft()
	if a.ID == "" || b.ID == "" {
		t.Fatal("expected draft ids to be set")
	}
	if a.ID == b.ID {
		t.Fatalf("expected distinct draft ids, got %q twice", a.ID)
	}
}

func TestToggleService_SelfInverse(t *testing.T) {
	drafts := []Draft{
		NewDraft(),
		NewDraft().ToggleService(cut),
		NewDraft().ToggleService(cut).ToggleService(colour),
		NewDraft().ToggleService(brow).ToggleService(cut),
	}
	for _, d := range drafts {
		for _, e := range []ServiceEntry{cut, colour, brow} {
			got := d.ToggleService(e).ToggleService(e)
			if !reflect.DeepEqual(got.ServiceIDs(), d.ServiceIDs()) {
				// Toggling a present service twice re-appends it at the end,
				// so only compare as sets when e was already selected.
				if !hasService(d, e.ID) || !sameSet(got.ServiceIDs(), d.ServiceIDs()) {
					t.Fatalf("toggle %s twice: got %v, want %v", e.ID, got.ServiceIDs(), d.ServiceIDs())
				}
			}
		}
	}
}

func hasService(d Draft, id string) bool {
	for _, s := range d.Services {
		if s.ID == id {
			return true
		}
	}
	return false
}

func TestToggleService_PreservesInsertionOrder(t *testing.T) {
	d := NewDraft().ToggleService(colour).ToggleService(brow).ToggleService(cut)
	want := []string{"svc-colour", "svc-brow", "svc-cut"}
	if got := d.ServiceIDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("service order = %v, want %v", got, want)
	}

	d = d.ToggleService(brow)
	want = []string{"svc-colour", "svc-cut"}
	if got := d.ServiceIDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("after removal = %v, want %v", got, want)
	}
}

func TestToggleService_DoesNotMutateReceiver(t *testing.T) {
	base := NewDraft().ToggleService(cut).ToggleService(colour)
	before := append([]string(nil), base.ServiceIDs()...)

	_ = base.ToggleService(cut)
	_ = base.ToggleService(brow)
	_ = base.SetLocation("loc-1", "Downtown")

	if got := base.ServiceIDs(); !reflect.DeepEqual(got, before) {
		t.Fatalf("receiver changed: got %v, want %v", got, before)
	}
}

func TestSetLocation_ClearsStylist(t *testing.T) {
	cases := []Draft{
		NewDraft(),
		NewDraft().SetStylist("sty-1", "Ana"),
		NewDraft().SetStylist(AnyStylist, ""),
		NewDraft().SetLocation("loc-1", "Downtown").SetStylist("sty-2", "Bea"),
	}
	for _, d := range cases {
		got := d.SetLocation("loc-2", "Uptown")
		if got.StylistID != "" || got.StylistName != "" {
			t.Fatalf("stylist not cleared: id=%q name=%q", got.StylistID, got.StylistName)
		}
		if got.LocationID != "loc-2" || got.LocationName != "Uptown" {
			t.Fatalf("location = %q/%q, want loc-2/Uptown", got.LocationID, got.LocationName)
		}
	}
}

func TestSetStylist_Any(t *testing.T) {
	d := NewDraft().SetStylist("sty-1", "Ana").SetStylist(AnyStylist, "ignored")
	if d.StylistID != "" {
		t.Fatalf("stylist id = %q, want empty", d.StylistID)
	}
	if d.StylistName != FirstAvailable {
		t.Fatalf("stylist name = %q, want %q", d.StylistName, FirstAvailable)
	}
}

func TestSetDate_ClearsTime(t *testing.T) {
	day := civil.Date{Year: 2026, Month: 2, Day: 23}
	cases := []Draft{
		NewDraft(),
		NewDraft().SetTime("10:30"),
		NewDraft().SetDate(day).SetTime("09:00"),
	}
	for _, d := range cases {
		got := d.SetDate(day.AddDays(1))
		if got.Time != "" {
			t.Fatalf("time = %q, want cleared", got.Time)
		}
		if got.Date == nil || *got.Date != day.AddDays(1) {
			t.Fatalf("date = %v, want %v", got.Date, day.AddDays(1))
		}
	}
}

func TestSetTime_KeepsDate(t *testing.T) {
	day := civil.Date{Year: 2026, Month: 2, Day: 23}
	d := NewDraft().SetDate(day).SetTime("14:00")
	if d.Date == nil || *d.Date != day || d.Time != "14:00" {
		t.Fatalf("unexpected date/time: %v %q", d.Date, d.Time)
	}
}

func TestSetContactField(t *testing.T) {
	d := NewDraft().
		SetContactField(FieldName, "Jane Doe").
		SetContactField(FieldEmail, "jane@example.com").
		SetContactField(FieldPhone, "+15555550123").
		SetContactField(FieldNotes, "first visit").
		SetContactField(ContactField("fax"), "nope")

	if d.ClientName != "Jane Doe" || d.ClientEmail != "jane@example.com" || d.ClientPhone != "+15555550123" || d.Notes != "first visit" {
		t.Fatalf("unexpected contact fields: %+v", d)
	}
}

func TestTotals(t *testing.T) {
	d := NewDraft().ToggleService(cut).ToggleService(colour)
	if got := d.TotalDurationMinutes(); got != 75 {
		t.Fatalf("total duration = %d, want 75", got)
	}
	if got := d.TotalPrice(); got != 100 {
		t.Fatalf("total price = %v, want 100", got)
	}

	d = d.ToggleService(brow)
	if got := d.TotalDurationMinutes(); got != 90 {
		t.Fatalf("total duration with unpriced service = %d, want 90", got)
	}
	if got := d.TotalPrice(); got != 100 {
		t.Fatalf("unpriced service should add 0, got %v", got)
	}

	if got := NewDraft().TotalPrice(); got != 0 {
		t.Fatalf("empty draft price = %v, want 0", got)
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		seen[s]--
		if seen[s] < 0 {
			return false
		}
	}
	return true
}
