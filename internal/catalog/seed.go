package catalog

import "github.com/wolfman30/salon-booking/internal/booking"

func price(v float64) *float64 { return &v }

// NewDemoRepository returns an in-memory catalog with two locations and a
// handful of services.
func NewDemoRepository() *InMemoryRepository {
	services := []booking.ServiceEntry{
		{ID: "svc-womens-cut", Name: "Women's Haircut", Category: "Hair", DurationMinutes: 45, Price: price(55)},
		{ID: "svc-mens-cut", Name: "Men's Haircut", Category: "Hair", DurationMinutes: 30, Price: price(35)},
		{ID: "svc-colour", Name: "Full Colour", Category: "Hair", DurationMinutes: 90, Price: price(120)},
		{ID: "svc-blowout", Name: "Blowout", Category: "Hair", DurationMinutes: 30, Price: price(40)},
		{ID: "svc-manicure", Name: "Gel Manicure", Category: "Nails", DurationMinutes: 45, Price: price(45)},
		{ID: "svc-pedicure", Name: "Spa Pedicure", Category: "Nails", DurationMinutes: 60, Price: price(60)},
		{ID: "svc-consult", Name: "Colour Consultation", Category: "Consultations", DurationMinutes: 15},
	}
	locations := []booking.Location{
		{ID: "loc-downtown", Name: "Downtown", Address: "120 Main St", BranchRef: "branch-downtown"},
		{ID: "loc-riverside", Name: "Riverside", Address: "8 River Rd", BranchRef: "branch-riverside"},
	}
	stylists := map[string][]booking.Stylist{
		"branch-downtown": {
			{ID: "sty-ana", StaffRef: "staff-ana", Name: "Ana Lopez"},
			{ID: "sty-ben", StaffRef: "staff-ben", Name: "Ben Carter"},
		},
		"branch-riverside": {
			{ID: "sty-cleo", StaffRef: "staff-cleo", Name: "Cleo Park"},
		},
	}
	return NewInMemoryRepository(services, locations, stylists)
}
