// Package catalog reads the salon's bookable services, locations and
// calendar-visible staff.
package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/wolfman30/salon-booking/internal/booking"
)

// Repository is the read side the booking wizard depends on.
type Repository interface {
	// ListServices returns active services ordered by category then name.
	ListServices(ctx context.Context) ([]booking.ServiceEntry, error)
	// ListLocations returns active locations.
	ListLocations(ctx context.Context) ([]booking.Location, error)
	// ListStylists returns active, calendar-visible staff for an external
	// branch reference.
	ListStylists(ctx context.Context, branchRef string) ([]booking.Stylist, error)
}

// InMemoryRepository serves a fixed catalog from memory. It backs local
// development when no database is configured.
type InMemoryRepository struct {
	mu        sync.RWMutex
	services  []booking.ServiceEntry
	locations []booking.Location
	stylists  map[string][]booking.Stylist
}

// NewInMemoryRepository creates a repository over copies of the given data.
// stylists is keyed by branch ref.
func NewInMemoryRepository(services []booking.ServiceEntry, locations []booking.Location, stylists map[string][]booking.Stylist) *InMemoryRepository {
	r := &InMemoryRepository{
		services:  slices.Clone(services),
		locations: slices.Clone(locations),
		stylists:  make(map[string][]booking.Stylist, len(stylists)),
	}
	for ref, list := range stylists {
		r.stylists[ref] = slices.Clone(list)
	}
	return r
}

// ListServices returns a copy of the services.
func (r *InMemoryRepository) ListServices(ctx context.Context) ([]booking.ServiceEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.services), nil
}

// ListLocations returns a copy of the locations.
func (r *InMemoryRepository) ListLocations(ctx context.Context) ([]booking.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.locations), nil
}

// ListStylists returns the stylists for branchRef, or none.
func (r *InMemoryRepository) ListStylists(ctx context.Context, branchRef string) ([]booking.Stylist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.stylists[branchRef]), nil
}

// SetStylists replaces the stylists of one branch.
func (r *InMemoryRepository) SetStylists(branchRef string, list []booking.Stylist) {
	r.mu.Lock()
	r.stylists[branchRef] = slices.Clone(list)
	r.mu.Unlock()
}

var _ Repository = (*InMemoryRepository)(nil)
