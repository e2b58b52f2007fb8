package wizard

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"

	"github.com/wolfman30/salon-booking/internal/booking"
	"github.com/wolfman30/salon-booking/internal/catalog"
	"github.com/wolfman30/salon-booking/pkg/logging"
)

// Step directions reported to an Observer.
const (
	DirectionNext = "next"
	DirectionBack = "back"
)

// Fetch sources reported to an Observer.
const (
	SourceServices  = "services"
	SourceLocations = "locations"
	SourceStylists  = "stylists"
)

// Observer receives wizard events for metrics. Implementations must be safe
// for concurrent use.
type Observer interface {
	ObserveStep(from booking.Step, direction string, moved bool)
	ObserveFetchFailure(source string)
}

// ConfirmationSender emails the client once a booking is accepted.
type ConfirmationSender interface {
	SendBookingConfirmation(ctx context.Context, confirmed booking.ConfirmedBooking) error
}

// Config holds the availability rules a Service applies.
type Config struct {
	Hours       booking.BusinessHours
	HorizonDays int
	// Location is the salon's time zone, used to decide what "today" is.
	Location *time.Location
	Now      func() time.Time
	// EditWait bounds how long a change waits for another change to the same
	// session to finish. Zero uses DefaultEditWait.
	EditWait time.Duration
}

// DefaultEditWait is used when Config.EditWait is zero.
const DefaultEditWait = 250 * time.Millisecond

const editRetryInterval = 10 * time.Millisecond

// Details is a partial contact update; nil fields are left unchanged.
type Details struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

// Service drives booking sessions.
type Service struct {
	store        Store
	catalog      catalog.Repository
	orchestrator *booking.Orchestrator
	confirmer    ConfirmationSender
	observer     Observer
	hours        booking.BusinessHours
	horizonDays  int
	loc          *time.Location
	now          func() time.Time
	editWait     time.Duration
	logger       *logging.Logger
}

// NewService wires a wizard service. confirmer and observer may be nil.
func NewService(store Store, repo catalog.Repository, orchestrator *booking.Orchestrator, confirmer ConfirmationSender, observer Observer, cfg Config, logger *logging.Logger) *Service {
	if store == nil {
		panic("wizard: session store required")
	}
	if repo == nil {
		panic("wizard: catalog repository required")
	}
	if orchestrator == nil {
		panic("wizard: booking orchestrator required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Hours == (booking.BusinessHours{}) {
		cfg.Hours = booking.DefaultBusinessHours
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = booking.DefaultHorizonDays
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.EditWait <= 0 {
		cfg.EditWait = DefaultEditWait
	}
	return &Service{
		store:        store,
		catalog:      repo,
		orchestrator: orchestrator,
		confirmer:    confirmer,
		observer:     observer,
		hours:        cfg.Hours,
		horizonDays:  cfg.HorizonDays,
		loc:          cfg.Location,
		now:          cfg.Now,
		editWait:     cfg.EditWait,
		logger:       logger,
	}
}

// Services returns the active services. A failed fetch yields an empty list.
func (s *Service) Services(ctx context.Context) []booking.ServiceEntry {
	services, err := s.catalog.ListServices(ctx)
	if err != nil {
		s.fetchFailed(SourceServices, err)
		return nil
	}
	return services
}

// Catalog returns the active services grouped by category.
func (s *Service) Catalog(ctx context.Context) []booking.CategoryGroup {
	return booking.GroupByCategory(s.Services(ctx))
}

// Locations returns the active locations. A failed fetch yields an empty list.
func (s *Service) Locations(ctx context.Context) []booking.Location {
	locations, err := s.catalog.ListLocations(ctx)
	if err != nil {
		s.fetchFailed(SourceLocations, err)
		return nil
	}
	return locations
}

// AvailableDates lists the dates offered from today in the salon's time zone.
func (s *Service) AvailableDates() []civil.Date {
	return booking.GenerateAvailableDates(booking.Today(s.now(), s.loc), s.horizonDays)
}

// TimeSlots lists the offered HH:MM slots.
func (s *Service) TimeSlots() []string {
	return s.hours.Slots()
}

// Start creates a new session.
func (s *Service) Start(ctx context.Context) (*Session, error) {
	sess := NewSession(s.now().UTC())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("booking session started", "session_id", sess.ID)
	return sess, nil
}

// Get loads a session.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

// Submitting reports whether the session's booking is in flight.
func (s *Service) Submitting(ctx context.Context, id string) bool {
	return s.orchestrator.Submitting(ctx, id)
}

// ToggleService adds or removes a catalog service from the draft.
func (s *Service) ToggleService(ctx context.Context, id, serviceID string) (*Session, error) {
	entry, ok := findService(s.Services(ctx), serviceID)
	if !ok {
		return nil, ErrUnknownService
	}
	return s.update(ctx, id, func(sess *Session) error {
		sess.Draft = sess.Draft.ToggleService(entry)
		return nil
	})
}

// SelectLocation sets the location and refreshes its stylists. The location
// is saved before the stylist fetch starts, and the fetched list is only
// applied if that location is still selected when the fetch returns.
func (s *Service) SelectLocation(ctx context.Context, id, locationID string) (*Session, error) {
	loc, ok := findLocation(s.Locations(ctx), locationID)
	if !ok {
		return nil, ErrUnknownLocation
	}
	sess, err := s.update(ctx, id, func(sess *Session) error {
		sess.Draft = sess.Draft.SetLocation(loc.ID, loc.Name)
		sess.Location = &loc
		sess.Stylists = StylistOptions{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.refreshStylists(ctx, sess.ID, loc)
}

// Stylists returns the stylists for the selected location. An empty or
// mismatched stored list is fetched again.
func (s *Service) Stylists(ctx context.Context, id string) ([]booking.Stylist, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Location == nil {
		return nil, nil
	}
	if current := sess.CurrentStylists(); len(current) > 0 {
		return current, nil
	}
	sess, err = s.refreshStylists(ctx, id, *sess.Location)
	if err != nil {
		return nil, err
	}
	return sess.CurrentStylists(), nil
}

func (s *Service) refreshStylists(ctx context.Context, id string, loc booking.Location) (*Session, error) {
	options, err := s.catalog.ListStylists(ctx, loc.BranchRef)
	if err != nil {
		s.fetchFailed(SourceStylists, err, "location_id", loc.ID)
		options = nil
	}
	if options == nil {
		options = []booking.Stylist{}
	}
	result := StylistOptions{LocationID: loc.ID, Options: options}

	release, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ApplyStylists(sess, result) {
		s.logger.Info("discarding stale stylist list",
			"session_id", id,
			"fetched_for", loc.ID,
			"current_location", sess.Draft.LocationID,
		)
		return sess, nil
	}
	sess.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SelectStylist picks a stylist offered at the selected location, or
// booking.AnyStylist for no preference.
func (s *Service) SelectStylist(ctx context.Context, id, stylistID string) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		if stylistID == booking.AnyStylist {
			sess.Draft = sess.Draft.SetStylist(booking.AnyStylist, "")
			return nil
		}
		st, ok := findStylist(sess.CurrentStylists(), stylistID)
		if !ok {
			return ErrUnknownStylist
		}
		sess.Draft = sess.Draft.SetStylist(st.ID, st.Name)
		return nil
	})
}

// SelectDate sets an offered date; the chosen time is cleared.
func (s *Service) SelectDate(ctx context.Context, id string, date civil.Date) (*Session, error) {
	if !booking.IsOfferedDate(s.AvailableDates(), date) {
		return nil, ErrDateUnavailable
	}
	return s.update(ctx, id, func(sess *Session) error {
		sess.Draft = sess.Draft.SetDate(date)
		return nil
	})
}

// SelectTime sets an offered time slot.
func (s *Service) SelectTime(ctx context.Context, id, slot string) (*Session, error) {
	if !booking.IsOfferedSlot(s.TimeSlots(), slot) {
		return nil, ErrSlotUnavailable
	}
	return s.update(ctx, id, func(sess *Session) error {
		sess.Draft = sess.Draft.SetTime(slot)
		return nil
	})
}

// SetDetails applies the present contact fields.
func (s *Service) SetDetails(ctx context.Context, id string, in Details) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		d := sess.Draft
		if in.Name != nil {
			d = d.SetContactField(booking.FieldName, *in.Name)
		}
		if in.Email != nil {
			d = d.SetContactField(booking.FieldEmail, *in.Email)
		}
		if in.Phone != nil {
			d = d.SetContactField(booking.FieldPhone, *in.Phone)
		}
		if in.Notes != nil {
			d = d.SetContactField(booking.FieldNotes, *in.Notes)
		}
		sess.Draft = d
		return nil
	})
}

// Next advances one step when the current step's guard holds. A blocked
// advance is not an error; the session comes back unchanged.
func (s *Service) Next(ctx context.Context, id string) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		next, ok := booking.Next(sess.Step, sess.Draft)
		s.observeStep(sess.Step, DirectionNext, ok)
		sess.Step = next
		return nil
	})
}

// Back moves one step back without checking guards.
func (s *Service) Back(ctx context.Context, id string) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		prev, ok := booking.Back(sess.Step)
		s.observeStep(sess.Step, DirectionBack, ok)
		sess.Step = prev
		return nil
	})
}

// Submit sends the draft from the confirm step. On failure the session is
// left exactly as it was and the error is a *booking.SubmissionError the
// client may retry. On success the draft is discarded and the session holds
// only the confirmation.
//
// The session is read and the booked state saved while the submit guard is
// held, so a second submit either sees the guard or finds the session booked.
func (s *Service) Submit(ctx context.Context, id string) (*Session, error) {
	var sess *Session
	_, err := s.orchestrator.Run(ctx, booking.Attempt{
		DraftID: id,
		Load: func(ctx context.Context) (booking.Draft, booking.Location, *booking.Stylist, error) {
			loaded, err := s.store.Get(ctx, id)
			if err != nil {
				return booking.Draft{}, booking.Location{}, nil, err
			}
			stylist, err := submittable(loaded)
			if err != nil {
				return booking.Draft{}, booking.Location{}, nil, err
			}
			sess = loaded
			return sess.Draft, *sess.Location, stylist, nil
		},
		Commit: func(ctx context.Context, confirmed booking.ConfirmedBooking) error {
			sess.Step = booking.StepBooked
			sess.Confirmation = &confirmed
			sess.Draft = booking.Draft{ID: sess.Draft.ID}
			sess.Stylists = StylistOptions{}
			sess.UpdatedAt = s.now().UTC()
			return s.store.Save(ctx, sess)
		},
	})
	if err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, sess.ID, *sess.Confirmation)
	return sess, nil
}

// submittable checks that sess may be sent and resolves its stylist.
func submittable(sess *Session) (*booking.Stylist, error) {
	switch {
	case sess.Booked():
		return nil, ErrAlreadyBooked
	case sess.Step != booking.StepConfirm, !booking.ReadyToSubmit(sess.Draft):
		return nil, ErrNotAtConfirm
	case sess.Location == nil:
		// Unreachable through the guards; a session restored from an older
		// format could lack it.
		return nil, ErrUnknownLocation
	}
	if sess.Draft.StylistID == "" {
		return nil, nil
	}
	st, ok := findStylist(sess.CurrentStylists(), sess.Draft.StylistID)
	if !ok {
		return nil, ErrUnknownStylist
	}
	return &st, nil
}

func (s *Service) sendConfirmation(ctx context.Context, id string, confirmed booking.ConfirmedBooking) {
	if s.confirmer == nil || confirmed.ClientEmail == "" {
		return
	}
	if err := s.confirmer.SendBookingConfirmation(ctx, confirmed); err != nil {
		s.logger.Warn("booking confirmation email failed", "session_id", id, "error", err)
	}
}

// update loads a session, applies fn and saves it while holding the submit
// guard. Booked sessions and sessions with a submission in flight cannot
// change.
func (s *Service) update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	release, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Booked() {
		return nil, ErrAlreadyBooked
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// lock takes the session's submit guard for a change. Another change holds
// it only for one load and save, so lock retries until editWait has passed;
// after that the holder is taken to be a submission.
func (s *Service) lock(ctx context.Context, id string) (func(), error) {
	deadline := time.Now().Add(s.editWait)
	for {
		release, ok, err := s.orchestrator.Lock(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			return release, nil
		}
		if !time.Now().Before(deadline) {
			return nil, booking.ErrSubmissionInFlight
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(editRetryInterval):
		}
	}
}

func (s *Service) fetchFailed(source string, err error, args ...any) {
	if s.observer != nil {
		s.observer.ObserveFetchFailure(source)
	}
	attrs := append([]any{"source", source, "error", err}, args...)
	s.logger.Warn("catalog fetch failed, rendering empty list", attrs...)
}

func (s *Service) observeStep(from booking.Step, direction string, moved bool) {
	if s.observer != nil {
		s.observer.ObserveStep(from, direction, moved)
	}
}

func findService(entries []booking.ServiceEntry, id string) (booking.ServiceEntry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return booking.ServiceEntry{}, false
}

func findLocation(locations []booking.Location, id string) (booking.Location, bool) {
	for _, l := range locations {
		if l.ID == id {
			return l, true
		}
	}
	return booking.Location{}, false
}

// IsClientError reports whether err is caused by the request rather than by
// the server or the scheduling system.
func IsClientError(err error) bool {
	for _, target := range []error{ErrUnknownService, ErrUnknownLocation, ErrUnknownStylist, ErrDateUnavailable, ErrSlotUnavailable} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
