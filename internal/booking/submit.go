package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/salon-booking/pkg/logging"
)

var bookingTracer = otel.Tracer("salon.internal.booking")

// Submission outcomes reported to a SubmitObserver.
const (
	OutcomeBooked   = "booked"
	OutcomeFailed   = "failed"
	OutcomeInFlight = "in_flight"
)

// SubmitObserver receives one call per submission attempt.
type SubmitObserver interface {
	ObserveSubmission(outcome string, seconds float64)
}

// Orchestrator turns a finished draft into one booking request and sends it.
// It trusts the step guards: a draft that reached confirm is not re-validated.
type Orchestrator struct {
	adapter  Adapter
	guard    Guard
	observer SubmitObserver
	logger   *logging.Logger
}

// NewOrchestrator creates an orchestrator. A nil guard falls back to an
// in-process LocalGuard; observer may be nil.
func NewOrchestrator(adapter Adapter, guard Guard, observer SubmitObserver, logger *logging.Logger) *Orchestrator {
	if guard == nil {
		guard = NewLocalGuard()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		adapter:  adapter,
		guard:    guard,
		observer: observer,
		logger:   logger,
	}
}

// Attempt is one submission. Load runs once the draft's guard is held and
// returns what to send, so state read there cannot change underneath the
// call. Commit runs after the booking is accepted and before the guard is
// released; Commit may be nil.
type Attempt struct {
	DraftID string
	Load    func(ctx context.Context) (Draft, Location, *Stylist, error)
	Commit  func(ctx context.Context, confirmed ConfirmedBooking) error
}

// Submit sends the booking for d to the adapter exactly once. loc and stylist
// are the options the client picked from lists fetched earlier; stylist is nil
// for no preference.
//
// While the call is in flight the draft's guard is held and a second Submit
// for the same draft returns ErrSubmissionInFlight without calling the
// adapter. A failed call releases the guard and returns a *SubmissionError;
// d is a value and is never modified, so the caller can retry with it.
func (o *Orchestrator) Submit(ctx context.Context, d Draft, loc Location, stylist *Stylist) (*ConfirmedBooking, error) {
	return o.Run(ctx, Attempt{
		DraftID: d.ID,
		Load: func(context.Context) (Draft, Location, *Stylist, error) {
			return d, loc, stylist, nil
		},
	})
}

// Run performs a with the guard for a.DraftID held from Load through Commit.
// A Load error is returned as is and nothing is sent. A Commit error is
// logged but not returned: the booking already exists remotely.
func (o *Orchestrator) Run(ctx context.Context, a Attempt) (*ConfirmedBooking, error) {
	if o.adapter == nil {
		return nil, ErrNoAdapter
	}

	ctx, span := bookingTracer.Start(ctx, "booking.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("salon.draft_id", a.DraftID),
		attribute.String("salon.adapter", o.adapter.Name()),
	)

	release, acquired, err := o.guard.TryAcquire(ctx, a.DraftID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("booking: acquire submit guard: %w", err)
	}
	if !acquired {
		o.observe(OutcomeInFlight, 0)
		o.logger.Warn("booking submission rejected: already in flight", "draft_id", a.DraftID)
		return nil, ErrSubmissionInFlight
	}
	defer release()

	d, loc, stylist, err := a.Load(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("salon.location_id", loc.ID),
		attribute.Int("salon.service_count", len(d.Services)),
	)

	req, err := BuildRequest(d, loc, stylist)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	start := time.Now()
	err = o.adapter.CreateBooking(ctx, req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		span.RecordError(err)
		o.observe(OutcomeFailed, elapsed)
		o.logger.Error("booking submission failed",
			"error", err,
			"draft_id", d.ID,
			"adapter", o.adapter.Name(),
			"location_id", loc.ID,
			"idempotency_key", req.IdempotencyKey,
		)
		return nil, &SubmissionError{Adapter: o.adapter.Name(), Retryable: true, Err: err}
	}

	o.observe(OutcomeBooked, elapsed)
	o.logger.Info("booking submitted",
		"draft_id", d.ID,
		"adapter", o.adapter.Name(),
		"location_id", loc.ID,
		"service_count", len(req.ServiceIDs),
		"date", req.Date,
		"time", req.Time,
	)
	confirmed := req.Summary
	if a.Commit != nil {
		if err := a.Commit(ctx, confirmed); err != nil {
			span.RecordError(err)
			o.logger.Error("failed to record accepted booking", "draft_id", d.ID, "error", err)
		}
	}
	return &confirmed, nil
}

// Lock takes the draft's guard for a change that must not overlap a
// submission. ok is false while a submission or another change holds it.
func (o *Orchestrator) Lock(ctx context.Context, draftID string) (release func(), ok bool, err error) {
	release, ok, err = o.guard.TryAcquire(ctx, draftID)
	if err != nil {
		return nil, false, fmt.Errorf("booking: acquire submit guard: %w", err)
	}
	return release, ok, nil
}

// Submitting reports whether a submission of draftID is in flight. Guard
// errors read as not submitting.
func (o *Orchestrator) Submitting(ctx context.Context, draftID string) bool {
	held, err := o.guard.Held(ctx, draftID)
	if err != nil {
		o.logger.Warn("submit guard lookup failed", "draft_id", draftID, "error", err)
		return false
	}
	return held
}

func (o *Orchestrator) observe(outcome string, seconds float64) {
	if o.observer == nil {
		return
	}
	o.observer.ObserveSubmission(outcome, seconds)
}

// BuildRequest assembles the booking payload for d. The staff ref is nil when
// stylist is nil or carries no external ref.
func BuildRequest(d Draft, loc Location, stylist *Stylist) (Request, error) {
	req := Request{
		BranchRef:  loc.BranchRef,
		ServiceIDs: d.ServiceIDs(),
		Time:       d.Time,
		Client: ClientContact{
			Name:  d.ClientName,
			Email: d.ClientEmail,
			Phone: d.ClientPhone,
		},
		Notes: d.Notes,
	}
	if d.Date != nil {
		req.Date = d.Date.String()
	}

	stylistName := d.StylistName
	if stylist != nil && stylist.StaffRef != "" {
		ref := stylist.StaffRef
		req.StaffRef = &ref
		if stylistName == "" {
			stylistName = stylist.Name
		}
	}
	if stylistName == "" {
		stylistName = FirstAvailable
	}

	locationName := d.LocationName
	if locationName == "" {
		locationName = loc.Name
	}

	req.Summary = ConfirmedBooking{
		LocationName: locationName,
		StylistName:  stylistName,
		ServiceNames: d.ServiceNames(),
		Date:         req.Date,
		Time:         req.Time,
		ClientName:   d.ClientName,
		ClientEmail:  d.ClientEmail,
	}

	key, err := idempotencyKey(d.ID, req)
	if err != nil {
		return Request{}, err
	}
	req.IdempotencyKey = key
	return req, nil
}

// idempotencyKey is a name-based UUID of the wire payload inside the draft's
// namespace: identical retries share a key, edited payloads get a new one.
func idempotencyKey(draftID string, req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("booking: marshal request: %w", err)
	}
	namespace, err := uuid.Parse(draftID)
	if err != nil {
		namespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte(draftID))
	}
	return uuid.NewSHA1(namespace, payload).String(), nil
}
