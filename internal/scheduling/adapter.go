package scheduling

import (
	"context"
	"errors"

	"github.com/wolfman30/salon-booking/internal/booking"
	"github.com/wolfman30/salon-booking/pkg/logging"
)

// Adapter implements booking.Adapter on top of Client.
type Adapter struct {
	client *Client
	logger *logging.Logger
}

// NewAdapter creates a scheduling booking adapter.
func NewAdapter(client *Client, logger *logging.Logger) *Adapter {
	if logger == nil {
		logger = logging.Default()
	}
	return &Adapter{client: client, logger: logger}
}

// Name returns the booking adapter identifier.
func (a *Adapter) Name() string { return "scheduling" }

// CreateBooking sends req once. Any error is returned unchanged so the
// orchestrator can report it as retryable.
func (a *Adapter) CreateBooking(ctx context.Context, req booking.Request) error {
	resp, err := a.client.CreateBooking(ctx, req)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Conflict() {
			a.logger.Warn("scheduling rejected booking as a conflict",
				"branch_ref", req.BranchRef,
				"date", req.Date,
				"time", req.Time,
				"idempotency_key", req.IdempotencyKey,
				"code", apiErr.Code,
			)
		}
		return err
	}
	a.logger.Info("scheduling booking created",
		"external_id", resp.ID,
		"status", resp.Status,
		"branch_ref", req.BranchRef,
		"idempotency_key", req.IdempotencyKey,
	)
	return nil
}

var _ booking.Adapter = (*Adapter)(nil)
