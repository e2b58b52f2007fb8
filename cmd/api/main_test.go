package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/salon-booking/internal/booking"
	appconfig "github.com/wolfman30/salon-booking/internal/config"
	"github.com/wolfman30/salon-booking/pkg/logging"
)

func TestSetupBookingMetricsExposesMetrics(t *testing.T) {
	handler, m := setupBookingMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveSubmission(booking.OutcomeBooked, 0.2)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "salon_booking_submissions_total") {
		t.Fatalf("expected submissions counter to be exported")
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("expected go runtime collector to be exported")
	}
}

func TestBuildServerWithoutExternalDependencies(t *testing.T) {
	cfg := &appconfig.Config{
		BookingAdapter:     "manual",
		SalonName:          "Shear Bliss",
		SalonNotifyEmail:   "desk@shearbliss.com",
		BusinessOpen:       "09:00",
		BusinessClose:      "19:00",
		SlotInterval:       30 * time.Minute,
		BookingHorizonDays: 14,
		SessionTTL:         30 * time.Minute,
		SubmitLockTTL:      time.Minute,
		SubmitRatePerSec:   1,
		SubmitRateBurst:    5,
		SalonTimezone:      "UTC",
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler, cleanup, err := buildServer(ctx, cfg, logging.New("error"))
	if err != nil {
		t.Fatalf("buildServer error: %v", err)
	}
	defer cleanup()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/booking/slots", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("slots status = %d", rr.Code)
	}
	var resp struct {
		Slots []string `json:"slots"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Slots) != 20 || resp.Slots[0] != "09:00" {
		t.Fatalf("slots = %v", resp.Slots)
	}
}

func TestBuildServerRejectsBadHours(t *testing.T) {
	cfg := &appconfig.Config{BusinessOpen: "19:00", BusinessClose: "09:00", SlotInterval: 30 * time.Minute}
	if _, cleanup, err := buildServer(context.Background(), cfg, logging.New("error")); err == nil {
		cleanup()
		t.Fatal("expected error for inverted business hours")
	}
}

func TestBuildServerRejectsLockShorterThanSchedulingTimeout(t *testing.T) {
	cfg := &appconfig.Config{
		BookingAdapter:    "manual",
		SalonNotifyEmail:  "desk@shearbliss.com",
		BusinessOpen:      "09:00",
		BusinessClose:     "19:00",
		SlotInterval:      30 * time.Minute,
		SubmitLockTTL:     10 * time.Second,
		SchedulingTimeout: 30 * time.Second,
	}
	_, cleanup, err := buildServer(context.Background(), cfg, logging.New("error"))
	if err == nil {
		cleanup()
		t.Fatal("expected error when the scheduling timeout outlives the submit lock")
	}
	if !strings.Contains(err.Error(), "SUBMIT_LOCK_TTL") {
		t.Fatalf("error = %v", err)
	}
}
