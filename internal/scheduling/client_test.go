package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/salon-booking/internal/booking"
	"github.com/wolfman30/salon-booking/pkg/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(Config{BaseURL: ts.URL + "/", APIKey: "key-1", BusinessID: "biz-1"}, logging.Default())
}

func sampleRequest() booking.Request {
	ref := "staff-42"
	return booking.Request{
		BranchRef:      "branch-9",
		StaffRef:       &ref,
		ServiceIDs:     []string{"svc-1", "svc-2"},
		Date:           "2026-02-23",
		Time:           "10:00",
		Client:         booking.ClientContact{Name: "Jane Doe", Email: "jane@example.com", Phone: "+15555550123"},
		Notes:          "first visit",
		IdempotencyKey: "0f8c2a3e-5b7d-5c1e-9a4f-2d6b8e0c1a3f",
	}
}

func TestClient_CreateBooking_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/v1/businesses/biz-1/bookings" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
			t.Fatalf("authorization = %q", got)
		}
		if got := r.Header.Get("Idempotency-Key"); got != "0f8c2a3e-5b7d-5c1e-9a4f-2d6b8e0c1a3f" {
			t.Fatalf("idempotency key = %q", got)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["branchRef"] != "branch-9" || body["staffRef"] != "staff-42" || body["date"] != "2026-02-23" || body["time"] != "10:00" {
			t.Fatalf("unexpected body: %v", body)
		}
		if ids, _ := body["serviceIds"].([]any); len(ids) != 2 || ids[0] != "svc-1" {
			t.Fatalf("service ids = %v", body["serviceIds"])
		}
		client, _ := body["client"].(map[string]any)
		if client["email"] != "jane@example.com" {
			t.Fatalf("client = %v", client)
		}
		if _, leaked := body["IdempotencyKey"]; leaked {
			t.Fatal("idempotency key must not be in the body")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"ext-77","status":"confirmed"}`))
	})

	resp, err := client.CreateBooking(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}
	if resp.ID != "ext-77" || resp.Status != "confirmed" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestClient_CreateBooking_NullStaffRef(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		v, ok := body["staffRef"]
		if !ok || v != nil {
			t.Fatalf("staffRef = %v (present=%v), want explicit null", v, ok)
		}
		w.WriteHeader(http.StatusCreated)
	})

	req := sampleRequest()
	req.StaffRef = nil
	if _, err := client.CreateBooking(context.Background(), req); err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}
}

func TestClient_CreateBooking_APIError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{"nested error", http.StatusConflict, `{"error":{"code":"slot_taken","message":"slot no longer available"}}`, "slot_taken", "slot no longer available"},
		{"flat error", http.StatusBadRequest, `{"code":"invalid_branch","message":"unknown branch"}`, "invalid_branch", "unknown branch"},
		{"plain text", http.StatusBadGateway, `upstream down`, "", "upstream down"},
		{"empty body", http.StatusServiceUnavailable, ``, "", "Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.CreateBooking(context.Background(), sampleRequest())
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T: %v", err, err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Code != tt.wantCode || apiErr.Message != tt.wantMsg {
				t.Fatalf("api error = %+v", apiErr)
			}
			if apiErr.Conflict() != (tt.status == http.StatusConflict) {
				t.Fatalf("Conflict() = %v", apiErr.Conflict())
			}
		})
	}
}

func TestClient_CreateBooking_MissingBusinessID(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:0"}, nil)
	if _, err := client.CreateBooking(context.Background(), sampleRequest()); !errors.Is(err, ErrMissingBusinessID) {
		t.Fatalf("error = %v, want ErrMissingBusinessID", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(ts.Close)

	client := NewClient(Config{BaseURL: ts.URL, BusinessID: "biz-1", Timeout: 50 * time.Millisecond}, nil)
	if _, err := client.CreateBooking(context.Background(), sampleRequest()); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestAdapter_FailureFeedsOrchestrator(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"id":"ext-1","status":"confirmed"}`))
	})
	adapter := NewAdapter(client, nil)
	if adapter.Name() != "scheduling" {
		t.Fatalf("name = %s", adapter.Name())
	}

	orch := booking.NewOrchestrator(adapter, nil, nil, nil)
	draft := booking.NewDraft().
		ToggleService(booking.ServiceEntry{ID: "svc-1", Name: "Haircut", DurationMinutes: 30}).
		SetLocation("loc-1", "Downtown").
		SetStylist(booking.AnyStylist, "").
		SetTime("10:00").
		SetContactField(booking.FieldName, "Jane").
		SetContactField(booking.FieldEmail, "jane@example.com").
		SetContactField(booking.FieldPhone, "555")
	loc := booking.Location{ID: "loc-1", Name: "Downtown", BranchRef: "branch-9"}

	_, err := orch.Submit(context.Background(), draft, loc, nil)
	if !booking.IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected wrapped APIError, got %v", err)
	}

	confirmed, err := orch.Submit(context.Background(), draft, loc, nil)
	if err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if confirmed.StylistName != booking.FirstAvailable || confirmed.LocationName != "Downtown" {
		t.Fatalf("confirmation = %+v", confirmed)
	}
}

func TestAdapter_LogsConflict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"slot_taken","message":"slot no longer available"}}`))
	})
	var buf bytes.Buffer
	adapter := NewAdapter(client, logging.NewWithWriter("debug", &buf))

	err := adapter.CreateBooking(context.Background(), sampleRequest())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.Conflict() {
		t.Fatalf("expected conflict APIError, got %v", err)
	}
	if !strings.Contains(buf.String(), "conflict") || !strings.Contains(buf.String(), "slot_taken") {
		t.Fatalf("conflict not logged: %s", buf.String())
	}
}
