// Package scheduling talks to the external scheduling system that owns the
// salon calendar.
package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wolfman30/salon-booking/internal/booking"
	"github.com/wolfman30/salon-booking/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// Config configures a Client.
type Config struct {
	BaseURL    string
	APIKey     string
	BusinessID string
	Timeout    time.Duration
}

// Client wraps the scheduling system's booking REST endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	businessID string
	logger     *logging.Logger
}

// NewClient constructs a scheduling client.
func NewClient(cfg Config, logger *logging.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		businessID: cfg.BusinessID,
		logger:     logger,
	}
}

// CreateBooking posts one booking. The request's idempotency key travels in
// the Idempotency-Key header so the remote side can drop duplicates.
func (c *Client) CreateBooking(ctx context.Context, req booking.Request) (*BookingResponse, error) {
	if strings.TrimSpace(c.businessID) == "" {
		return nil, ErrMissingBusinessID
	}
	path := fmt.Sprintf("/api/v1/businesses/%s/bookings", url.PathEscape(c.businessID))

	headers := http.Header{}
	if req.IdempotencyKey != "" {
		headers.Set("Idempotency-Key", req.IdempotencyKey)
	}

	var resp BookingResponse
	if err := c.doJSON(ctx, http.MethodPost, path, headers, req, &resp); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, headers http.Header, body any, out any) error {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseAPIError(resp.StatusCode, respBody)
		c.logger.Warn("scheduling API non-2xx response", "status", resp.StatusCode, "path", path, "code", apiErr.Code, "message", apiErr.Message)
		return apiErr
	}

	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		switch {
		case env.Error != nil:
			apiErr.Code, apiErr.Message = env.Error.Code, env.Error.Message
		default:
			apiErr.Code, apiErr.Message = env.Code, env.Message
		}
	}
	if apiErr.Message == "" {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 300 {
			msg = msg[:300]
		}
		if msg == "" {
			msg = http.StatusText(status)
		}
		apiErr.Message = msg
	}
	return apiErr
}
