// Package alert delivers alerts to a configured HTTP endpoint, best
// effort: no retries, no queueing, and a delivery failure never affects
// the scan that produced the alert.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/blackwell-systems/hostguard/internal/guard"
)

// PlaceholderEndpoint is the documented "unconfigured" default. Sending
// to it (or to an empty endpoint) is a logged no-op.
const PlaceholderEndpoint = "https://example.com/api/alert"

// EndpointConfigKey is the config-table key holding the alert endpoint.
const EndpointConfigKey = "alert_endpoint"

// Sink posts alerts as JSON to a single endpoint. Redirects are followed
// (some webhook hosts answer a POST with a 302 to a confirmation page).
type Sink struct {
	endpoint string
	client   *http.Client
	logger   *log.Logger
}

// NewSink returns a sink for endpoint. A nil logger discards output.
func NewSink(endpoint string, logger *log.Logger) *Sink {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Sink{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

// Configured reports whether the sink points at a real endpoint.
func (s *Sink) Configured() bool {
	return s.endpoint != "" && s.endpoint != PlaceholderEndpoint
}

// Send POSTs the alert's wire representation to the endpoint. When the
// sink is unconfigured the call is a no-op and returns nil. A non-2xx
// response or transport failure is returned for the caller to log; the
// alert is not retried.
func (s *Sink) Send(ctx context.Context, a guard.Alert) error {
	if !s.Configured() {
		s.logger.Printf("alert endpoint not configured, skipping alert: %s", a.Message)
		return nil
	}

	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post alert: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) // drain for connection reuse

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("alert endpoint returned status %d", resp.StatusCode)
	}

	s.logger.Printf("alert sent: %s (%s)", a.Type, a.Severity)
	return nil
}
