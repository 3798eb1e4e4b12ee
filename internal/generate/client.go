package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pg-png/restaurant-content-creator/internal/logging"
)

// maxResponseBytes caps how much of the service response is read (1 MB).
// The body is a small JSON document; anything larger is misbehavior.
const maxResponseBytes = 1024 * 1024

// ErrSubmissionInFlight is returned when Submit is called while another
// submission has not settled. The UI disables re-entrant submissions, but
// the guard makes the single-flight assumption structural rather than
// implicit.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// Client submits transformation requests to the generation service.
//
// A Client holds no per-request state beyond the single-flight guard and is
// safe to reuse across submissions.
type Client struct {
	endpoint string
	timeout  time.Duration
	// httpClient carries no Timeout of its own; the per-submission context
	// deadline governs the request lifetime, and cancelling the context
	// cancels the in-flight call rather than just ignoring its result.
	httpClient *http.Client
	logger     *logging.Logger
	inFlight   atomic.Bool
}

// NewClient creates a client for the given endpoint. timeout is the hard
// per-submission deadline; zero or negative values fall back to
// DefaultTimeoutSeconds.
func NewClient(endpoint string, timeout time.Duration, logger *logging.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeoutSeconds * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		timeout:    timeout,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit sends one (normalized image, prompt) pair to the service and
// returns the classified Outcome.
//
// normalizedImage may carry a data-URI prefix; it is stripped before
// transmission. settle, if non-nil, runs exactly once when the submission
// settles, on every exit path including the timeout. Callers use it to
// clear their "processing" state and drop the held image reference.
//
// Submit never interprets payload semantics itself; response bodies are
// handed to Classify. The only error it returns is ErrSubmissionInFlight;
// every other failure mode is expressed as an Outcome.
func (c *Client) Submit(ctx context.Context, normalizedImage, prompt string, settle func()) (Outcome, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return Outcome{}, ErrSubmissionInFlight
	}
	defer c.inFlight.Store(false)

	var once sync.Once
	defer func() {
		if settle != nil {
			once.Do(settle)
		}
	}()

	// The deadline doubles as the cancellation token: when it fires, the
	// transport abandons the connection and a late-arriving response can
	// never reach the classifier for this submission.
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(transformRequest{
		Image:  stripDataURI(normalizedImage),
		Prompt: prompt,
		Style:  StylePreset,
	})
	if err != nil {
		return Failed(fmt.Sprintf("Could not encode request: %v", err)), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Failed(fmt.Sprintf("Could not build request: %v", err)), nil
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Submitting generation request (prompt=%q, payload=%d bytes)", prompt, len(body))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome := c.classifyTransport(err)
		c.logger.Warn("Generation request failed after %v: %s", time.Since(start).Round(time.Millisecond), outcome.ReasonText)
		return outcome, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		outcome := c.classifyTransport(err)
		c.logger.Warn("Failed reading generation response: %s", outcome.ReasonText)
		return outcome, nil
	}

	// Non-200 statuses still carry a JSON body describing the failure, so
	// the body is classified either way; the status is only logged.
	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("Service responded with status %d", resp.StatusCode)
	}

	outcome := Classify(raw)
	c.logger.Info("Generation request settled in %v: %s", time.Since(start).Round(time.Millisecond), outcome.Kind)
	return outcome, nil
}

// classifyTransport converts low-level HTTP errors into transport outcomes,
// distinguishing the client-side timeout from other network failures.
func (c *Client) classifyTransport(err error) Outcome {
	// Check for context deadline exceeded (timeout)
	if errors.Is(err, context.DeadlineExceeded) {
		return TransportError(fmt.Sprintf("Request timed out after %v", c.timeout), true)
	}

	// Check for timeout from the net package
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TransportError(fmt.Sprintf("Request timed out after %v", c.timeout), true)
	}

	// Check for connection refused (service not reachable)
	var syscallErr syscall.Errno
	if errors.As(err, &syscallErr) && syscallErr == syscall.ECONNREFUSED {
		return TransportError(fmt.Sprintf("Generation service is unreachable at %s (connection refused)", c.endpoint), false)
	}

	// Everything else (DNS failures, resets, TLS errors) surfaces as-is.
	return TransportError(fmt.Sprintf("Network error: %v", err), false)
}

// stripDataURI removes an embedding-scheme prefix such as
// "data:image/jpeg;base64," and returns the raw encoded bytes. Input
// without a prefix passes through unchanged.
func stripDataURI(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return s
}
