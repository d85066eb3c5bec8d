package shelly

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/device"
)

// DefaultTimeout is the per-request deadline used when none is configured.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a status response is read.
const maxBodyBytes = 1 << 20

// Result is the outcome of one fetch for one device. Exactly one of Status
// and Err is set.
type Result struct {
	Device    device.Device
	Status    *Status
	QueriedAt time.Time
	Err       *FetchError
}

// OK reports whether the fetch succeeded.
func (r *Result) OK() bool { return r.Err == nil }

// Client queries plug status endpoints. It holds no per-device state and is
// safe for concurrent use.
type Client struct {
	http    *http.Client
	timeout time.Duration
	now     func() time.Time
}

// NewClient builds a Client whose every request is bounded by timeout.
// A non-positive timeout selects DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
		now:     time.Now,
	}
}

// Fetch issues a single GET to the device's status endpoint. Failures are
// returned inside the Result, never retried.
func (c *Client) Fetch(ctx context.Context, dev device.Device) *Result {
	res := &Result{Device: dev, QueriedAt: c.now().UTC()}

	st, err := c.fetch(ctx, dev)
	if err != nil {
		res.Err = err
		slog.Warn("shelly: fetch failed",
			"device", dev.Label, "address", dev.Address, "kind", err.Kind.String(), "err", err.Err)
		return res
	}
	res.Status = st
	return res
}

func (c *Client) fetch(ctx context.Context, dev device.Device) (*Status, *FetchError) {
	fail := func(kind ErrorKind, err error) (*Status, *FetchError) {
		return nil, &FetchError{Kind: kind, Address: dev.Address, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dev.StatusURL(), nil)
	if err != nil {
		return fail(Unreachable, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(classify(err), fmt.Errorf("http get: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fail(classify(err), fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Debug("shelly: non-2xx response body", "address", dev.Address, "body", string(body))
		return fail(MalformedResponse, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	st, err := parseStatus(body)
	if err != nil {
		return fail(MalformedResponse, err)
	}
	return st, nil
}
