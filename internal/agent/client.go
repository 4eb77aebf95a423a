package agent

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
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 4 << 20
)

type FailureKind string

const (
	FailureNone              FailureKind = ""
	FailureUnconfigured      FailureKind = "unconfigured"
	FailureTransport         FailureKind = "transport"
	FailureTimeout           FailureKind = "timeout"
	FailureHTTPStatus        FailureKind = "http_status"
	FailureDecode            FailureKind = "decode"
	FailureUnrecognizedShape FailureKind = "unrecognized_shape"
	FailurePanic             FailureKind = "panic"
)

// HTTPError is returned inside a Result when the agent answers with a
// status of 400 or above.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *HTTPError) Error() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, string(e.Body))
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// Result is the tagged outcome of one agent call. Exactly one of Data or
// Failure is meaningful.
type Result struct {
	Capability Capability
	OK         bool
	Data       json.RawMessage
	Shape      string
	Failure    FailureKind
	Err        error
	StatusCode int
	Duration   time.Duration
}

// Decode unmarshals the normalized result into v.
func (r Result) Decode(v any) error {
	if !r.OK {
		return fmt.Errorf("no %s result: %w", r.Capability, r.Err)
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode %s result: %w", r.Capability, err)
	}
	return nil
}

type CallEvent struct {
	Capability Capability
	URL        string
	OK         bool
	Shape      string
	Failure    FailureKind
	Err        error
	StatusCode int
	Duration   time.Duration
}

// Observer sees every call and its outcome.
type Observer func(CallEvent)

// Client calls named remote agent capabilities. Call never returns an
// error; failures come back tagged on the Result.
type Client struct {
	httpClient *http.Client
	endpoints  map[Capability]string
	token      string
	timeout    time.Duration
	shapes     []Shape
	observer   Observer
	logger     logrus.FieldLogger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithObserver replaces the default logging observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithShapes appends envelope shapes after the defaults.
func WithShapes(shapes ...Shape) Option {
	return func(c *Client) {
		c.shapes = append(c.shapes, shapes...)
	}
}

func NewClient(endpoints map[Capability]string, opts ...Option) *Client {
	eps := make(map[Capability]string, len(endpoints))
	for k, v := range endpoints {
		if v = strings.TrimSpace(v); v != "" {
			eps[k] = v
		}
	}

	c := &Client{
		httpClient: &http.Client{},
		endpoints:  eps,
		timeout:    DefaultTimeout,
		shapes:     DefaultShapes(),
		logger:     logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.observer == nil {
		c.observer = LogObserver(c.logger)
	}

	return c
}

// Configured reports whether an endpoint is set for capability.
func (c *Client) Configured(capability Capability) bool {
	_, ok := c.endpoints[capability]
	return ok
}

func (c *Client) Call(ctx context.Context, capability Capability, payload any) (res Result) {
	started := time.Now()
	url := c.endpoints[capability]

	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Capability: capability,
				Failure:    FailurePanic,
				Err:        fmt.Errorf("agent call panicked: %v", r),
			}
		}
		res.Duration = time.Since(started)
		c.observe(url, res)
	}()

	res.Capability = capability

	spec, ok := specs[capability]
	if !ok || url == "" {
		return fail(res, FailureUnconfigured, fmt.Errorf("no agent endpoint configured for %q", capability))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, status, err := c.post(ctx, url, payload)
	res.StatusCode = status
	if err != nil {
		var httpErr *HTTPError
		switch {
		case errors.As(err, &httpErr):
			return fail(res, FailureHTTPStatus, err)
		case isTimeout(ctx, err):
			return fail(res, FailureTimeout, err)
		default:
			return fail(res, FailureTransport, err)
		}
	}

	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return fail(res, FailureDecode, fmt.Errorf("decode agent response: %w", err))
	}

	data, shape, err := Extract(root, spec, c.shapes)
	if err != nil {
		return fail(res, FailureUnrecognizedShape, err)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fail(res, FailureDecode, fmt.Errorf("encode normalized result: %w", err))
	}

	res.OK = true
	res.Data = raw
	res.Shape = shape
	return res
}

func fail(res Result, kind FailureKind, err error) Result {
	res.OK = false
	res.Failure = kind
	res.Err = err
	return res
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, int, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("call agent: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read agent response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, resp.StatusCode, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       body,
		}
	}

	return body, resp.StatusCode, nil
}

func (c *Client) observe(url string, res Result) {
	if c.observer == nil {
		return
	}
	c.observer(CallEvent{
		Capability: res.Capability,
		URL:        url,
		OK:         res.OK,
		Shape:      res.Shape,
		Failure:    res.Failure,
		Err:        res.Err,
		StatusCode: res.StatusCode,
		Duration:   res.Duration,
	})
}

// LogObserver logs each call through logger.
func LogObserver(logger logrus.FieldLogger) Observer {
	return func(ev CallEvent) {
		entry := logger.WithFields(logrus.Fields{
			"capability":  ev.Capability,
			"duration_ms": ev.Duration.Milliseconds(),
		})

		if ev.OK {
			entry.WithField("shape", ev.Shape).Info("agent call succeeded")
			return
		}

		entry = entry.WithField("failure", ev.Failure)
		if ev.StatusCode != 0 {
			entry = entry.WithField("status", ev.StatusCode)
		}
		entry.WithError(ev.Err).Warn("agent call failed, fallback triggered")
	}
}
