package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"relieflink/pkg/types"
)

const DefaultTimeout = 15 * time.Second

var ErrNotConfigured = errors.New("backend url not configured")

// StatusError is returned when the backend answers outside the 2xx range.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client talks to the relief backend REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient swaps the underlying http client, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

type locationPayload struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
}

// PublishLocation sends the volunteer's latest position.
func (c *Client) PublishLocation(ctx context.Context, pos types.TrackedPosition) error {
	return c.do(ctx, http.MethodPost, "/volunteers/location", locationPayload{
		Lat:       pos.Lat,
		Lng:       pos.Lng,
		Timestamp: pos.TimestampUTC,
		Accuracy:  pos.AccuracyMeters,
	})
}

// PublishDeliveryStatus updates a delivery task's status.
func (c *Client) PublishDeliveryStatus(ctx context.Context, update types.DeliveryStatusUpdate) error {
	if update.TaskID == "" {
		return errors.New("delivery status update has no task id")
	}

	path := fmt.Sprintf("/deliveries/%s/status", url.PathEscape(update.TaskID))
	return c.do(ctx, http.MethodPut, path, update)
}

// Record persists an arbitrary record into a backend collection such as
// "validations" or "matches".
func (c *Client) Record(ctx context.Context, collection string, record any) error {
	collection = strings.Trim(collection, "/")
	if collection == "" {
		return errors.New("record collection is empty")
	}

	return c.do(ctx, http.MethodPost, "/"+url.PathEscape(collection), record)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s body: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(msg)}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
