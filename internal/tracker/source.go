package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"relieflink/pkg/types"
)

// PositionOptions mirrors what a device location API accepts.
type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

type Fix struct {
	Lat       float64
	Lng       float64
	Accuracy  *float64
	Timestamp time.Time
}

// PositionSource is anything that can report where the device is right now.
type PositionSource interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (Fix, error)
}

type PositionErrorCode int

const (
	PositionUnknown          PositionErrorCode = 0
	PositionPermissionDenied PositionErrorCode = 1
	PositionUnavailable      PositionErrorCode = 2
	PositionTimeout          PositionErrorCode = 3
)

type PositionError struct {
	Code PositionErrorCode
	Err  error
}

func (e *PositionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("position error %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("position error %d", e.Code)
}

func (e *PositionError) Unwrap() error {
	return e.Err
}

// Message is the text shown to the human for a failed fix.
func (e *PositionError) Message() string {
	switch e.Code {
	case PositionPermissionDenied:
		return "Location permission denied. Please enable location access."
	case PositionUnavailable:
		return "Location information is unavailable."
	case PositionTimeout:
		return "Location request timed out."
	default:
		return "An unknown error occurred while getting location."
	}
}

func classifyPositionError(err error) *PositionError {
	var pe *PositionError
	if errors.As(err, &pe) {
		return pe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &PositionError{Code: PositionTimeout, Err: err}
	}
	return &PositionError{Code: PositionUnknown, Err: err}
}

// ReplaySource hands out a fixed sequence of fixes, one per request, and
// keeps returning the last one once exhausted. Fixes carry the time they
// were handed out.
type ReplaySource struct {
	mu    sync.Mutex
	fixes []types.LatLng
	next  int
	now   func() time.Time
}

func NewReplaySource(fixes []types.LatLng) *ReplaySource {
	return &ReplaySource{fixes: fixes, now: time.Now}
}

func (s *ReplaySource) CurrentPosition(ctx context.Context, _ PositionOptions) (Fix, error) {
	if err := ctx.Err(); err != nil {
		return Fix{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.fixes) == 0 {
		return Fix{}, &PositionError{Code: PositionUnavailable}
	}

	idx := s.next
	if idx >= len(s.fixes) {
		idx = len(s.fixes) - 1
	} else {
		s.next++
	}

	p := s.fixes[idx]
	return Fix{Lat: p.Lat, Lng: p.Lng, Timestamp: s.now().UTC()}, nil
}

// Remaining reports how many fixes have not been handed out yet.
func (s *ReplaySource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fixes) - s.next
}
