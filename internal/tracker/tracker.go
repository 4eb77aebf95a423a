package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"relieflink/internal/geo"
	"relieflink/pkg/types"

	"github.com/sirupsen/logrus"
)

// Publisher forwards tracker output to the backend. Failures are logged by
// the tracker and never stop tracking.
type Publisher interface {
	PublishLocation(ctx context.Context, pos types.TrackedPosition) error
	PublishDeliveryStatus(ctx context.Context, update types.DeliveryStatusUpdate) error
}

type Config struct {
	Interval        time.Duration
	Timeout         time.Duration
	MaximumAge      time.Duration
	PublishTimeout  time.Duration
	AverageSpeedKmh float64
}

func DefaultConfig() Config {
	return Config{
		Interval:        30 * time.Second,
		Timeout:         10 * time.Second,
		MaximumAge:      60 * time.Second,
		PublishTimeout:  10 * time.Second,
		AverageSpeedKmh: geo.DefaultAverageSpeedKmh,
	}
}

// Tracker keeps a best-effort current position for one volunteer. At most
// one refresh loop runs per Tracker; Stop joins it before returning.
type Tracker struct {
	source    PositionSource
	publisher Publisher
	logger    logrus.FieldLogger
	config    Config
	now       func() time.Time

	mu       sync.Mutex
	current  *types.TrackedPosition
	locErr   string
	tracking bool
	session  uint64
	cancel   context.CancelFunc
	done     chan struct{}
}

func New(source PositionSource, publisher Publisher, logger logrus.FieldLogger, config Config) *Tracker {
	defaults := DefaultConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaximumAge <= 0 {
		config.MaximumAge = defaults.MaximumAge
	}
	if config.PublishTimeout <= 0 {
		config.PublishTimeout = defaults.PublishTimeout
	}
	if config.AverageSpeedKmh <= 0 {
		config.AverageSpeedKmh = defaults.AverageSpeedKmh
	}

	if publisher == nil {
		publisher = nopPublisher{}
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Tracker{
		source:    source,
		publisher: publisher,
		logger:    logger.WithField("component", "tracker"),
		config:    config,
		now:       time.Now,
	}
}

// Start begins tracking. It requests a fix immediately and then every
// Interval. Calling Start while tracking is a no-op.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tracking {
		return
	}

	t.session++
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	t.tracking = true
	t.locErr = ""
	t.cancel = cancel
	t.done = done

	go t.run(ctx, t.session, done)

	t.logger.WithField("interval", t.config.Interval.String()).Info("location tracking started")
}

// Stop cancels the refresh loop and waits for it to exit. A request already
// in flight may still complete; its result is discarded. The last known
// position is kept.
func (t *Tracker) Stop() {
	t.mu.Lock()
	wasTracking := t.tracking
	t.locErr = ""
	halt := t.detachLocked()
	t.mu.Unlock()

	halt()

	if wasTracking {
		t.logger.Info("location tracking stopped")
	}
}

// detachLocked ends the current session and returns a func that cancels and
// joins its loop. The caller must hold t.mu and call the func after
// releasing it.
func (t *Tracker) detachLocked() func() {
	t.tracking = false
	t.session++

	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil

	return func() {
		if cancel == nil {
			return
		}
		cancel()
		<-done
	}
}

func (t *Tracker) run(ctx context.Context, session uint64, done chan struct{}) {
	defer close(done)

	go t.refresh(session)

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go t.refresh(session)
		}
	}
}

func (t *Tracker) refresh(session uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), t.config.Timeout)
	defer cancel()

	fix, err := t.requestPosition(ctx)

	t.mu.Lock()
	if session != t.session {
		t.mu.Unlock()
		t.logger.Debug("discarding position from a stopped session")
		return
	}

	if err != nil {
		pe := classifyPositionError(err)
		t.locErr = pe.Message()
		halt := t.detachLocked()
		t.mu.Unlock()

		t.logger.WithError(err).WithField("code", pe.Code).Warn("position request failed, tracking halted")
		halt()
		return
	}

	pos := types.TrackedPosition{
		Lat:            fix.Lat,
		Lng:            fix.Lng,
		TimestampUTC:   fix.Timestamp.UTC(),
		AccuracyMeters: fix.Accuracy,
	}
	t.current = &pos
	t.locErr = ""
	t.mu.Unlock()

	t.publishLocation(pos)
}

func (t *Tracker) requestPosition(ctx context.Context) (Fix, error) {
	type result struct {
		fix Fix
		err error
	}

	ch := make(chan result, 1)
	go func() {
		fix, err := t.source.CurrentPosition(ctx, PositionOptions{
			HighAccuracy: true,
			Timeout:      t.config.Timeout,
			MaximumAge:   t.config.MaximumAge,
		})
		ch <- result{fix: fix, err: err}
	}()

	var res result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return Fix{}, &PositionError{Code: PositionTimeout, Err: ctx.Err()}
	}

	if res.err != nil {
		return Fix{}, res.err
	}

	now := t.now()
	if res.fix.Timestamp.IsZero() {
		res.fix.Timestamp = now
	}

	if now.Sub(res.fix.Timestamp) > t.config.MaximumAge {
		return Fix{}, &PositionError{Code: PositionUnavailable}
	}

	return res.fix, nil
}

func (t *Tracker) publishLocation(pos types.TrackedPosition) {
	ctx, cancel := context.WithTimeout(context.Background(), t.config.PublishTimeout)
	defer cancel()

	if err := t.publisher.PublishLocation(ctx, pos); err != nil {
		t.logger.WithError(err).Warn("failed to publish location")
	}
}

func (t *Tracker) IsTracking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tracking
}

// LocationError is the human-readable reason tracking last failed, or "".
func (t *Tracker) LocationError() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.locErr
}

func (t *Tracker) CurrentLocation() (types.TrackedPosition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return types.TrackedPosition{}, false
	}
	return *t.current, true
}

func (t *Tracker) currentLatLng() *types.LatLng {
	pos, ok := t.CurrentLocation()
	if !ok {
		return nil
	}
	ll := pos.LatLng()
	return &ll
}

// DistanceTo is the great-circle distance from the current position to
// target. ok is false until the first fix arrives.
func (t *Tracker) DistanceTo(target types.LatLng) (km float64, ok bool) {
	from := t.currentLatLng()
	if from == nil {
		return 0, false
	}
	return geo.DistanceKm(*from, target), true
}

// EstimateArrival projects an arrival time at target. A non-positive speed
// uses the configured average.
func (t *Tracker) EstimateArrival(target types.LatLng, speedKmh float64) (time.Time, bool) {
	if speedKmh <= 0 {
		speedKmh = t.config.AverageSpeedKmh
	}
	return geo.EstimateArrival(t.currentLatLng(), target, speedKmh)
}

// UpdateDeliveryStatus attaches location and ETA to update and publishes it.
// A location carried by the update becomes the current position and is
// republished. Publish failures are logged; the enriched update is always
// returned.
func (t *Tracker) UpdateDeliveryStatus(ctx context.Context, update types.DeliveryStatusUpdate, destination *types.LatLng) types.DeliveryStatusUpdate {
	log := t.logger.WithFields(logrus.Fields{
		"task_id": update.TaskID,
		"status":  update.Status,
	})

	if update.Status.Rank() < 0 {
		log.Warn("unknown delivery status")
	}

	if update.Location != nil {
		pos := *update.Location
		if pos.TimestampUTC.IsZero() {
			pos.TimestampUTC = t.now().UTC()
		}
		update.Location = &pos

		t.mu.Lock()
		adopted := pos
		t.current = &adopted
		t.mu.Unlock()

		t.publishLocation(pos)
	} else if pos, ok := t.CurrentLocation(); ok {
		update.Location = &pos
	}

	if update.EstimatedArrival == nil && destination != nil && update.Location != nil {
		from := update.Location.LatLng()
		if eta, ok := geo.EstimateArrival(&from, *destination, t.config.AverageSpeedKmh); ok {
			update.EstimatedArrival = &eta
		}
	}

	if err := t.publisher.PublishDeliveryStatus(ctx, update); err != nil {
		log.WithError(err).Warn("failed to publish delivery status")
	} else {
		log.Debug("delivery status published")
	}

	return update
}

// Publishers sends every update to each publisher in order and joins their
// errors.
type Publishers []Publisher

func (p Publishers) PublishLocation(ctx context.Context, pos types.TrackedPosition) error {
	var errs []error
	for _, pub := range p {
		if err := pub.PublishLocation(ctx, pos); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p Publishers) PublishDeliveryStatus(ctx context.Context, update types.DeliveryStatusUpdate) error {
	var errs []error
	for _, pub := range p {
		if err := pub.PublishDeliveryStatus(ctx, update); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type nopPublisher struct{}

func (nopPublisher) PublishLocation(context.Context, types.TrackedPosition) error { return nil }

func (nopPublisher) PublishDeliveryStatus(context.Context, types.DeliveryStatusUpdate) error {
	return nil
}
