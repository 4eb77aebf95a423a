package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"relieflink/internal/backend"
	"relieflink/internal/db"
	"relieflink/internal/geo"
	"relieflink/internal/store"
	"relieflink/internal/tracker"
	"relieflink/internal/utils"
	"relieflink/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// Dhanmondi to Jatrabari
var defaultRoute = []string{
	"23.7461,90.3742",
	"23.7390,90.3890",
	"23.7300,90.4050",
	"23.7200,90.4200",
	"23.7104,90.4348",
}

var trackCommand = &cli.Command{
	Name:  "track",
	Usage: "Replay a route through the location tracker and report ETAs",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "point",
			Usage: "Route fix as lat,lng; repeat in travel order",
			Value: cli.NewStringSlice(defaultRoute...),
		},
		&cli.StringFlag{
			Name:  "destination",
			Usage: "Delivery destination as lat,lng (defaults to the last point)",
		},
		&cli.StringFlag{
			Name:  "task-id",
			Usage: "Delivery task to publish status updates for",
		},
		&cli.StringFlag{
			Name:  "volunteer-id",
			Usage: "Reference volunteer whose position and availability are kept current (needs DATABASE_URL)",
		},
		&cli.StringFlag{
			Name:  "request-id",
			Usage: "Reference request delivered to; closed on delivery and used as the default destination (needs DATABASE_URL)",
		},
		&cli.DurationFlag{
			Name:  "interval",
			Usage: "Refresh interval (defaults to TRACKING_INTERVAL_SEC)",
		},
	},
	Action: track,
}

func parseLatLng(s string) (types.LatLng, error) {
	lat, lng, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return types.LatLng{}, fmt.Errorf("invalid point %q, want lat,lng", s)
	}

	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return types.LatLng{}, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return types.LatLng{}, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}

	return types.LatLng{Lat: la, Lng: ln}, nil
}

func track(cCtx *cli.Context) error {
	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	logger := newLogger(config, false)

	var points []types.LatLng
	for _, p := range cCtx.StringSlice("point") {
		ll, err := parseLatLng(p)
		if err != nil {
			return err
		}
		points = append(points, ll)
	}
	if len(points) == 0 {
		return fmt.Errorf("at least one --point is required")
	}

	ctx := cCtx.Context
	taskID := cCtx.String("task-id")

	var publishers tracker.Publishers
	if be := backend.NewClient(config.BackendURL, config.BackendToken); be.Configured() {
		publishers = append(publishers, forTask(be, taskID))
	} else {
		logger.Info("BACKEND_URL not set, positions are not published")
	}

	var requestLocation *types.LatLng
	volunteerID, requestID := cCtx.String("volunteer-id"), cCtx.String("request-id")
	if volunteerID != "" || requestID != "" {
		pool, err := db.Connect(ctx, config)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		repo := store.NewReferenceRepository(pool)

		if requestID != "" {
			request, err := repo.Candidates.CandidateByID(ctx, requestID)
			if err != nil {
				return err
			}
			if request == nil {
				return fmt.Errorf("request %s not found", requestID)
			}
			ll := request.LatLng()
			requestLocation = &ll
			logger.WithField("request", request.Name).Info("tracking delivery for request")
		}

		if volunteerID != "" {
			volunteer, err := repo.Volunteers.VolunteerByID(ctx, volunteerID)
			if err != nil {
				return err
			}
			if volunteer == nil {
				return fmt.Errorf("volunteer %s not found", volunteerID)
			}
			logger.WithField("volunteer", volunteer.Name).Info("tracking volunteer")
			publishers = append(publishers, repo.TrackingPublisher(volunteerID, requestID))
		}
	}

	destination := points[len(points)-1]
	if requestLocation != nil {
		destination = *requestLocation
	}
	if d := cCtx.String("destination"); d != "" {
		if destination, err = parseLatLng(d); err != nil {
			return err
		}
	}

	interval := cCtx.Duration("interval")
	if interval <= 0 {
		interval = time.Duration(config.TrackingIntervalSec) * time.Second
	}

	var publisher tracker.Publisher
	if len(publishers) > 0 {
		publisher = publishers
	}

	source := tracker.NewReplaySource(points)
	tr := tracker.New(source, publisher, logger, tracker.Config{
		Interval:        interval,
		Timeout:         time.Duration(config.PositionTimeoutSec) * time.Second,
		MaximumAge:      time.Duration(config.PositionMaxAgeSec) * time.Second,
		AverageSpeedKmh: config.AverageSpeedKmh,
	})

	reportStatus := taskID != "" || volunteerID != ""

	tr.Start()
	defer tr.Stop()

	if reportStatus {
		tr.UpdateDeliveryStatus(ctx, types.DeliveryStatusUpdate{TaskID: taskID, Status: types.DeliveryEnRouteDelivery}, &destination)
	}

	if err := followRoute(ctx, logger, tr, source, points[len(points)-1], destination, interval); err != nil {
		return err
	}

	if reportStatus {
		tr.UpdateDeliveryStatus(ctx, types.DeliveryStatusUpdate{
			TaskID: taskID,
			Status: types.DeliveryDelivered,
			Notes:  utils.StringPtr("route replay finished"),
		}, nil)
	}

	return nil
}

// followRoute reports progress every interval until the replay is exhausted
// and its last point has been stored. Once the source runs dry it allows one
// more refresh cycle for the final fix to land.
func followRoute(ctx context.Context, logger *logrus.Logger, tr *tracker.Tracker, source *tracker.ReplaySource, last, destination types.LatLng, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	drained := false
	for {
		report(logger, tr, destination)

		if msg := tr.LocationError(); msg != "" {
			return fmt.Errorf("tracking failed: %s", msg)
		}
		if source.Remaining() == 0 {
			if pos, ok := tr.CurrentLocation(); (ok && pos.Lat == last.Lat && pos.Lng == last.Lng) || drained {
				return nil
			}
			drained = true
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// locationOnly forwards positions and drops status updates, for runs with
// no delivery task to attach them to.
type locationOnly struct {
	tracker.Publisher
}

func (locationOnly) PublishDeliveryStatus(context.Context, types.DeliveryStatusUpdate) error {
	return nil
}

func forTask(p tracker.Publisher, taskID string) tracker.Publisher {
	if taskID == "" {
		return locationOnly{p}
	}
	return p
}

func report(logger *logrus.Logger, tr *tracker.Tracker, destination types.LatLng) {
	pos, ok := tr.CurrentLocation()
	if !ok {
		logger.Info("waiting for first position")
		return
	}

	entry := logger.WithFields(logrus.Fields{
		"lat": pos.Lat,
		"lng": pos.Lng,
	})

	if km, ok := tr.DistanceTo(destination); ok {
		entry = entry.WithField("distance_km", utils.RoundFloat64(km, 2))
	}
	if eta, ok := tr.EstimateArrival(destination, 0); ok {
		entry = entry.WithFields(logrus.Fields{
			"eta": eta.Format(time.Kitchen),
			"in":  geo.HumanDuration(time.Until(eta)),
		})
	}

	entry.Info("position")
}
