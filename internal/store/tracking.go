package store

import (
	"context"
	"errors"

	"relieflink/pkg/types"
)

// TrackingPublisher mirrors a tracked delivery into the reference tables.
// It satisfies tracker.Publisher.
type TrackingPublisher struct {
	repo        *ReferenceRepository
	volunteerID string
	requestID   string
}

// TrackingPublisher returns a publisher for volunteerID. requestID, when
// set, is closed once the delivery is done.
func (r *ReferenceRepository) TrackingPublisher(volunteerID, requestID string) *TrackingPublisher {
	return &TrackingPublisher{repo: r, volunteerID: volunteerID, requestID: requestID}
}

func (p *TrackingPublisher) PublishLocation(ctx context.Context, pos types.TrackedPosition) error {
	return p.repo.Volunteers.UpdateLocation(ctx, p.volunteerID, pos.LatLng())
}

func (p *TrackingPublisher) PublishDeliveryStatus(ctx context.Context, update types.DeliveryStatusUpdate) error {
	available, closeRequest, ok := availabilityFor(update.Status)
	if !ok {
		return nil
	}

	var errs []error
	if update.Location != nil {
		errs = append(errs, p.PublishLocation(ctx, *update.Location))
	}

	errs = append(errs, p.repo.Volunteers.SetAvailability(ctx, p.volunteerID, available))

	if closeRequest && p.requestID != "" {
		errs = append(errs, p.repo.Candidates.CloseCandidate(ctx, p.requestID))
	}

	return errors.Join(errs...)
}

// availabilityFor maps a delivery status onto the volunteer's availability.
// A volunteer is busy from assignment until the goods are delivered.
func availabilityFor(status types.DeliveryStatus) (available, closeRequest, ok bool) {
	rank := status.Rank()
	if rank < 0 {
		return false, false, false
	}

	done := rank >= types.DeliveryDelivered.Rank()
	return done, done, true
}
