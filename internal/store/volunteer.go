package store

import (
	"context"
	"fmt"
	"time"

	"relieflink/internal/utils"
	"relieflink/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const volunteerTableName = schemaName + ".volunteers"

var volunteerColumns = utils.StructTagValues(types.Volunteer{})

type VolunteerRepository struct {
	pool *pgxpool.Pool
}

func NewVolunteerRepository(pool *pgxpool.Pool) *VolunteerRepository {
	return &VolunteerRepository{pool: pool}
}

func volunteersQuery(availableOnly bool) (string, []any, error) {
	builder := psql().
		Select(volunteerColumns...).
		From(volunteerTableName)
	if availableOnly {
		builder = builder.Where(sq.Eq{"is_available": true})
	}

	return builder.OrderBy("is_available DESC", "id ASC").ToSql()
}

func (r *VolunteerRepository) Volunteers(ctx context.Context, availableOnly bool) ([]*types.Volunteer, error) {
	query, args, err := volunteersQuery(availableOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to generate volunteers query: %w", err)
	}

	var volunteers []*types.Volunteer
	err = pgxscan.Select(ctx, r.pool, &volunteers, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch volunteers: %w", err)
	}

	return volunteers, nil
}

func (r *VolunteerRepository) VolunteerByID(ctx context.Context, id string) (*types.Volunteer, error) {
	query, args, err := psql().
		Select(volunteerColumns...).
		From(volunteerTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate volunteer query: %w", err)
	}

	var volunteer types.Volunteer
	err = pgxscan.Get(ctx, r.pool, &volunteer, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch volunteer: %w", err)
	}

	return &volunteer, nil
}

func (r *VolunteerRepository) UpsertVolunteer(ctx context.Context, volunteer *types.Volunteer) error {
	volunteer.UpdatedAt = time.Now()
	if volunteer.CreatedAt.IsZero() {
		volunteer.CreatedAt = volunteer.UpdatedAt
	}

	query, args, err := upsertQuery(volunteerTableName, utils.StructToMap(volunteer))
	if err != nil {
		return fmt.Errorf("failed to generate upsert query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert volunteer: %w", err)
	}

	return nil
}

func updateLocationQuery(id string, loc types.LatLng, at time.Time) (string, []any, error) {
	return psql().
		Update(volunteerTableName).
		Set("lat", loc.Lat).
		Set("lng", loc.Lng).
		Set("updated_at", at).
		Where(sq.Eq{"id": id}).
		ToSql()
}

// UpdateLocation stores a volunteer's latest reported position.
func (r *VolunteerRepository) UpdateLocation(ctx context.Context, id string, loc types.LatLng) error {
	query, args, err := updateLocationQuery(id, loc, time.Now())
	if err != nil {
		return fmt.Errorf("failed to generate location update: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update volunteer location: %w", err)
	}

	return nil
}

func (r *VolunteerRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	query, args, err := psql().
		Update(volunteerTableName).
		Set("is_available", available).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate availability update: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update volunteer availability: %w", err)
	}

	return nil
}

func (r *VolunteerRepository) DeleteVolunteersExcept(ctx context.Context, keep []string) (int64, error) {
	query, args, err := psql().
		Delete(volunteerTableName).
		Where(sq.NotEq{"id": keep}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate delete query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete volunteers: %w", err)
	}

	return tag.RowsAffected(), nil
}
