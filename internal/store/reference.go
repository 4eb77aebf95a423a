package store

import (
	"context"
	"fmt"

	"relieflink/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReferenceRepository loads the fallback reference pool from Postgres.
type ReferenceRepository struct {
	Candidates *CandidateRepository
	Volunteers *VolunteerRepository
}

func NewReferenceRepository(pool *pgxpool.Pool) *ReferenceRepository {
	return &ReferenceRepository{
		Candidates: NewCandidateRepository(pool),
		Volunteers: NewVolunteerRepository(pool),
	}
}

// Load returns every open candidate and every volunteer. The fallback
// engine filters on availability itself so it can still pick someone when
// nobody is marked available.
func (r *ReferenceRepository) Load(ctx context.Context) (types.ReferenceData, error) {
	var data types.ReferenceData

	candidates, err := r.Candidates.OpenCandidates(ctx, "")
	if err != nil {
		return data, fmt.Errorf("failed to load reference candidates: %w", err)
	}

	volunteers, err := r.Volunteers.Volunteers(ctx, false)
	if err != nil {
		return data, fmt.Errorf("failed to load volunteers: %w", err)
	}

	data.Candidates = make([]types.ReferenceCandidate, 0, len(candidates))
	for _, c := range candidates {
		data.Candidates = append(data.Candidates, *c)
	}

	data.Volunteers = make([]types.Volunteer, 0, len(volunteers))
	for _, v := range volunteers {
		data.Volunteers = append(data.Volunteers, *v)
	}

	return data, nil
}
