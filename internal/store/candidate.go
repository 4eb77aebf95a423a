package store

import (
	"context"
	"fmt"

	"relieflink/internal/utils"
	"relieflink/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const candidateTableName = schemaName + ".reference_candidates"

var candidateColumns = utils.StructTagValues(types.ReferenceCandidate{})

type CandidateRepository struct {
	pool *pgxpool.Pool
}

func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

func openCandidatesQuery(kind types.SubmissionKind) (string, []any, error) {
	where := sq.Eq{"is_open": true}
	if kind != "" {
		where["kind"] = kind
	}

	return psql().
		Select(candidateColumns...).
		From(candidateTableName).
		Where(where).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
}

// OpenCandidates returns open candidates, optionally of one kind.
func (r *CandidateRepository) OpenCandidates(ctx context.Context, kind types.SubmissionKind) ([]*types.ReferenceCandidate, error) {
	query, args, err := openCandidatesQuery(kind)
	if err != nil {
		return nil, fmt.Errorf("failed to generate open candidates query: %w", err)
	}

	var candidates []*types.ReferenceCandidate
	err = pgxscan.Select(ctx, r.pool, &candidates, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open candidates: %w", err)
	}

	return candidates, nil
}

func (r *CandidateRepository) CandidateByID(ctx context.Context, id string) (*types.ReferenceCandidate, error) {
	query, args, err := psql().
		Select(candidateColumns...).
		From(candidateTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate candidate query: %w", err)
	}

	var candidate types.ReferenceCandidate
	err = pgxscan.Get(ctx, r.pool, &candidate, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch candidate: %w", err)
	}

	return &candidate, nil
}

func (r *CandidateRepository) UpsertCandidate(ctx context.Context, candidate *types.ReferenceCandidate) error {
	query, args, err := upsertQuery(candidateTableName, utils.StructToMap(candidate))
	if err != nil {
		return fmt.Errorf("failed to generate upsert query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert candidate: %w", err)
	}

	return nil
}

// CloseCandidate marks a candidate as no longer available for matching.
func (r *CandidateRepository) CloseCandidate(ctx context.Context, id string) error {
	query, args, err := psql().
		Update(candidateTableName).
		Set("is_open", false).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate close query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to close candidate: %w", err)
	}

	return nil
}

// DeleteCandidatesExcept removes every candidate whose id is not in keep.
func (r *CandidateRepository) DeleteCandidatesExcept(ctx context.Context, keep []string) (int64, error) {
	query, args, err := psql().
		Delete(candidateTableName).
		Where(sq.NotEq{"id": keep}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate delete query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete candidates: %w", err)
	}

	return tag.RowsAffected(), nil
}
