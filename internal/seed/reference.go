package seed

import (
	"context"
	"fmt"

	"relieflink/internal/store"
	"relieflink/internal/storage"
	"relieflink/pkg/types"
)

// SeedReference syncs the database with data:
// - Upserts every candidate and volunteer in data
// - Deletes rows whose id is not in data
//
// The default pool lives in fallback.DefaultReferenceData. To generate new
// IDs: `go run ./cmd/relieflink nanoid --size 21`
func SeedReference(ctx context.Context, repo *store.ReferenceRepository, data types.ReferenceData) error {
	fmt.Println("Starting reference sync...")
	fmt.Printf("  Seed contains %d candidates and %d volunteers\n", len(data.Candidates), len(data.Volunteers))

	candidateIDs := make([]string, 0, len(data.Candidates))
	for _, c := range data.Candidates {
		fmt.Printf("  Upserting candidate: %s (%s, %s)\n", c.Name, c.Kind, c.Category)
		if err := repo.Candidates.UpsertCandidate(ctx, &c); err != nil {
			return fmt.Errorf("failed to upsert candidate %s: %w", c.ID, err)
		}
		candidateIDs = append(candidateIDs, c.ID)
	}

	volunteerIDs := make([]string, 0, len(data.Volunteers))
	for _, v := range data.Volunteers {
		fmt.Printf("  Upserting volunteer: %s (%s)\n", v.Name, v.VehicleType)
		if err := repo.Volunteers.UpsertVolunteer(ctx, &v); err != nil {
			return fmt.Errorf("failed to upsert volunteer %s: %w", v.ID, err)
		}
		volunteerIDs = append(volunteerIDs, v.ID)
	}

	deletedCandidates, err := repo.Candidates.DeleteCandidatesExcept(ctx, candidateIDs)
	if err != nil {
		return err
	}

	deletedVolunteers, err := repo.Volunteers.DeleteVolunteersExcept(ctx, volunteerIDs)
	if err != nil {
		return err
	}

	fmt.Printf("\nSync complete: %d candidates, %d volunteers upserted; %d candidates, %d volunteers deleted\n",
		len(candidateIDs), len(volunteerIDs), deletedCandidates, deletedVolunteers)
	return nil
}

// SeedSnapshot writes data as the S3 reference snapshot.
func SeedSnapshot(ctx context.Context, snap *storage.ReferenceSnapshot, data types.ReferenceData) error {
	fmt.Printf("Writing reference snapshot to %s...\n", snap.Location())
	if err := snap.Save(ctx, data); err != nil {
		return err
	}
	fmt.Printf("Snapshot complete: %d candidates, %d volunteers\n", len(data.Candidates), len(data.Volunteers))
	return nil
}
