package main

import (
	"context"
	"fmt"

	"relieflink/internal/db"
	"relieflink/internal/fallback"
	"relieflink/internal/seed"
	"relieflink/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the fallback reference data into Postgres or S3",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "target",
			Usage: "Where to write the reference data: db or s3",
			Value: "db",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()
		data := fallback.DefaultReferenceData()

		switch target := c.String("target"); target {
		case "db":
			pool, err := db.Connect(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer pool.Close()

			logrus.Info("Connected to database")

			if err := store.EnsureSchema(ctx, pool); err != nil {
				return fmt.Errorf("failed to ensure schema: %w", err)
			}

			logrus.Info("Seeding reference data...")
			if err := seed.SeedReference(ctx, store.NewReferenceRepository(pool), data); err != nil {
				return fmt.Errorf("failed to seed reference data: %w", err)
			}
		case "s3":
			if cfg.ReferenceBucket == "" {
				return fmt.Errorf("REFERENCE_BUCKET is required for the s3 target")
			}

			snap, err := newSnapshot(ctx, cfg)
			if err != nil {
				return err
			}

			logrus.WithField("location", snap.Location()).Info("Writing reference snapshot...")
			if err := seed.SeedSnapshot(ctx, snap, data); err != nil {
				return fmt.Errorf("failed to write reference snapshot: %w", err)
			}
		default:
			return fmt.Errorf("unknown seed target %q, want db or s3", target)
		}

		logrus.Info("Reference data seeded successfully")

		return nil
	},
}
