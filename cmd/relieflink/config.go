package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"relieflink/internal/agent"
	"relieflink/internal/backend"
	"relieflink/internal/db"
	"relieflink/internal/decision"
	"relieflink/internal/fallback"
	"relieflink/internal/journal"
	"relieflink/internal/storage"
	"relieflink/internal/store"
	"relieflink/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func loadConfig(cCtx *cli.Context) (*types.Config, error) {
	if path := cCtx.String("env-file"); path != "" {
		err := godotenv.Load(path)
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist) && !cCtx.IsSet("env-file"):
			// the default .env is optional
		default:
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	}

	c := new(types.Config)
	if err := envconfig.Process(cCtx.String("env-prefix"), c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.AgentChatURL == "" {
		c.AgentChatURL = c.AgentRoutingURL
	}

	switch types.Language(c.Language) {
	case types.LanguageEnglish, types.LanguageBengali:
	default:
		return nil, fmt.Errorf("unsupported LANGUAGE %q", c.Language)
	}

	return c, nil
}

func newLogger(cfg *types.Config, json bool) *logrus.Logger {
	logger := logrus.New()
	if json {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("invalid LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return awsConfig, nil
}

func newAgentClient(cfg *types.Config, logger *logrus.Logger) *agent.Client {
	return agent.NewClient(
		map[agent.Capability]string{
			agent.CapabilityValidate: cfg.AgentValidationURL,
			agent.CapabilityMatch:    cfg.AgentMatchingURL,
			agent.CapabilityRoute:    cfg.AgentRoutingURL,
			agent.CapabilityChat:     cfg.AgentChatURL,
		},
		agent.WithToken(cfg.AgentToken),
		agent.WithTimeout(time.Duration(cfg.AgentTimeoutSec)*time.Second),
		agent.WithLogger(logger),
	)
}

// loadReferenceData prefers Postgres, then the S3 snapshot, then the
// built-in pool. A failing source is logged and the next one is tried.
func loadReferenceData(ctx context.Context, cfg *types.Config, logger *logrus.Logger) types.ReferenceData {
	if cfg.DatabaseURL != "" {
		data, err := loadReferenceFromDB(ctx, cfg)
		if err == nil {
			logger.WithFields(logrus.Fields{
				"candidates": len(data.Candidates),
				"volunteers": len(data.Volunteers),
			}).Info("reference data loaded from database")
			return data
		}
		logger.WithError(err).Warn("failed to load reference data from database")
	}

	if cfg.ReferenceBucket != "" {
		data, err := loadReferenceFromS3(ctx, cfg)
		if err == nil {
			logger.WithFields(logrus.Fields{
				"candidates": len(data.Candidates),
				"volunteers": len(data.Volunteers),
			}).Info("reference data loaded from snapshot")
			return data
		}
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			logger.WithError(err).Warn("reference snapshot missing, run seed --target s3")
		} else {
			logger.WithError(err).Warn("failed to load reference snapshot")
		}
	}

	logger.Info("using built-in reference data")
	return fallback.DefaultReferenceData()
}

func loadReferenceFromDB(ctx context.Context, cfg *types.Config) (types.ReferenceData, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return types.ReferenceData{}, err
	}
	defer pool.Close()

	return store.NewReferenceRepository(pool).Load(ctx)
}

func newSnapshot(ctx context.Context, cfg *types.Config) (*storage.ReferenceSnapshot, error) {
	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	return storage.NewReferenceSnapshot(s3.NewFromConfig(awsConfig), cfg.ReferenceBucket, cfg.ReferenceKey), nil
}

func loadReferenceFromS3(ctx context.Context, cfg *types.Config) (types.ReferenceData, error) {
	snap, err := newSnapshot(ctx, cfg)
	if err != nil {
		return types.ReferenceData{}, err
	}

	return snap.Load(ctx)
}

// newDecisionService wires the agent client and the fallback engine, plus
// the backend and journal recorders when they are configured. The returned
// func drains pending records and closes the journal.
func newDecisionService(ctx context.Context, cfg *types.Config, logger *logrus.Logger) (*decision.Service, func(), error) {
	engine := fallback.New(
		loadReferenceData(ctx, cfg, logger),
		fallback.WithAverageSpeed(cfg.AverageSpeedKmh),
		fallback.WithLanguage(types.Language(cfg.Language)),
	)

	opts := []decision.Option{
		decision.WithLogger(logger),
		decision.WithLanguage(types.Language(cfg.Language)),
		decision.WithAgentTimeout(time.Duration(cfg.AgentTimeoutSec) * time.Second),
	}

	if be := backend.NewClient(cfg.BackendURL, cfg.BackendToken); be.Configured() {
		opts = append(opts, decision.WithRecorder(be))
	}

	var jrnl *journal.Journal
	if cfg.JournalPath != "" {
		var err error
		if jrnl, err = journal.Open(cfg.JournalPath); err != nil {
			return nil, nil, err
		}
		opts = append(opts, decision.WithRecorder(jrnl))
	}

	svc := decision.New(newAgentClient(cfg, logger), engine, opts...)

	return svc, func() {
		svc.Close()
		if jrnl != nil {
			if err := jrnl.Close(); err != nil {
				logger.WithError(err).Warn("failed to close journal")
			}
		}
	}, nil
}
