package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"relieflink/internal/server"
	"relieflink/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var decideFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "JSON request file, - for stdin",
		Value:   "-",
	},
	&cli.BoolFlag{
		Name:  "json",
		Usage: "Print the outcome as JSON instead of pretty output",
	},
}

var decideCommand = &cli.Command{
	Name:  "decide",
	Usage: "Run one decision through the agent with local fallback",
	Subcommands: []*cli.Command{
		{
			Name:  "validate",
			Usage: "Validate a donation or request submission",
			Flags: decideFlags,
			Action: func(c *cli.Context) error {
				var req types.SubmissionContent
				return runDecision(c, &req, func(ctx context.Context, d server.Decider) any {
					return d.Validate(ctx, req)
				})
			},
		},
		{
			Name:  "match",
			Usage: "Rank matches for a donation or request",
			Flags: decideFlags,
			Action: func(c *cli.Context) error {
				var req types.MatchRequest
				return runDecision(c, &req, func(ctx context.Context, d server.Decider) any {
					return d.Match(ctx, req)
				})
			},
		},
		{
			Name:  "assign",
			Usage: "Assign a volunteer and build a route",
			Flags: decideFlags,
			Action: func(c *cli.Context) error {
				var req types.AssignmentRequest
				return runDecision(c, &req, func(ctx context.Context, d server.Decider) any {
					return d.AssignVolunteer(ctx, req)
				})
			},
		},
		{
			Name:  "converse",
			Usage: "Answer a chat message",
			Flags: decideFlags,
			Action: func(c *cli.Context) error {
				var req types.ConversationRequest
				return runDecision(c, &req, func(ctx context.Context, d server.Decider) any {
					return d.Converse(ctx, req)
				})
			},
		},
	},
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func runDecision(c *cli.Context, req any, run func(context.Context, server.Decider) any) error {
	config, err := loadConfig(c)
	if err != nil {
		return err
	}

	raw, err := readInput(c.String("input"))
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	if err := json.Unmarshal(raw, req); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}

	logger := newLogger(config, false)
	logger.SetOutput(os.Stderr)

	ctx := c.Context
	decisions, closeDecisions, err := newDecisionService(ctx, config, logger)
	if err != nil {
		return err
	}
	defer closeDecisions()

	out := run(ctx, decisions)

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	_, err = pp.Println(out)
	return err
}
