package main

import (
	"encoding/json"
	"fmt"
	"os"

	"relieflink/internal/journal"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var journalCommand = &cli.Command{
	Name:  "journal",
	Usage: "Inspect the local decision journal (JOURNAL_PATH)",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "capability",
			Usage: "Only show validate, match, route or chat decisions",
		},
		&cli.Uint64Flag{
			Name:  "limit",
			Usage: "Number of entries to show",
			Value: 20,
		},
		&cli.BoolFlag{
			Name:  "tally",
			Usage: "Show counts per capability and source instead of entries",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print JSON instead of pretty output",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		if cfg.JournalPath == "" {
			return fmt.Errorf("JOURNAL_PATH is not set")
		}

		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer j.Close()

		var out any
		if c.Bool("tally") {
			out, err = j.Tallies(c.Context)
		} else {
			out, err = j.Recent(c.Context, c.String("capability"), c.Uint64("limit"))
		}
		if err != nil {
			return err
		}

		if c.Bool("json") {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		_, err = pp.Println(out)
		return err
	},
}
