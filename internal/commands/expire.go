// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package commands provides the scheduled maintenance subcommands.
package commands

import (
	"context"
	"fmt"

	"codeberg.org/waap/waap/internal/config"
	"codeberg.org/waap/waap/internal/database"
	"codeberg.org/waap/waap/internal/repository"
	"codeberg.org/waap/waap/internal/server"
	"codeberg.org/waap/waap/internal/services/lifecycle"
	"github.com/urfave/cli/v3"
)

// ExpireJobPostings returns the scheduled anonymization command. It is
// run daily in production and is safe to invoke concurrently with user
// traffic.
func ExpireJobPostings() *cli.Command {
	return &cli.Command{
		Name:  "expire-job-postings",
		Usage: "Anonymize contact data of expired job postings",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report what would be anonymized without changing the database",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.NewFromCLI(cmd)
			server.SetupLogger(cfg.Log.Level, cfg.Log.Format)

			db, err := database.Open(cfg.Database.DSN)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			repo := repository.New(db)
			manager := lifecycle.NewManager(repo, nil)

			_, err = manager.Sweep(ctx, cmd.Bool("dry-run"), cmd.Root().Writer)
			return err
		},
	}
}
