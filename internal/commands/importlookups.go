// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"codeberg.org/waap/waap/internal/config"
	"codeberg.org/waap/waap/internal/database"
	"codeberg.org/waap/waap/internal/repository"
	"codeberg.org/waap/waap/internal/server"
	"github.com/urfave/cli/v3"
)

type lookupEntry struct {
	Name string `json:"name"`
}

// ImportDepartments returns the department seeding command. The input
// is a JSON array of objects with a "name" field; entries without a
// name are skipped and existing names are left untouched.
func ImportDepartments() *cli.Command {
	return &cli.Command{
		Name:      "import-departments",
		Usage:     "Import departments from a JSON file",
		ArgsUsage: "<json-file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runImport(ctx, cmd, "departments",
				func(ctx context.Context, repo *repository.Repository, name string) (bool, error) {
					_, created, err := repo.GetOrCreateDepartment(ctx, name)
					return created, err
				},
				func(ctx context.Context, repo *repository.Repository) (int64, error) {
					return repo.CountDepartments(ctx)
				})
		},
	}
}

// ImportClassifications returns the classification seeding command.
func ImportClassifications() *cli.Command {
	return &cli.Command{
		Name:      "import-classifications",
		Usage:     "Import classifications from a JSON file",
		ArgsUsage: "<json-file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runImport(ctx, cmd, "classifications",
				func(ctx context.Context, repo *repository.Repository, name string) (bool, error) {
					_, created, err := repo.GetOrCreateClassification(ctx, name)
					return created, err
				},
				func(ctx context.Context, repo *repository.Repository) (int64, error) {
					return repo.CountClassifications(ctx)
				})
		},
	}
}

func runImport(
	ctx context.Context,
	cmd *cli.Command,
	noun string,
	create func(context.Context, *repository.Repository, string) (bool, error),
	count func(context.Context, *repository.Repository) (int64, error),
) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("missing required argument: path to %s JSON file", noun)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var entries []lookupEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("invalid JSON format in file %s: %w", path, err)
	}

	cfg := config.NewFromCLI(cmd)
	server.SetupLogger(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	repo := repository.New(db)

	imported := 0
	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}
		created, err := create(ctx, repo, entry.Name)
		if err != nil {
			return fmt.Errorf("failed to import %q: %w", entry.Name, err)
		}
		if created {
			imported++
		}
	}

	total, err := count(ctx, repo)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Successfully imported %d new %s. Total %s: %d\n", imported, noun, noun, total)
	return nil
}
