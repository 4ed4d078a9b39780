// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"log"
	"os"

	"codeberg.org/waap/waap/internal/commands"
	"codeberg.org/waap/waap/internal/config"
	"codeberg.org/waap/waap/internal/server"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "waap",
		Usage: "Workforce Adjustment Alternation Portal",
		Flags: config.Flags(),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the web application",
				Action: server.Run,
			},
			commands.ExpireJobPostings(),
			commands.ImportDepartments(),
			commands.ImportClassifications(),
		},
		// Running without a subcommand starts the server, so the
		// container entrypoint stays a single binary invocation.
		Action: server.Run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
