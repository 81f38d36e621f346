// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the docseed CLI, which prepares the MongoDB
// databases of the AI agent demo stack.
//
// Usage:
//
//	docseed run                  Seed sample data, create indexes, report counts
//	docseed seed                 Seed products, customers and orders
//	docseed indexes              Create the movie indexes and report counts
//	docseed embed                Generate plot embeddings through Ollama
//	docseed status [--json]      Show document counts
//	docseed validate             Check configuration and seed data
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/docseed/internal/config"
	"github.com/kraklabs/docseed/internal/errors"
	"github.com/kraklabs/docseed/internal/events"
	"github.com/kraklabs/docseed/internal/ui"
	"github.com/kraklabs/docseed/pkg/storage"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags are the options accepted before the command name.
type GlobalFlags struct {
	ConfigPath string
	JSON       bool
	Quiet      bool
	NoColor    bool
	Verbose    int
}

const usageText = `docseed - MongoDB bootstrap for the AI agent demo stack

Usage:
  docseed [global options] <command> [options]

Commands:
  run           Seed sample data, create indexes and report counts
  seed          Create and seed products, customers and orders
  indexes       Create the movie indexes and report counts
  embed         Generate plot embeddings and a vector index
  status        Show document counts
  validate      Check configuration and seed data

Global Options:
  --config      Path to docseed.yaml (default: ./docseed.yaml)
  --json        Machine-readable output
  -q, --quiet   Only print errors
  -v            Verbose logging (repeat for debug)
  --no-color    Disable colored output
  --version     Show version and exit

Environment Variables:
  MONGO_URI            MongoDB connection string (default: mongodb://localhost:27017)
  MONGO_SEED_DB        Database for sample data (default: ai_agent_db)
  MONGO_MOVIES_DB      Database with the movie samples (default: sample_mflix)
  OLLAMA_HOST          Ollama URL (default: http://localhost:11434)
  OLLAMA_EMBED_MODEL   Embedding model (default: nomic-embed-text)
  EMBED_LIMIT          Movies to embed (default: 100)
  KAFKA_BROKERS        Comma-separated brokers for bootstrap events (optional)
  KAFKA_TOPIC          Event topic (default: docseed.bootstrap)

For command help: docseed <command> --help
`

// cli carries the state shared by all commands.
type cli struct {
	globals GlobalFlags
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger

	// connect opens the MongoDB server, or an in-memory one for dry runs.
	connect func(ctx context.Context, cfg *config.Config, dryRun bool, logger *slog.Logger) (storage.Server, error)

	// publisher returns the event publisher for cfg.
	publisher func(cfg config.EventsConfig, logger *slog.Logger) events.Publisher
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{
		stdout:  stdout,
		stderr:  stderr,
		connect: connectServer,
		publisher: func(cfg config.EventsConfig, logger *slog.Logger) events.Publisher {
			return events.NewPublisher(cfg.Brokers, cfg.Topic, logger)
		},
	}
}

type command func(ctx context.Context, c *cli, args []string) error

var commands = map[string]command{
	"run":      runAll,
	"seed":     runSeed,
	"indexes":  runIndexes,
	"embed":    runEmbed,
	"status":   runStatus,
	"validate": runValidate,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	code := newCLI(os.Stdout, os.Stderr).execute(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}

// execute parses global flags, dispatches to a command and returns the
// process exit code.
func (c *cli) execute(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("docseed", flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(c.stderr)
	showVersion := fs.Bool("version", false, "Show version and exit")
	fs.StringVar(&c.globals.ConfigPath, "config", "", "Path to docseed.yaml")
	fs.BoolVar(&c.globals.JSON, "json", false, "Machine-readable output")
	fs.BoolVarP(&c.globals.Quiet, "quiet", "q", false, "Only print errors")
	fs.CountVarP(&c.globals.Verbose, "verbose", "v", "Verbose logging (repeat for debug)")
	fs.BoolVar(&c.globals.NoColor, "no-color", false, "Disable colored output")
	fs.Usage = func() { fmt.Fprint(c.stderr, usageText) }

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errors.ExitSuccess
		}
		return errors.ExitInput
	}

	if *showVersion {
		fmt.Fprintf(c.stdout, "docseed version %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		return errors.ExitSuccess
	}

	// JSON output must not be interleaved with status lines.
	if c.globals.JSON {
		c.globals.Quiet = true
	}
	ui.InitColors(c.globals.NoColor || os.Getenv("NO_COLOR") != "")
	out := c.stdout
	if c.globals.Quiet {
		out = io.Discard
	}
	defer ui.SetOutput(out)()
	c.logger = newLogger(c.stderr, c.globals)

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.ExitInput
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		err := errors.NewInputError(
			fmt.Sprintf("Unknown command: %s", rest[0]),
			"",
			"Run 'docseed --help' to list commands",
		)
		return errors.Report(c.stderr, err, c.globals.JSON, c.globals.NoColor)
	}

	err := cmd(ctx, c, rest[1:])
	if err == flag.ErrHelp {
		return errors.ExitSuccess
	}
	return errors.Report(c.stderr, err, c.globals.JSON, c.globals.NoColor)
}

func newLogger(w io.Writer, g GlobalFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case g.Quiet:
		level = slog.LevelError
	case g.Verbose == 1:
		level = slog.LevelInfo
	case g.Verbose > 1:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
