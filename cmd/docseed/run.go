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

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kraklabs/docseed/internal/bootstrap"
	"github.com/kraklabs/docseed/internal/events"
	"github.com/kraklabs/docseed/internal/output"
	"github.com/kraklabs/docseed/internal/ui"
)

// RunOutput is the --json result of the run command.
type RunOutput struct {
	Seed       SeedOutput    `json:"seed"`
	Indexes    IndexesOutput `json:"indexes"`
	DurationMS int64         `json:"duration_ms"`
}

// runAll executes the 'run' command: seed, then indexes, then counts, the
// same sequence the database init scripts perform on first start.
//
// Flags:
//   - --drop: Drop the seed collections first
//   - --skip-vector: Do not attempt the vector search index
//   - --dry-run: Run against an in-memory database
//   - --metrics-addr: Serve Prometheus metrics while running
func runAll(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlagSet("run", `Usage: docseed run [options]

Seeds the sample products, customers and orders, creates the movie
indexes and prints document counts. A vector index that the server
does not support is skipped; every other failure stops the run.

Options:
`)
	drop := fs.Bool("drop", false, "Drop the seed collections before seeding")
	skipVector := fs.Bool("skip-vector", false, "Do not attempt the vector search index")
	dryRun := fs.Bool("dry-run", false, "Run against an in-memory database")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	defer startMetricsServer(*metricsAddr, c.logger)()

	srv, err := c.open(ctx, cfg, *dryRun)
	if err != nil {
		return err
	}
	defer closeServer(srv, c.logger)

	opts := bootstrap.DefaultRunOptions()
	opts.Seed.Drop = *drop
	if *skipVector {
		opts.IndexPlan.Vector = nil
	}

	seedDB := srv.Database(cfg.Mongo.SeedDatabase)
	moviesDB := srv.Database(cfg.Mongo.MoviesDatabase)
	sum, err := bootstrap.New(c.logger).Run(ctx, seedDB, moviesDB, opts)
	if err != nil {
		msg := "Cannot seed " + seedDB.Name()
		if sum.FailedDatabase == moviesDB.Name() {
			msg = "Cannot prepare " + moviesDB.Name()
		}
		return commandError(msg, err)
	}

	if c.globals.JSON {
		out := RunOutput{
			Seed:       SeedOutput{Database: seedDB.Name(), Inserted: sum.Seed.Inserted, Counts: sum.SeedStatus.Counts, DryRun: *dryRun},
			Indexes:    newIndexesOutput(sum.Indexes, sum.MovieStatus),
			DurationMS: sum.Duration.Milliseconds(),
		}
		if sum.Seed.Invalid != nil {
			out.Seed.Warning = sum.Seed.Invalid.Error()
		}
		if err := output.JSONTo(c.stdout, out); err != nil {
			return err
		}
	} else {
		printSeed(sum.Seed, sum.SeedStatus)
		fmt.Fprintln(ui.Out)
		printIndexes(sum.Indexes, sum.MovieStatus)
		ui.Successf("Bootstrap finished in %s", sum.Duration.Round(time.Millisecond))
	}

	if !*dryRun {
		ev := events.NewEvent(events.KindBootstrapCompleted, seedDB.Name(), countsOf(sum.SeedStatus, sum.MovieStatus))
		ev.VectorIndexSkipped = sum.Indexes.VectorSkipped
		c.publish(ctx, cfg, ev)
	}
	return nil
}
