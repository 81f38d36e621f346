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
	"strings"

	"github.com/kraklabs/docseed/internal/bootstrap"
	"github.com/kraklabs/docseed/internal/events"
	"github.com/kraklabs/docseed/internal/output"
	"github.com/kraklabs/docseed/internal/ui"
	"github.com/kraklabs/docseed/pkg/catalog"
	"github.com/kraklabs/docseed/pkg/schema"
	"github.com/kraklabs/docseed/pkg/storage"
)

// SeedOutput is the --json result of the seed command.
type SeedOutput struct {
	Database string                      `json:"database"`
	Inserted map[string]int              `json:"inserted"`
	Counts   []bootstrap.CollectionCount `json:"counts"`
	Warning  string                      `json:"warning,omitempty"`
	DryRun   bool                        `json:"dry_run,omitempty"`
}

// runSeed executes the 'seed' command: create products, customers and
// orders in the seed database and insert the sample documents.
//
// Running it twice inserts the documents twice unless --drop is given.
//
// Flags:
//   - --drop: Drop the three collections first
//   - --dry-run: Seed an in-memory database and print the documents
//   - --metrics-addr: Serve Prometheus metrics while running
func runSeed(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlagSet("seed", `Usage: docseed seed [options]

Creates products, customers and orders in the seed database and inserts
the sample documents. Documents are inserted again on every run.

Options:
`)
	drop := fs.Bool("drop", false, "Drop the collections before seeding")
	dryRun := fs.Bool("dry-run", false, "Seed an in-memory database and print the documents")
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

	db := srv.Database(cfg.Mongo.SeedDatabase)
	b := bootstrap.New(c.logger)
	res, report, err := seed(ctx, b, db, bootstrap.SeedOptions{Drop: *drop})
	if err != nil {
		return err
	}

	out := SeedOutput{Database: db.Name(), Inserted: res.Inserted, Counts: report.Counts, DryRun: *dryRun}
	if res.Invalid != nil {
		out.Warning = res.Invalid.Error()
	}

	if c.globals.JSON {
		if err := output.JSONTo(c.stdout, out); err != nil {
			return err
		}
	} else {
		printSeed(res, report)
		if *dryRun && !c.globals.Quiet {
			if err := printDocuments(c, srv, db.Name()); err != nil {
				return err
			}
		}
	}

	if !*dryRun {
		c.publish(ctx, cfg, events.NewEvent(events.KindSeedCompleted, db.Name(), countsOf(report)))
	}
	return nil
}

// seed seeds the fixtures into db and counts the result.
func seed(ctx context.Context, b *bootstrap.Bootstrapper, db storage.Database, opts bootstrap.SeedOptions) (*bootstrap.SeedResult, *bootstrap.StatusReport, error) {
	res, err := b.SeedFixtures(ctx, db, catalog.Seed(), opts)
	if err != nil {
		return res, nil, commandError(fmt.Sprintf("Cannot seed %s", db.Name()), err)
	}
	report, err := b.ReportStatus(ctx, db, schema.SeedCollections())
	if err != nil {
		return res, report, commandError(fmt.Sprintf("Cannot count documents in %s", db.Name()), err)
	}
	return res, report, nil
}

func printSeed(res *bootstrap.SeedResult, report *bootstrap.StatusReport) {
	if res.Invalid != nil {
		ui.Warningf("Sample data is inconsistent: %v", res.Invalid)
	}
	ui.Success("Database initialized with sample data")
	ui.Infof("Collections created: %s", strings.Join(schema.SeedCollections(), ", "))
	ui.Success("Sample records inserted successfully")
	printCounts(fmt.Sprintf("%s statistics", report.Database), report)
}

// printDocuments dumps the seeded documents of an in-memory server as
// Extended JSON.
func printDocuments(c *cli, srv storage.Server, database string) error {
	mem, ok := srv.(*storage.MemoryServer)
	if !ok {
		return nil
	}
	db := mem.DB(database)
	for _, coll := range schema.SeedCollections() {
		ui.SubHeader(coll + ":")
		if err := output.ExtJSONTo(c.stdout, db.Documents(coll)); err != nil {
			return err
		}
	}
	return nil
}
