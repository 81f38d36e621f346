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

	"github.com/kraklabs/docseed/internal/bootstrap"
	"github.com/kraklabs/docseed/internal/output"
	"github.com/kraklabs/docseed/internal/ui"
	"github.com/kraklabs/docseed/pkg/schema"
	"github.com/kraklabs/docseed/pkg/storage"
)

// IndexesOutput is the --json result of the indexes command.
type IndexesOutput struct {
	Database           string                      `json:"database"`
	VectorIndex        string                      `json:"vector_index,omitempty"`
	VectorIndexSkipped bool                        `json:"vector_index_skipped"`
	VectorIndexError   string                      `json:"vector_index_error,omitempty"`
	Created            []string                    `json:"created"`
	Counts             []bootstrap.CollectionCount `json:"counts"`
}

// runIndexes executes the 'indexes' command on the movies database.
//
// The vector search index is attempted first. Deployments without Atlas
// Search reject it; that is reported and the standard indexes are still
// created. A failing standard index stops the command.
//
// Flags:
//   - --skip-vector: Do not attempt the vector search index
//   - --dry-run: Run against an in-memory database
//   - --metrics-addr: Serve Prometheus metrics while running
func runIndexes(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlagSet("indexes", `Usage: docseed indexes [options]

Creates the vector search index and the standard indexes on the movie
sample collections, then prints document counts.

Options:
`)
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

	plan := bootstrap.DefaultIndexPlan()
	if *skipVector {
		plan.Vector = nil
	}
	db := srv.Database(cfg.Mongo.MoviesDatabase)
	res, report, err := createIndexes(ctx, bootstrap.New(c.logger), db, plan)
	if err != nil {
		return err
	}

	if c.globals.JSON {
		return output.JSONTo(c.stdout, newIndexesOutput(res, report))
	}
	printIndexes(res, report)
	return nil
}

func createIndexes(ctx context.Context, b *bootstrap.Bootstrapper, db storage.Database, plan bootstrap.IndexPlan) (*bootstrap.IndexResult, *bootstrap.StatusReport, error) {
	res, err := b.CreateIndexes(ctx, db, plan)
	if err != nil {
		return res, nil, commandError(fmt.Sprintf("Cannot create indexes in %s", db.Name()), err)
	}
	report, err := b.ReportStatus(ctx, db, schema.MovieStatusCollections())
	if err != nil {
		return res, report, commandError(fmt.Sprintf("Cannot count documents in %s", db.Name()), err)
	}
	return res, report, nil
}

func newIndexesOutput(res *bootstrap.IndexResult, report *bootstrap.StatusReport) IndexesOutput {
	out := IndexesOutput{
		Database:           res.Database,
		VectorIndex:        res.VectorCreated,
		VectorIndexSkipped: res.VectorSkipped,
		Created:            res.Created,
		Counts:             report.Counts,
	}
	if res.VectorErr != nil {
		out.VectorIndexError = res.VectorErr.Error()
	}
	return out
}

func printIndexes(res *bootstrap.IndexResult, report *bootstrap.StatusReport) {
	switch {
	case res.VectorCreated != "":
		ui.Successf("Vector search index %s created on %s collection", res.VectorCreated, schema.Movies)
	case res.VectorSkipped:
		ui.Info("Vector search index creation skipped - requires Atlas or Enterprise with Search")
		ui.Info("You can still use the database for querying, but vector search will not be available")
	}
	ui.Successf("Regular indexes created successfully (%d)", len(res.Created))
	for _, name := range res.Created {
		ui.Stat("index", 0, name)
	}
	printCounts("Database Statistics", report)
}
