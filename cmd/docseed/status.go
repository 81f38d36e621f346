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
	"github.com/kraklabs/docseed/internal/errors"
	"github.com/kraklabs/docseed/internal/output"
	"github.com/kraklabs/docseed/internal/ui"
	"github.com/kraklabs/docseed/pkg/schema"
)

// StatusResult is the --json result of the status command.
type StatusResult struct {
	URI       string                    `json:"uri"`
	Connected bool                      `json:"connected"`
	Databases []*bootstrap.StatusReport `json:"databases,omitempty"`
	Error     string                    `json:"error,omitempty"`
	Timestamp time.Time                 `json:"timestamp"`
}

// runStatus executes the 'status' command: document counts of the seed
// collections and the movie sample collections.
//
// With --json, connection failures are reported inside the result and the
// exit code still reflects the failure.
func runStatus(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlagSet("status", `Usage: docseed status [options]

Shows document counts of the seed and movie databases.

Options:
`)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	asJSON := *jsonOutput || c.globals.JSON

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	result := &StatusResult{URI: redactURI(cfg.Mongo.URI), Timestamp: time.Now().UTC()}
	fail := func(err error) error {
		result.Error = err.Error()
		if asJSON {
			_ = output.JSONTo(c.stdout, result)
		}
		return err
	}

	srv, err := c.connect(ctx, cfg, false, c.logger)
	if err != nil {
		return fail(err)
	}
	defer closeServer(srv, c.logger)
	result.Connected = true

	b := bootstrap.New(c.logger)
	targets := []struct {
		database    string
		collections []string
	}{
		{cfg.Mongo.SeedDatabase, schema.SeedCollections()},
		{cfg.Mongo.MoviesDatabase, append(schema.MovieStatusCollections(), schema.EmbeddedMovies)},
	}
	for _, tgt := range targets {
		report, err := b.ReportStatus(ctx, srv.Database(tgt.database), tgt.collections)
		if err != nil {
			return fail(commandError(fmt.Sprintf("Cannot count documents in %s", tgt.database), err))
		}
		result.Databases = append(result.Databases, report)
	}

	if asJSON {
		if err := output.JSONTo(c.stdout, result); err != nil {
			return errors.NewInternalError("Cannot write status", err.Error(), "", err)
		}
		return nil
	}
	printStatus(result)
	return nil
}

func printStatus(result *StatusResult) {
	ui.Header("docseed status")
	fmt.Fprintf(ui.Out, "%s %s\n", ui.Label("MongoDB:"), ui.DimText(result.URI))
	for _, report := range result.Databases {
		fmt.Fprintln(ui.Out)
		printCounts(report.Database, report)
	}
}
