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
	stderrors "errors"
	"fmt"
	"time"

	"github.com/kraklabs/docseed/internal/errors"
	"github.com/kraklabs/docseed/internal/events"
	"github.com/kraklabs/docseed/internal/output"
	"github.com/kraklabs/docseed/internal/ui"
	"github.com/kraklabs/docseed/pkg/embedding"
)

// EmbedOutput is the --json result of the embed command.
type EmbedOutput struct {
	Database    string `json:"database"`
	Collection  string `json:"collection"`
	Found       int    `json:"found"`
	Processed   int    `json:"processed"`
	Failed      int    `json:"failed"`
	Dimensions  int    `json:"dimensions"`
	VectorIndex string `json:"vector_index,omitempty"`
	IndexError  string `json:"index_error,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}

// runEmbed executes the 'embed' command: copy movies with a plot into
// embedded_movies together with a plot embedding, then create a vector
// search index sized to the embeddings.
//
// The target collection is dropped first. A movie whose embedding fails is
// counted and skipped; an index that cannot be created is a warning.
//
// Flags:
//   - --limit: Number of movies to embed (default: EMBED_LIMIT or 100)
//   - --delay: Pause between movies (default: 100ms)
//   - --provider: Embedding provider, ollama or mock
//   - --model: Ollama model (default: OLLAMA_EMBED_MODEL or nomic-embed-text)
//   - --skip-index: Do not create the vector index
//   - --metrics-addr: Serve Prometheus metrics while running
func runEmbed(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlagSet("embed", `Usage: docseed embed [options]

Generates plot embeddings for the movie samples through Ollama and stores
them in the embedded_movies collection, replacing its previous content.

Options:
`)
	limit := fs.Int("limit", 0, "Number of movies to embed (default from config)")
	delay := fs.Duration("delay", -1, "Pause between movies (default from config)")
	provider := fs.String("provider", "", "Embedding provider: ollama, mock (default from config)")
	model := fs.String("model", "", "Ollama embedding model (default from config)")
	skipIndex := fs.Bool("skip-index", false, "Do not create the vector index")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if *provider != "" {
		cfg.Embedding.Provider = *provider
	}
	if *model != "" {
		cfg.Embedding.Model = *model
	}
	if *limit > 0 {
		cfg.Embedding.Limit = *limit
	}
	if *delay >= 0 {
		cfg.Embedding.Delay = *delay
	}

	p, err := embedding.NewProvider(cfg.ProviderConfig(), c.logger)
	if err != nil {
		return errors.NewInputError("Invalid embedding provider", err.Error(), "Use --provider ollama or --provider mock")
	}
	defer startMetricsServer(*metricsAddr, c.logger)()

	srv, err := c.open(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer closeServer(srv, c.logger)

	db := srv.Database(cfg.Mongo.MoviesDatabase)
	progress := newEmbedProgress(NewProgressConfig(c.globals, c.stderr))
	opts := embedding.DefaultOptions()
	opts.Limit = cfg.Embedding.Limit
	opts.Delay = cfg.Embedding.Delay
	opts.SkipIndex = *skipIndex
	opts.OnStart = func(total int) {
		progress.start(total)
	}
	opts.OnProgress = progress.step

	ui.Infof("Finding movies with plots (limit: %d)", opts.Limit)
	res, err := embedding.NewGenerator(p, c.logger).Run(ctx, db, opts)
	progress.finish()
	if err != nil {
		if stderrors.Is(err, embedding.ErrNoMovies) {
			return errors.NewNotFoundError(
				"No movies found with plots",
				fmt.Sprintf("%s.%s has no document with a non-empty plot", db.Name(), opts.Source),
				"Load the sample_mflix dataset first",
			)
		}
		return commandError("Cannot generate embeddings", err)
	}

	if c.globals.JSON {
		out := EmbedOutput{
			Database:    db.Name(),
			Collection:  opts.Target,
			Found:       res.Found,
			Processed:   res.Processed,
			Failed:      res.Failed,
			Dimensions:  res.Dimensions,
			VectorIndex: res.IndexName,
			DurationMS:  res.Duration.Milliseconds(),
		}
		if res.IndexErr != nil {
			out.IndexError = res.IndexErr.Error()
		}
		if err := output.JSONTo(c.stdout, out); err != nil {
			return err
		}
	} else {
		printEmbed(res, opts.Target)
	}

	ev := events.NewEvent(events.KindEmbedCompleted, db.Name(), map[string]int64{opts.Target: int64(res.Processed)})
	ev.VectorIndexSkipped = res.IndexName == ""
	c.publish(ctx, cfg, ev)
	return nil
}

func printEmbed(res *embedding.Result, target string) {
	ui.Successf("Found %s movies with plots", ui.CountText(int64(res.Found)))
	ui.Successf("Successfully processed %s movies", ui.CountText(int64(res.Processed)))
	if res.Failed > 0 {
		ui.Errorf("Failed to process %d movies", res.Failed)
	}
	switch {
	case res.IndexName != "":
		ui.Successf("Vector search index %s created (%d dimensions)", res.IndexName, res.Dimensions)
	case res.IndexErr != nil:
		ui.Warningf("Could not create search index (may already exist): %v", res.IndexErr)
	}
	ui.Successf("Collection '%s' now contains %d movies with embeddings (%s)", target, res.Processed, res.Duration.Round(time.Millisecond))
}
