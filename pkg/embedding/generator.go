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

package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kraklabs/docseed/pkg/catalog"
	"github.com/kraklabs/docseed/pkg/schema"
	"github.com/kraklabs/docseed/pkg/storage"
)

// ErrNoMovies is returned when the source collection has no movie with a plot.
var ErrNoMovies = errors.New("no movies with plots found")

// Options controls a generation run.
type Options struct {
	// Source is the collection movies are read from. Defaults to "movies".
	Source string

	// Target is the collection embedded movies are written to. It is dropped
	// first. Defaults to "embedded_movies".
	Target string

	// Limit caps how many movies are processed. Defaults to 100.
	Limit int

	// Delay is the pause after each successful movie, to avoid overloading
	// the provider. Zero disables it.
	Delay time.Duration

	// Retry configures retries of transient provider errors.
	Retry RetryConfig

	// SkipIndex disables vector index creation after generation.
	SkipIndex bool

	// OnStart is called once with the number of movies found.
	OnStart func(total int)

	// OnProgress is called after each movie, successful or not.
	OnProgress func()
}

// DefaultOptions returns 100 movies, a 100ms delay and the vector index on.
func DefaultOptions() Options {
	return Options{
		Source: schema.Movies,
		Target: schema.EmbeddedMovies,
		Limit:  100,
		Delay:  100 * time.Millisecond,
		Retry:  DefaultRetryConfig(),
	}
}

// Result summarizes a generation run.
type Result struct {
	Found      int
	Processed  int
	Failed     int
	Dimensions int
	// IndexName is set when the vector index was created.
	IndexName string
	// IndexErr is the vector index error. It never fails the run.
	IndexErr error
	Duration time.Duration
}

// Generator copies movies with plots into a target collection together with
// a plot embedding, then indexes the embeddings for vector search.
type Generator struct {
	provider Provider
	logger   *slog.Logger
}

// NewGenerator creates a Generator. A nil logger uses slog.Default().
func NewGenerator(provider Provider, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	embMetrics.init()
	return &Generator{provider: provider, logger: logger}
}

// Run processes the movies of db. Per-movie failures are counted and
// skipped; reading, dropping and inserting failures abort the run.
func (g *Generator) Run(ctx context.Context, db storage.Database, opts Options) (*Result, error) {
	def := DefaultOptions()
	if opts.Source == "" {
		opts.Source = def.Source
	}
	if opts.Target == "" {
		opts.Target = def.Target
	}
	if opts.Limit <= 0 {
		opts.Limit = def.Limit
	}
	opts.Retry = opts.Retry.withDefaults()

	start := time.Now()
	res := &Result{}
	defer func() {
		res.Duration = time.Since(start)
		embMetrics.runDuration.Observe(res.Duration.Seconds())
	}()

	g.logger.Info("embedding.run.start", "db", db.Name(), "source", opts.Source, "target", opts.Target, "limit", opts.Limit)

	if err := db.DropCollection(ctx, opts.Target); err != nil {
		return res, fmt.Errorf("drop %s: %w", opts.Target, err)
	}

	movies, err := db.FindMoviesWithPlot(ctx, opts.Source, opts.Limit)
	if err != nil {
		return res, fmt.Errorf("find movies: %w", err)
	}
	res.Found = len(movies)
	if len(movies) == 0 {
		return res, ErrNoMovies
	}
	if opts.OnStart != nil {
		opts.OnStart(len(movies))
	}

	for _, m := range movies {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		ok, err := g.embedOne(ctx, db, opts, m, res)
		if opts.OnProgress != nil {
			opts.OnProgress()
		}
		if err != nil {
			return res, err
		}
		if ok && opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}

	g.logger.Info("embedding.run.done", "processed", res.Processed, "failed", res.Failed, "dimensions", res.Dimensions)

	if !opts.SkipIndex && res.Dimensions > 0 {
		idx := schema.EmbeddedMoviesVectorIndex(res.Dimensions)
		idx.Collection = opts.Target
		name, err := db.CreateSearchIndex(ctx, idx)
		if err != nil {
			res.IndexErr = err
			g.logger.Warn("embedding.index.skipped",
				"collection", opts.Target,
				"exists", storage.IsIndexExists(err),
				"search_unsupported", storage.IsSearchUnsupported(err),
				"err", err,
			)
		} else {
			res.IndexName = name
			g.logger.Info("embedding.index.created", "collection", opts.Target, "index", name, "dimensions", res.Dimensions)
		}
	}

	return res, nil
}

// embedOne embeds and stores one movie. It reports whether the movie was
// stored; a provider failure is counted and not returned.
func (g *Generator) embedOne(ctx context.Context, db storage.Database, opts Options, m catalog.Movie, res *Result) (bool, error) {
	embStart := time.Now()
	vec, err := embedWithRetry(ctx, g.provider, m.Plot, opts.Retry, func(attempt int, err error) {
		embMetrics.retries.Inc()
		g.logger.Debug("embedding.retry", "title", m.Title, "attempt", attempt, "err", err)
	})
	embMetrics.embedDuration.Observe(time.Since(embStart).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		res.Failed++
		embMetrics.errors.Inc()
		g.logger.Warn("embedding.movie.failed", "title", m.Title, "err", err)
		return false, nil
	}

	if err := db.InsertOne(ctx, opts.Target, catalog.NewEmbeddedMovie(m, vec)); err != nil {
		return false, fmt.Errorf("store embedding for %q: %w", m.Title, err)
	}
	res.Processed++
	res.Dimensions = len(vec)
	embMetrics.computed.Inc()
	return true, nil
}
