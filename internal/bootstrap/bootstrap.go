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

package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kraklabs/docseed/pkg/catalog"
	"github.com/kraklabs/docseed/pkg/schema"
	"github.com/kraklabs/docseed/pkg/storage"
)

// Bootstrapper runs the one-shot initialization steps against a database.
// It holds no state between calls; every step is a straight sequence of
// database calls.
type Bootstrapper struct {
	logger *slog.Logger
}

// New creates a Bootstrapper. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Bootstrapper {
	if logger == nil {
		logger = slog.Default()
	}
	bsMetrics.init()
	return &Bootstrapper{logger: logger}
}

// CreateCollections ensures every named collection exists. Collections that
// already exist are left alone.
func (b *Bootstrapper) CreateCollections(ctx context.Context, db storage.Database, names []string) error {
	for _, name := range names {
		if err := db.CreateCollection(ctx, name); err != nil {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
		b.logger.Debug("bootstrap.collection.ready", "db", db.Name(), "collection", name)
	}
	return nil
}

// SeedData inserts docs into collection and returns the number inserted.
// There is no dedup: seeding twice stores every document twice.
func (b *Bootstrapper) SeedData(ctx context.Context, db storage.Database, collection string, docs []any) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	n, err := db.InsertMany(ctx, collection, docs)
	if err != nil {
		return n, fmt.Errorf("seed %s: %w", collection, err)
	}
	recordInserted(collection, n)
	b.logger.Info("bootstrap.seed.inserted", "db", db.Name(), "collection", collection, "count", n)
	return n, nil
}

// SeedOptions controls SeedFixtures.
type SeedOptions struct {
	// Drop removes the seed collections before inserting, making a re-run
	// produce the same counts instead of duplicates.
	Drop bool
}

// SeedResult reports what SeedFixtures inserted, per collection.
type SeedResult struct {
	Database string
	Inserted map[string]int
	// Invalid holds the fixture consistency error, if any. Seeding proceeds
	// regardless.
	Invalid error
}

// SeedFixtures creates the seed collections and inserts fx into them in the
// order products, customers, orders.
func (b *Bootstrapper) SeedFixtures(ctx context.Context, db storage.Database, fx catalog.Fixtures, opts SeedOptions) (*SeedResult, error) {
	start := time.Now()
	defer func() { bsMetrics.seedDuration.Observe(time.Since(start).Seconds()) }()

	b.logger.Info("bootstrap.seed.start", "db", db.Name(), "drop", opts.Drop)

	res := &SeedResult{Database: db.Name(), Inserted: make(map[string]int)}
	if err := catalog.Validate(fx); err != nil {
		res.Invalid = err
		b.logger.Warn("bootstrap.seed.fixtures.inconsistent", "err", err)
	}

	if opts.Drop {
		for _, name := range schema.SeedCollections() {
			if err := db.DropCollection(ctx, name); err != nil {
				return res, fmt.Errorf("drop %s: %w", name, err)
			}
		}
	}

	if err := b.CreateCollections(ctx, db, schema.SeedCollections()); err != nil {
		return res, err
	}

	batches := []struct {
		collection string
		docs       []any
	}{
		{schema.Products, fx.ProductDocs()},
		{schema.Customers, fx.CustomerDocs()},
		{schema.Orders, fx.OrderDocs()},
	}
	for _, batch := range batches {
		n, err := b.SeedData(ctx, db, batch.collection, batch.docs)
		res.Inserted[batch.collection] = n
		if err != nil {
			return res, err
		}
	}

	b.logger.Info("bootstrap.seed.success", "db", db.Name(), "inserted", res.Inserted)
	return res, nil
}

// IndexPlan lists the indexes CreateIndexes creates.
type IndexPlan struct {
	// Vector is the optional search index. Nil skips it.
	Vector *schema.VectorIndex
	// Indexes are the standard indexes, created in order.
	Indexes []schema.IndexSpec
}

// DefaultIndexPlan is the movie sample plan: the plot vector index and the
// standard movie, comment and theater indexes.
func DefaultIndexPlan() IndexPlan {
	v := schema.MoviesVectorIndex()
	return IndexPlan{Vector: &v, Indexes: schema.MovieIndexes()}
}

// IndexResult reports the outcome of CreateIndexes.
type IndexResult struct {
	Database string
	// VectorCreated is the vector index name when it was created.
	VectorCreated string
	// VectorSkipped is set when vector index creation failed and was skipped.
	VectorSkipped bool
	// VectorErr is the error that caused the skip.
	VectorErr error
	// Created lists "<collection>.<index>" for each standard index.
	Created []string
}

// CreateIndexes creates the vector index first and then every standard index.
//
// A failing vector index is logged and recorded in the result; it never
// fails the call. Any failing standard index stops the call and is returned.
func (b *Bootstrapper) CreateIndexes(ctx context.Context, db storage.Database, plan IndexPlan) (*IndexResult, error) {
	start := time.Now()
	defer func() { bsMetrics.indexDuration.Observe(time.Since(start).Seconds()) }()

	res := &IndexResult{Database: db.Name()}

	if plan.Vector != nil {
		name, err := db.CreateSearchIndex(ctx, *plan.Vector)
		if err != nil {
			res.VectorSkipped = true
			res.VectorErr = err
			bsMetrics.vectorSkipped.Inc()
			b.logger.Info("bootstrap.index.vector.skipped",
				"db", db.Name(),
				"collection", plan.Vector.Collection,
				"index", plan.Vector.Name,
				"search_unsupported", storage.IsSearchUnsupported(err),
				"err", err,
			)
		} else {
			res.VectorCreated = name
			bsMetrics.indexesCreated.WithLabelValues("vector").Inc()
			b.logger.Info("bootstrap.index.vector.created", "db", db.Name(), "collection", plan.Vector.Collection, "index", name)
		}
	}

	for _, spec := range plan.Indexes {
		name, err := db.CreateIndex(ctx, spec)
		if err != nil {
			bsMetrics.indexesFailed.Inc()
			return res, fmt.Errorf("create index %s: %w", spec, err)
		}
		bsMetrics.indexesCreated.WithLabelValues("standard").Inc()
		res.Created = append(res.Created, spec.Collection+"."+name)
	}

	b.logger.Info("bootstrap.index.success", "db", db.Name(), "created", len(res.Created), "vector_skipped", res.VectorSkipped)
	return res, nil
}

// CollectionCount is the document count of one collection.
type CollectionCount struct {
	Collection string `json:"collection"`
	Count      int64  `json:"count"`
}

// StatusReport lists document counts for one database.
type StatusReport struct {
	Database string            `json:"database"`
	Counts   []CollectionCount `json:"counts"`
}

// Count returns the count for collection, or 0 if it was not reported.
func (r *StatusReport) Count(collection string) int64 {
	for _, c := range r.Counts {
		if c.Collection == collection {
			return c.Count
		}
	}
	return 0
}

// ReportStatus counts the documents of each collection, in order. The first
// failing count is returned.
func (b *Bootstrapper) ReportStatus(ctx context.Context, db storage.Database, collections []string) (*StatusReport, error) {
	report := &StatusReport{Database: db.Name()}
	for _, name := range collections {
		n, err := db.CountDocuments(ctx, name)
		if err != nil {
			return report, fmt.Errorf("count %s: %w", name, err)
		}
		report.Counts = append(report.Counts, CollectionCount{Collection: name, Count: n})
	}
	b.logger.Debug("bootstrap.status", "db", db.Name(), "collections", len(report.Counts))
	return report, nil
}

// RunOptions controls Run.
type RunOptions struct {
	Seed      SeedOptions
	Fixtures  catalog.Fixtures
	IndexPlan IndexPlan
	// StatusCollections are counted on the movies database after indexing.
	StatusCollections []string
}

// DefaultRunOptions seeds the built-in fixtures and applies the default plan.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		Fixtures:          catalog.Seed(),
		IndexPlan:         DefaultIndexPlan(),
		StatusCollections: schema.MovieStatusCollections(),
	}
}

// Summary is the outcome of Run.
type Summary struct {
	Seed        *SeedResult
	SeedStatus  *StatusReport
	Indexes     *IndexResult
	MovieStatus *StatusReport
	Duration    time.Duration

	// FailedDatabase names the database whose step failed, if any.
	FailedDatabase string
}

// Run performs the full initialization: seed the commerce collections in
// seedDB, then create indexes and report counts in moviesDB. It stops at the
// first error other than a vector index failure.
func (b *Bootstrapper) Run(ctx context.Context, seedDB, moviesDB storage.Database, opts RunOptions) (*Summary, error) {
	start := time.Now()
	sum := &Summary{}
	defer func() {
		sum.Duration = time.Since(start)
		bsMetrics.runDuration.Observe(sum.Duration.Seconds())
	}()

	var err error
	if sum.Seed, err = b.SeedFixtures(ctx, seedDB, opts.Fixtures, opts.Seed); err != nil {
		sum.FailedDatabase = seedDB.Name()
		return sum, err
	}
	if sum.SeedStatus, err = b.ReportStatus(ctx, seedDB, schema.SeedCollections()); err != nil {
		sum.FailedDatabase = seedDB.Name()
		return sum, err
	}
	if sum.Indexes, err = b.CreateIndexes(ctx, moviesDB, opts.IndexPlan); err != nil {
		sum.FailedDatabase = moviesDB.Name()
		return sum, err
	}
	if sum.MovieStatus, err = b.ReportStatus(ctx, moviesDB, opts.StatusCollections); err != nil {
		sum.FailedDatabase = moviesDB.Name()
		return sum, err
	}
	return sum, nil
}
