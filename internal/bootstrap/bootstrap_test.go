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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	dstest "github.com/kraklabs/docseed/internal/testing"
	"github.com/kraklabs/docseed/pkg/catalog"
	"github.com/kraklabs/docseed/pkg/schema"
	"github.com/kraklabs/docseed/pkg/storage"
)

func newServer(search bool) *storage.MemoryServer {
	return storage.NewMemoryServer(storage.MemoryOptions{SearchIndexes: search})
}

func TestCreateCollections_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := newServer(false).DB(schema.SeedDatabase)
	b := New(nil)

	require.NoError(t, b.CreateCollections(ctx, db, schema.SeedCollections()))
	require.NoError(t, b.CreateCollections(ctx, db, schema.SeedCollections()))
	assert.ElementsMatch(t, []string{"products", "customers", "orders"}, db.Collections())
}

func TestSeedFixtures_Counts(t *testing.T) {
	ctx := context.Background()
	db := newServer(false).DB(schema.SeedDatabase)
	b := New(nil)

	res, err := b.SeedFixtures(ctx, db, catalog.Seed(), SeedOptions{})
	require.NoError(t, err)
	assert.NoError(t, res.Invalid)
	assert.Equal(t, map[string]int{"products": 5, "customers": 3, "orders": 3}, res.Inserted)

	report, err := b.ReportStatus(ctx, db, schema.SeedCollections())
	require.NoError(t, err)
	assert.Equal(t, int64(5), report.Count("products"))
	assert.Equal(t, int64(3), report.Count("customers"))
	assert.Equal(t, int64(3), report.Count("orders"))
}

// Seeding has no dedup and no unique index on the natural IDs, so a second
// run duplicates every document.
func TestSeedFixtures_TwiceDuplicates(t *testing.T) {
	ctx := context.Background()
	db := newServer(false).DB(schema.SeedDatabase)
	b := New(nil)

	_, err := b.SeedFixtures(ctx, db, catalog.Seed(), SeedOptions{})
	require.NoError(t, err)
	_, err = b.SeedFixtures(ctx, db, catalog.Seed(), SeedOptions{})
	require.NoError(t, err)

	report, err := b.ReportStatus(ctx, db, schema.SeedCollections())
	require.NoError(t, err)
	assert.Equal(t, int64(10), report.Count("products"))
	assert.Equal(t, int64(6), report.Count("customers"))
	assert.Equal(t, int64(6), report.Count("orders"))
}

func TestSeedFixtures_DropMakesRerunStable(t *testing.T) {
	ctx := context.Background()
	db := newServer(false).DB(schema.SeedDatabase)
	b := New(nil)

	for i := 0; i < 2; i++ {
		_, err := b.SeedFixtures(ctx, db, catalog.Seed(), SeedOptions{Drop: true})
		require.NoError(t, err)
	}
	report, err := b.ReportStatus(ctx, db, schema.SeedCollections())
	require.NoError(t, err)
	assert.Equal(t, int64(5), report.Count("products"))
}

func TestSeedFixtures_StoredOrdersKeepReferences(t *testing.T) {
	ctx := context.Background()
	db := newServer(false).DB(schema.SeedDatabase)
	_, err := New(nil).SeedFixtures(ctx, db, catalog.Seed(), SeedOptions{})
	require.NoError(t, err)

	products := map[string]bool{}
	for _, p := range dstest.QueryDocuments[catalog.Product](t, db, "products") {
		products[p.ProductID] = true
	}
	for _, o := range dstest.QueryDocuments[catalog.Order](t, db, "orders") {
		assert.True(t, o.TotalMatchesItems(), o.OrderID)
		for _, it := range o.Items {
			assert.True(t, products[it.ProductID], "%s -> %s", o.OrderID, it.ProductID)
		}
	}
}

func TestSeedFixtures_InconsistentFixturesStillSeed(t *testing.T) {
	ctx := context.Background()
	db := newServer(false).DB(schema.SeedDatabase)
	fx := catalog.Seed()
	fx.Orders[0].TotalAmount = 1

	res, err := New(nil).SeedFixtures(ctx, db, fx, SeedOptions{})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Invalid, catalog.ErrInconsistentFixtures)
	assert.Equal(t, 3, res.Inserted["orders"])
}

func TestSeedFixtures_InsertFailureAborts(t *testing.T) {
	ctx := context.Background()
	db := newServer(false).DB(schema.SeedDatabase)
	boom := errors.New("write concern timeout")
	db.InjectFault(storage.OpInsert, "customers", boom)

	res, err := New(nil).SeedFixtures(ctx, db, catalog.Seed(), SeedOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 5, res.Inserted["products"])
	_, seeded := res.Inserted["orders"]
	assert.False(t, seeded, "orders must not be seeded after a failure")
}

func TestCreateIndexes_StandardIndexesExist(t *testing.T) {
	ctx := context.Background()
	db := newServer(false).DB(schema.MoviesDatabase)

	res, err := New(nil).CreateIndexes(ctx, db, DefaultIndexPlan())
	require.NoError(t, err)
	assert.Len(t, res.Created, 7)

	want := map[string][]string{
		"movies":   {"title_1", "year_1", "genres_1", "imdb.rating_-1"},
		"comments": {"movie_id_1", "email_1"},
		"theaters": {"location.geo_2dsphere"},
	}
	for coll, names := range want {
		dstest.RequireIndexes(t, db, coll, names...)
	}
}

func TestCreateIndexes_VectorUnsupportedIsSkipped(t *testing.T) {
	ctx := context.Background()
	db := newServer(false).DB(schema.MoviesDatabase)

	res, err := New(nil).CreateIndexes(ctx, db, DefaultIndexPlan())
	require.NoError(t, err)
	assert.True(t, res.VectorSkipped)
	assert.True(t, storage.IsSearchUnsupported(res.VectorErr))
	assert.Empty(t, res.VectorCreated)
	assert.Len(t, res.Created, 7, "standard indexes still created after vector failure")
}

func TestCreateIndexes_VectorAnyFailureIsSkipped(t *testing.T) {
	ctx := context.Background()
	db := newServer(true).DB(schema.MoviesDatabase)
	boom := errors.New("connection reset")
	db.InjectFault(storage.OpCreateSearchIndex, "", boom)

	res, err := New(nil).CreateIndexes(ctx, db, DefaultIndexPlan())
	require.NoError(t, err)
	assert.True(t, res.VectorSkipped)
	assert.ErrorIs(t, res.VectorErr, boom)
}

func TestCreateIndexes_VectorSupported(t *testing.T) {
	ctx := context.Background()
	db := newServer(true).DB(schema.MoviesDatabase)

	res, err := New(nil).CreateIndexes(ctx, db, DefaultIndexPlan())
	require.NoError(t, err)
	assert.False(t, res.VectorSkipped)
	assert.Equal(t, "vector_index", res.VectorCreated)
	assert.Equal(t, []string{"vector_index"}, db.SearchIndexes("movies"))
}

func TestCreateIndexes_StandardFailureAborts(t *testing.T) {
	ctx := context.Background()
	db := newServer(false).DB(schema.MoviesDatabase)
	boom := errors.New("index build failed")
	db.InjectFault(storage.OpCreateIndex, "comments", boom)

	res, err := New(nil).CreateIndexes(ctx, db, DefaultIndexPlan())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "comments.movie_id_1")
	assert.Equal(t, []string{
		"movies.title_1", "movies.year_1", "movies.genres_1", "movies.imdb.rating_-1",
	}, res.Created)
}

func TestReportStatus_Order(t *testing.T) {
	ctx := context.Background()
	db := newServer(false).DB(schema.MoviesDatabase)
	_, err := db.InsertMany(ctx, "movies", []any{bson.D{{Key: "title", Value: "A"}}, bson.D{{Key: "title", Value: "B"}}})
	require.NoError(t, err)

	report, err := New(nil).ReportStatus(ctx, db, schema.MovieStatusCollections())
	require.NoError(t, err)
	assert.Equal(t, []CollectionCount{
		{Collection: "movies", Count: 2},
		{Collection: "comments", Count: 0},
		{Collection: "users", Count: 0},
		{Collection: "theaters", Count: 0},
		{Collection: "sessions", Count: 0},
	}, report.Counts)
}

func TestReportStatus_CountFailureAborts(t *testing.T) {
	ctx := context.Background()
	db := newServer(false).DB(schema.MoviesDatabase)
	db.InjectFault(storage.OpCount, "users", errors.New("unauthorized"))

	report, err := New(nil).ReportStatus(ctx, db, schema.MovieStatusCollections())
	require.Error(t, err)
	assert.Len(t, report.Counts, 2)
}

func TestRun_VectorFailureDoesNotStopReporting(t *testing.T) {
	ctx := context.Background()
	srv := newServer(false)
	movies := srv.DB(schema.MoviesDatabase)
	_, err := movies.InsertMany(ctx, "movies", []any{bson.D{{Key: "title", Value: "Metropolis"}}})
	require.NoError(t, err)

	sum, err := New(nil).Run(ctx, srv.Database(schema.SeedDatabase), movies, DefaultRunOptions())
	require.NoError(t, err)

	assert.True(t, sum.Indexes.VectorSkipped)
	assert.Len(t, sum.Indexes.Created, 7)
	require.NotNil(t, sum.MovieStatus)
	assert.Equal(t, int64(1), sum.MovieStatus.Count("movies"))
	assert.Equal(t, int64(5), sum.SeedStatus.Count("products"))
}

func TestRun_SeedFailureStopsBeforeIndexes(t *testing.T) {
	ctx := context.Background()
	srv := newServer(false)
	seed := srv.DB(schema.SeedDatabase)
	seed.InjectFault(storage.OpCreateCollection, "orders", errors.New("not authorized"))

	sum, err := New(nil).Run(ctx, seed, srv.Database(schema.MoviesDatabase), DefaultRunOptions())
	require.Error(t, err)
	assert.Nil(t, sum.Indexes)
	assert.Equal(t, schema.SeedDatabase, sum.FailedDatabase)
	assert.Empty(t, srv.DB(schema.MoviesDatabase).Collections())
}

func TestRun_SeedCountFailureNamesSeedDatabase(t *testing.T) {
	ctx := context.Background()
	srv := newServer(false)
	seed := srv.DB(schema.SeedDatabase)
	seed.InjectFault(storage.OpCount, "orders", errors.New("unauthorized count"))

	sum, err := New(nil).Run(ctx, seed, srv.Database(schema.MoviesDatabase), DefaultRunOptions())
	require.Error(t, err)
	require.NotNil(t, sum.SeedStatus)
	assert.Nil(t, sum.Indexes)
	assert.Equal(t, schema.SeedDatabase, sum.FailedDatabase)
}

func TestRun_IndexFailureNamesMoviesDatabase(t *testing.T) {
	ctx := context.Background()
	srv := newServer(false)
	movies := srv.DB(schema.MoviesDatabase)
	movies.InjectFault(storage.OpCreateIndex, schema.Theaters, errors.New("invalid geo field"))

	sum, err := New(nil).Run(ctx, srv.Database(schema.SeedDatabase), movies, DefaultRunOptions())
	require.Error(t, err)
	assert.Equal(t, schema.MoviesDatabase, sum.FailedDatabase)
}
