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

package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kraklabs/docseed/pkg/catalog"
	"github.com/kraklabs/docseed/pkg/schema"
)

// TestBackendInterfaces verifies both backends implement the interfaces.
func TestBackendInterfaces(t *testing.T) {
	var _ Server = &MongoServer{}
	var _ Server = &MemoryServer{}
	var _ Database = &MongoDatabase{}
	var _ Database = &MemoryDatabase{}
}

func TestMemory_CreateCollectionIdempotent(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryServer(MemoryOptions{}).DB("ai_agent_db")

	require.NoError(t, db.CreateCollection(ctx, "products"))
	require.NoError(t, db.CreateCollection(ctx, "products"))
	assert.Equal(t, []string{"products"}, db.Collections())
}

func TestMemory_InsertManyAssignsIDs(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryServer(MemoryOptions{}).DB("ai_agent_db")

	n, err := db.InsertMany(ctx, "products", catalog.Seed().ProductDocs())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	docs := db.Documents("products")
	require.Len(t, docs, 5)
	for _, raw := range docs {
		id, ok := raw.Lookup("_id").ObjectIDOK()
		assert.True(t, ok)
		assert.False(t, id.IsZero())
	}

	var p catalog.Product
	require.NoError(t, bson.Unmarshal(docs[0], &p))
	assert.Equal(t, "PROD001", p.ProductID)
	processor, _ := p.Specs.Get("processor")
	assert.Equal(t, "Intel i7", processor)
}

func TestMemory_InsertManyEmpty(t *testing.T) {
	db := NewMemoryServer(MemoryOptions{}).DB("x")
	_, err := db.InsertMany(context.Background(), "c", nil)
	assert.ErrorIs(t, err, mongo.ErrEmptySlice)
}

func TestMemory_DuplicateIDIsDuplicateKeyError(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryServer(MemoryOptions{}).DB("x")
	id := primitive.NewObjectID()

	require.NoError(t, db.InsertOne(ctx, "c", bson.D{{Key: "_id", Value: id}}))
	err := db.InsertOne(ctx, "c", bson.D{{Key: "_id", Value: id}})
	require.Error(t, err)
	assert.True(t, mongo.IsDuplicateKeyError(err))
}

func TestMemory_CountMissingCollection(t *testing.T) {
	n, err := NewMemoryServer(MemoryOptions{}).DB("x").CountDocuments(context.Background(), "nope")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemory_CreateIndex(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryServer(MemoryOptions{}).DB("sample_mflix")

	for _, spec := range schema.MovieIndexes() {
		_, err := db.CreateIndex(ctx, spec)
		require.NoError(t, err)
	}
	// creating again is a no-op
	_, err := db.CreateIndex(ctx, schema.MovieIndexes()[0])
	require.NoError(t, err)

	names, err := db.ListIndexes(ctx, "movies")
	require.NoError(t, err)
	assert.Equal(t, []string{"_id_", "title_1", "year_1", "genres_1", "imdb.rating_-1"}, names)

	names, err = db.ListIndexes(ctx, "theaters")
	require.NoError(t, err)
	assert.Equal(t, []string{"_id_", "location.geo_2dsphere"}, names)
}

func TestMemory_SearchIndexUnsupported(t *testing.T) {
	db := NewMemoryServer(MemoryOptions{}).DB("sample_mflix")
	_, err := db.CreateSearchIndex(context.Background(), schema.MoviesVectorIndex())
	require.Error(t, err)
	assert.True(t, IsSearchUnsupported(err))
}

func TestMemory_SearchIndexSupported(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryServer(MemoryOptions{SearchIndexes: true}).DB("sample_mflix")

	name, err := db.CreateSearchIndex(ctx, schema.MoviesVectorIndex())
	require.NoError(t, err)
	assert.Equal(t, "vector_index", name)
	assert.Equal(t, []string{"vector_index"}, db.SearchIndexes("movies"))

	_, err = db.CreateSearchIndex(ctx, schema.MoviesVectorIndex())
	require.Error(t, err)
	assert.True(t, IsIndexExists(err))
	assert.False(t, IsSearchUnsupported(err))
}

func TestMemory_FindMoviesWithPlot(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryServer(MemoryOptions{}).DB("sample_mflix")
	_, err := db.InsertMany(ctx, "movies", []any{
		bson.D{{Key: "title", Value: "A"}, {Key: "plot", Value: "first"}},
		bson.D{{Key: "title", Value: "B"}},
		bson.D{{Key: "title", Value: "C"}, {Key: "plot", Value: ""}},
		bson.D{{Key: "title", Value: "D"}, {Key: "plot", Value: nil}},
		bson.D{{Key: "title", Value: "E"}, {Key: "plot", Value: "second"}, {Key: "genres", Value: bson.A{"Drama"}}},
		bson.D{{Key: "title", Value: "F"}, {Key: "plot", Value: "third"}},
	})
	require.NoError(t, err)

	movies, err := db.FindMoviesWithPlot(ctx, "movies", 2)
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "A", movies[0].Title)
	assert.Equal(t, "E", movies[1].Title)
	assert.Equal(t, []string{"Drama"}, movies[1].Genres)

	movies, err = db.FindMoviesWithPlot(ctx, "movies", 0)
	require.NoError(t, err)
	assert.Len(t, movies, 3)
}

func TestMemory_DropCollection(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryServer(MemoryOptions{}).DB("x")
	require.NoError(t, db.InsertOne(ctx, "c", bson.D{{Key: "a", Value: 1}}))
	require.NoError(t, db.DropCollection(ctx, "c"))
	require.NoError(t, db.DropCollection(ctx, "missing"))

	n, err := db.CountDocuments(ctx, "c")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemory_InjectFault(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	db := NewMemoryServer(MemoryOptions{}).DB("x")

	db.InjectFault(OpCount, "orders", boom)
	_, err := db.CountDocuments(ctx, "orders")
	assert.ErrorIs(t, err, boom)
	_, err = db.CountDocuments(ctx, "products")
	assert.NoError(t, err)

	db.InjectFault(OpInsert, "", boom)
	_, err = db.InsertMany(ctx, "anything", []any{bson.D{}})
	assert.ErrorIs(t, err, boom)
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	db := NewMemoryServer(MemoryOptions{}).DB("x")
	assert.ErrorIs(t, db.CreateCollection(ctx, "c"), context.Canceled)
}

func TestIsSearchUnsupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"search not enabled", mongo.CommandError{Code: 31082, Message: "x"}, true},
		{"command not found", mongo.CommandError{Code: 59, Message: "no such command: 'createSearchIndexes'"}, true},
		{"atlas message", errors.New("this feature is only available on MongoDB Atlas"), true},
		{"unauthorized", mongo.CommandError{Code: 13, Message: "not authorized"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSearchUnsupported(tt.err))
		})
	}
}
