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

package testing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kraklabs/docseed/pkg/catalog"
	"github.com/kraklabs/docseed/pkg/schema"
	"github.com/kraklabs/docseed/pkg/storage"
)

// Option configures the test server.
type Option func(*storage.MemoryOptions)

// WithSearchIndexes makes the server accept search index commands, like an
// Atlas deployment.
func WithSearchIndexes() Option {
	return func(o *storage.MemoryOptions) { o.SearchIndexes = true }
}

// SetupTestServer creates an in-memory server. Without WithSearchIndexes it
// rejects search indexes like a community server.
func SetupTestServer(t *testing.T, opts ...Option) *storage.MemoryServer {
	t.Helper()
	var mo storage.MemoryOptions
	for _, opt := range opts {
		opt(&mo)
	}
	srv := storage.NewMemoryServer(mo)
	t.Cleanup(func() { _ = srv.Close(context.Background()) })
	return srv
}

// SetupTestDatabase returns database name on a fresh in-memory server.
func SetupTestDatabase(t *testing.T, name string, opts ...Option) *storage.MemoryDatabase {
	t.Helper()
	return SetupTestServer(t, opts...).DB(name)
}

// InsertTestMovie adds a movie to the movies collection and returns its _id.
func InsertTestMovie(t *testing.T, db storage.Database, title, plot string, year int, genres ...string) primitive.ObjectID {
	t.Helper()
	id := primitive.NewObjectID()
	m := catalog.Movie{ID: id, Title: title, Plot: plot, Genres: genres}
	if year != 0 {
		m.Year = year
	}
	require.NoError(t, db.InsertOne(context.Background(), schema.Movies, m), "insert movie %q", title)
	return id
}

// SeedTestMovies inserts n movies titled "Movie 1".."Movie n", each with a plot.
func SeedTestMovies(t *testing.T, db storage.Database, n int) {
	t.Helper()
	docs := make([]any, 0, n)
	for i := 1; i <= n; i++ {
		docs = append(docs, catalog.Movie{
			Title:  fmt.Sprintf("Movie %d", i),
			Plot:   fmt.Sprintf("Plot of movie number %d.", i),
			Year:   1990 + i,
			Genres: []string{"Drama"},
		})
	}
	if n == 0 {
		return
	}
	_, err := db.InsertMany(context.Background(), schema.Movies, docs)
	require.NoError(t, err)
}

// InsertTestComment adds a comment on movieID to the comments collection.
func InsertTestComment(t *testing.T, db storage.Database, movieID primitive.ObjectID, email, text string) {
	t.Helper()
	doc := bson.D{
		{Key: "movie_id", Value: movieID},
		{Key: "email", Value: email},
		{Key: "text", Value: text},
	}
	require.NoError(t, db.InsertOne(context.Background(), schema.Comments, doc))
}

// QueryDocuments decodes every document of collection into T.
func QueryDocuments[T any](t *testing.T, db *storage.MemoryDatabase, collection string) []T {
	t.Helper()
	raws := db.Documents(collection)
	out := make([]T, 0, len(raws))
	for i, raw := range raws {
		var v T
		require.NoError(t, bson.Unmarshal(raw, &v), "decode %s document %d", collection, i)
		out = append(out, v)
	}
	return out
}

// RequireCount fails the test unless collection holds want documents.
func RequireCount(t *testing.T, db storage.Database, collection string, want int64) {
	t.Helper()
	got, err := db.CountDocuments(context.Background(), collection)
	require.NoError(t, err)
	require.Equal(t, want, got, "document count of %s.%s", db.Name(), collection)
}

// RequireIndexes fails the test unless collection has every named index.
func RequireIndexes(t *testing.T, db storage.Database, collection string, names ...string) {
	t.Helper()
	got, err := db.ListIndexes(context.Background(), collection)
	require.NoError(t, err)
	for _, n := range names {
		require.Contains(t, got, n, "indexes of %s.%s", db.Name(), collection)
	}
}
