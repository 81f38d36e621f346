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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kraklabs/docseed/pkg/catalog"
	"github.com/kraklabs/docseed/pkg/schema"
	"github.com/kraklabs/docseed/pkg/storage"
)

func TestSetupTestDatabase(t *testing.T) {
	db := SetupTestDatabase(t, schema.MoviesDatabase)
	require.NotNil(t, db)
	assert.Equal(t, schema.MoviesDatabase, db.Name())
	assert.Empty(t, db.Collections(), "should start empty")
}

func TestWithSearchIndexes(t *testing.T) {
	ctx := context.Background()
	idx := schema.MoviesVectorIndex()

	_, err := SetupTestDatabase(t, "a").CreateSearchIndex(ctx, idx)
	assert.True(t, storage.IsSearchUnsupported(err))

	name, err := SetupTestDatabase(t, "b", WithSearchIndexes()).CreateSearchIndex(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, schema.VectorIndexName, name)
}

func TestInsertTestMovie(t *testing.T) {
	db := SetupTestDatabase(t, schema.MoviesDatabase)

	id := InsertTestMovie(t, db, "Heat", "A group of bank robbers.", 1995, "Crime", "Drama")
	InsertTestMovie(t, db, "Untitled", "", 0)

	movies := QueryDocuments[catalog.Movie](t, db, schema.Movies)
	require.Len(t, movies, 2)
	assert.Equal(t, id, movies[0].ID)
	assert.Equal(t, "Heat", movies[0].Title)
	assert.Equal(t, []string{"Crime", "Drama"}, movies[0].Genres)
	assert.Nil(t, movies[1].Year, "zero year is omitted")

	withPlot, err := db.FindMoviesWithPlot(context.Background(), schema.Movies, 10)
	require.NoError(t, err)
	assert.Len(t, withPlot, 1)
}

func TestSeedTestMovies(t *testing.T) {
	db := SetupTestDatabase(t, schema.MoviesDatabase)
	SeedTestMovies(t, db, 0)
	RequireCount(t, db, schema.Movies, 0)

	SeedTestMovies(t, db, 4)
	RequireCount(t, db, schema.Movies, 4)

	movies := QueryDocuments[catalog.Movie](t, db, schema.Movies)
	assert.Equal(t, "Movie 4", movies[3].Title)
}

func TestInsertTestComment(t *testing.T) {
	db := SetupTestDatabase(t, schema.MoviesDatabase)
	id := InsertTestMovie(t, db, "Heat", "plot", 1995)
	InsertTestComment(t, db, id, "ned@example.com", "Great")

	comments := QueryDocuments[bson.M](t, db, schema.Comments)
	require.Len(t, comments, 1)
	assert.Equal(t, id, comments[0]["movie_id"])
	assert.Equal(t, "ned@example.com", comments[0]["email"])
}

func TestRequireIndexes(t *testing.T) {
	db := SetupTestDatabase(t, schema.MoviesDatabase)
	spec := schema.IndexSpec{Collection: schema.Movies, Keys: bson.D{{Key: "title", Value: 1}}}
	_, err := db.CreateIndex(context.Background(), spec)
	require.NoError(t, err)

	RequireIndexes(t, db, schema.Movies, "_id_", "title_1")
}
