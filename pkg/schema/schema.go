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

// Package schema declares the databases, collections and indexes docseed
// manages.
//
// Standard indexes are plain key specifications. The vector index is an Atlas
// Search "vectorSearch" definition, which only Atlas and Enterprise
// deployments with Search accept.
package schema

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Database names.
const (
	SeedDatabase   = "ai_agent_db"
	MoviesDatabase = "sample_mflix"
)

// Collection names.
const (
	Products       = "products"
	Customers      = "customers"
	Orders         = "orders"
	Movies         = "movies"
	Comments       = "comments"
	Theaters       = "theaters"
	Users          = "users"
	Sessions       = "sessions"
	EmbeddedMovies = "embedded_movies"
)

// SeedCollections are created and filled by the seed step, in this order.
func SeedCollections() []string {
	return []string{Products, Customers, Orders}
}

// MovieStatusCollections are counted after index creation, in this order.
func MovieStatusCollections() []string {
	return []string{Movies, Comments, Users, Theaters, Sessions}
}

// IndexSpec is a standard (non-search) index on one collection.
type IndexSpec struct {
	Collection string
	Keys       bson.D
}

// Name returns the index name MongoDB assigns by default.
func (s IndexSpec) Name() string {
	return DefaultIndexName(s.Keys)
}

func (s IndexSpec) String() string {
	return s.Collection + "." + s.Name()
}

// DefaultIndexName builds the server's default name for keys:
// each field and its value joined by underscores, e.g. "imdb.rating_-1".
func DefaultIndexName(keys bson.D) string {
	parts := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		parts = append(parts, k.Key, fmt.Sprint(k.Value))
	}
	return strings.Join(parts, "_")
}

// MovieIndexes are the standard indexes on the movie sample collections.
func MovieIndexes() []IndexSpec {
	return []IndexSpec{
		{Collection: Movies, Keys: bson.D{{Key: "title", Value: 1}}},
		{Collection: Movies, Keys: bson.D{{Key: "year", Value: 1}}},
		{Collection: Movies, Keys: bson.D{{Key: "genres", Value: 1}}},
		{Collection: Movies, Keys: bson.D{{Key: "imdb.rating", Value: -1}}},
		{Collection: Comments, Keys: bson.D{{Key: "movie_id", Value: 1}}},
		{Collection: Comments, Keys: bson.D{{Key: "email", Value: 1}}},
		{Collection: Theaters, Keys: bson.D{{Key: "location.geo", Value: "2dsphere"}}},
	}
}
