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

	"github.com/kraklabs/docseed/pkg/catalog"
	"github.com/kraklabs/docseed/pkg/schema"
)

// Server is a connection to a document database deployment.
type Server interface {
	// Database returns a handle to the named database. No I/O is performed.
	Database(name string) Database

	// Ping verifies the deployment is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection.
	Close(ctx context.Context) error
}

// Database is the set of operations docseed issues against one database.
type Database interface {
	// Name returns the database name.
	Name() string

	// CreateCollection creates the collection. An existing collection is not an error.
	CreateCollection(ctx context.Context, name string) error

	// DropCollection removes the collection. A missing collection is not an error.
	DropCollection(ctx context.Context, name string) error

	// InsertMany inserts docs in order and returns how many were inserted.
	// Documents without an _id get a generated ObjectID.
	InsertMany(ctx context.Context, collection string, docs []any) (int, error)

	// InsertOne inserts a single document.
	InsertOne(ctx context.Context, collection string, doc any) error

	// CreateIndex creates a standard index and returns its name.
	CreateIndex(ctx context.Context, spec schema.IndexSpec) (string, error)

	// CreateSearchIndex creates a vector search index and returns its name.
	// Deployments without Atlas Search reject this call.
	CreateSearchIndex(ctx context.Context, idx schema.VectorIndex) (string, error)

	// ListIndexes returns the names of the standard indexes on collection,
	// including the default _id_ index.
	ListIndexes(ctx context.Context, collection string) ([]string, error)

	// CountDocuments counts every document in collection. A missing collection counts 0.
	CountDocuments(ctx context.Context, collection string) (int64, error)

	// FindMoviesWithPlot returns up to limit movies whose plot is present and
	// non-empty. A limit <= 0 means no limit.
	FindMoviesWithPlot(ctx context.Context, collection string, limit int) ([]catalog.Movie, error)
}
