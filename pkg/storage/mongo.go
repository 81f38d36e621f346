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
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kraklabs/docseed/pkg/catalog"
	"github.com/kraklabs/docseed/pkg/schema"
)

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	// URI is the connection string. Defaults to mongodb://localhost:27017.
	URI string

	// ConnectTimeout bounds connect, server selection and the initial ping.
	// Defaults to 10s.
	ConnectTimeout time.Duration

	// AppName is reported to the server in the handshake.
	AppName string
}

// MongoServer implements Server on top of the official MongoDB driver.
type MongoServer struct {
	client *mongo.Client
	logger *slog.Logger
}

// NewMongoServer connects to the deployment at config.URI and pings it.
func NewMongoServer(ctx context.Context, config MongoConfig, logger *slog.Logger) (*MongoServer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.URI == "" {
		config.URI = "mongodb://localhost:27017"
	}
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	if config.AppName == "" {
		config.AppName = "docseed"
	}

	ctx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(config.URI).
		SetAppName(config.AppName).
		SetServerSelectionTimeout(config.ConnectTimeout)

	logger.Debug("storage.mongo.connect", "timeout", config.ConnectTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	s := &MongoServer{client: client, logger: logger}
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	logger.Info("storage.mongo.connected")
	return s, nil
}

// NewMongoServerFromClient wraps an already connected client.
func NewMongoServerFromClient(client *mongo.Client, logger *slog.Logger) *MongoServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoServer{client: client, logger: logger}
}

// Database returns a handle to the named database.
func (s *MongoServer) Database(name string) Database {
	return &MongoDatabase{db: s.client.Database(name), logger: s.logger}
}

// Ping verifies the primary is reachable.
func (s *MongoServer) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongodb: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoServer) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// MongoDatabase implements Database for one MongoDB database.
type MongoDatabase struct {
	db     *mongo.Database
	logger *slog.Logger
}

// Name returns the database name.
func (d *MongoDatabase) Name() string {
	return d.db.Name()
}

// CreateCollection creates name, treating NamespaceExists as success.
func (d *MongoDatabase) CreateCollection(ctx context.Context, name string) error {
	err := d.db.CreateCollection(ctx, name)
	if err != nil && !hasCode(err, codeNamespaceExists) {
		return fmt.Errorf("create collection %s.%s: %w", d.db.Name(), name, err)
	}
	if err != nil {
		d.logger.Debug("storage.mongo.collection.exists", "db", d.db.Name(), "collection", name)
	}
	return nil
}

// DropCollection drops name. Dropping a missing collection succeeds.
func (d *MongoDatabase) DropCollection(ctx context.Context, name string) error {
	if err := d.db.Collection(name).Drop(ctx); err != nil {
		return fmt.Errorf("drop collection %s.%s: %w", d.db.Name(), name, err)
	}
	return nil
}

// InsertMany inserts docs with an ordered insert.
func (d *MongoDatabase) InsertMany(ctx context.Context, collection string, docs []any) (int, error) {
	res, err := d.db.Collection(collection).InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert into %s.%s: %w", d.db.Name(), collection, err)
	}
	return len(res.InsertedIDs), nil
}

// InsertOne inserts doc.
func (d *MongoDatabase) InsertOne(ctx context.Context, collection string, doc any) error {
	if _, err := d.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert into %s.%s: %w", d.db.Name(), collection, err)
	}
	return nil
}

// CreateIndex creates spec with the server's default name.
func (d *MongoDatabase) CreateIndex(ctx context.Context, spec schema.IndexSpec) (string, error) {
	name, err := d.db.Collection(spec.Collection).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: spec.Keys})
	if err != nil {
		return "", fmt.Errorf("create index %s on %s.%s: %w", spec.Name(), d.db.Name(), spec.Collection, err)
	}
	return name, nil
}

// CreateSearchIndex creates a vectorSearch index.
func (d *MongoDatabase) CreateSearchIndex(ctx context.Context, idx schema.VectorIndex) (string, error) {
	if err := idx.Validate(); err != nil {
		return "", err
	}
	model := mongo.SearchIndexModel{
		Definition: idx.Definition(),
		Options:    options.SearchIndexes().SetName(idx.Name).SetType(schema.VectorSearchType),
	}
	name, err := d.db.Collection(idx.Collection).SearchIndexes().CreateOne(ctx, model)
	if err != nil {
		return "", fmt.Errorf("create search index %s on %s.%s: %w", idx.Name, d.db.Name(), idx.Collection, err)
	}
	return name, nil
}

// ListIndexes returns index names. A missing collection has none.
func (d *MongoDatabase) ListIndexes(ctx context.Context, collection string) ([]string, error) {
	specs, err := d.db.Collection(collection).Indexes().ListSpecifications(ctx)
	if err != nil {
		if hasCode(err, codeNamespaceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list indexes on %s.%s: %w", d.db.Name(), collection, err)
	}
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	return names, nil
}

// CountDocuments counts all documents in collection.
func (d *MongoDatabase) CountDocuments(ctx context.Context, collection string) (int64, error) {
	n, err := d.db.Collection(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count %s.%s: %w", d.db.Name(), collection, err)
	}
	return n, nil
}

// FindMoviesWithPlot returns movies with a non-null, non-empty plot.
func (d *MongoDatabase) FindMoviesWithPlot(ctx context.Context, collection string, limit int) ([]catalog.Movie, error) {
	filter := bson.D{{Key: "plot", Value: bson.D{
		{Key: "$exists", Value: true},
		{Key: "$nin", Value: bson.A{nil, ""}},
	}}}
	projection := bson.D{
		{Key: "title", Value: 1},
		{Key: "plot", Value: 1},
		{Key: "year", Value: 1},
		{Key: "genres", Value: 1},
		{Key: "cast", Value: 1},
		{Key: "directors", Value: 1},
	}
	opts := options.Find().SetProjection(projection)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := d.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find movies in %s.%s: %w", d.db.Name(), collection, err)
	}
	var movies []catalog.Movie
	if err := cur.All(ctx, &movies); err != nil {
		return nil, fmt.Errorf("decode movies from %s.%s: %w", d.db.Name(), collection, err)
	}
	return movies, nil
}
