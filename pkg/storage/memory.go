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
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kraklabs/docseed/pkg/catalog"
	"github.com/kraklabs/docseed/pkg/schema"
)

// Op names a Database operation for fault injection.
type Op string

const (
	OpCreateCollection  Op = "createCollection"
	OpDropCollection    Op = "drop"
	OpInsert            Op = "insert"
	OpCreateIndex       Op = "createIndex"
	OpCreateSearchIndex Op = "createSearchIndex"
	OpListIndexes       Op = "listIndexes"
	OpCount             Op = "count"
	OpFind              Op = "find"
)

// MemoryOptions configures the in-memory backend.
type MemoryOptions struct {
	// SearchIndexes enables vector search index creation. When false the
	// backend rejects it the way a community server does.
	SearchIndexes bool
}

// MemoryServer is an in-process Server used by tests and --dry-run. Documents
// are stored as BSON so they round-trip like they would through the driver.
type MemoryServer struct {
	mu   sync.Mutex
	opts MemoryOptions
	dbs  map[string]*MemoryDatabase
}

// NewMemoryServer returns an empty in-memory deployment.
func NewMemoryServer(opts MemoryOptions) *MemoryServer {
	return &MemoryServer{opts: opts, dbs: make(map[string]*MemoryDatabase)}
}

// Database returns the named database, creating it on first use.
func (s *MemoryServer) Database(name string) Database {
	return s.DB(name)
}

// DB is Database with the concrete type, for test inspection.
func (s *MemoryServer) DB(name string) *MemoryDatabase {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, ok := s.dbs[name]
	if !ok {
		db = &MemoryDatabase{
			name:        name,
			server:      s,
			collections: make(map[string]*memCollection),
			faults:      make(map[faultKey]error),
		}
		s.dbs[name] = db
	}
	return db
}

// Ping always succeeds.
func (s *MemoryServer) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryServer) Close(context.Context) error { return nil }

type faultKey struct {
	op         Op
	collection string
}

type memCollection struct {
	docs          []bson.Raw
	ids           map[string]struct{}
	indexes       []string
	searchIndexes []string
}

func newMemCollection() *memCollection {
	return &memCollection{
		ids:     make(map[string]struct{}),
		indexes: []string{"_id_"},
	}
}

// MemoryDatabase implements Database in memory.
type MemoryDatabase struct {
	mu          sync.Mutex
	name        string
	server      *MemoryServer
	collections map[string]*memCollection
	faults      map[faultKey]error
}

// InjectFault makes every later op on collection fail with err. An empty
// collection matches all collections.
func (d *MemoryDatabase) InjectFault(op Op, collection string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults[faultKey{op, collection}] = err
}

func (d *MemoryDatabase) fault(op Op, collection string) error {
	if err, ok := d.faults[faultKey{op, collection}]; ok {
		return err
	}
	return d.faults[faultKey{op, ""}]
}

// Collections returns the names of existing collections.
func (d *MemoryDatabase) Collections() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.collections))
	for n := range d.collections {
		names = append(names, n)
	}
	return names
}

// Documents returns the raw documents stored in collection.
func (d *MemoryDatabase) Documents(collection string) []bson.Raw {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.collections[collection]
	if !ok {
		return nil
	}
	return append([]bson.Raw(nil), c.docs...)
}

// SearchIndexes returns the search index names on collection.
func (d *MemoryDatabase) SearchIndexes(collection string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.collections[collection]
	if !ok {
		return nil
	}
	return append([]string(nil), c.searchIndexes...)
}

func (d *MemoryDatabase) collection(name string) *memCollection {
	c, ok := d.collections[name]
	if !ok {
		c = newMemCollection()
		d.collections[name] = c
	}
	return c
}

// Name returns the database name.
func (d *MemoryDatabase) Name() string { return d.name }

// CreateCollection creates name if absent.
func (d *MemoryDatabase) CreateCollection(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fault(OpCreateCollection, name); err != nil {
		return err
	}
	d.collection(name)
	return nil
}

// DropCollection removes name and its indexes.
func (d *MemoryDatabase) DropCollection(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fault(OpDropCollection, name); err != nil {
		return err
	}
	delete(d.collections, name)
	return nil
}

// InsertMany stores docs, assigning an ObjectID where _id is missing.
// A duplicate _id stops the insert at that document, like an ordered insert.
func (d *MemoryDatabase) InsertMany(ctx context.Context, collection string, docs []any) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, mongo.ErrEmptySlice
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fault(OpInsert, collection); err != nil {
		return 0, err
	}
	c := d.collection(collection)
	for i, doc := range docs {
		raw, id, err := withID(doc)
		if err != nil {
			return i, fmt.Errorf("insert into %s.%s: %w", d.name, collection, err)
		}
		if _, dup := c.ids[id]; dup {
			return i, mongo.WriteException{WriteErrors: mongo.WriteErrors{{
				Index:   i,
				Code:    11000,
				Message: fmt.Sprintf("E11000 duplicate key error collection: %s.%s index: _id_ dup key: { _id: %s }", d.name, collection, id),
			}}}
		}
		c.ids[id] = struct{}{}
		c.docs = append(c.docs, raw)
	}
	return len(docs), nil
}

// InsertOne stores doc.
func (d *MemoryDatabase) InsertOne(ctx context.Context, collection string, doc any) error {
	_, err := d.InsertMany(ctx, collection, []any{doc})
	return err
}

// withID marshals doc, prepending a generated _id when it has none. It
// returns the document and a string form of its _id.
func withID(doc any) (bson.Raw, string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, "", err
	}
	if v, err := bson.Raw(raw).LookupErr("_id"); err == nil {
		return raw, v.String(), nil
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, "", err
	}
	id := primitive.NewObjectID()
	d = append(bson.D{{Key: "_id", Value: id}}, d...)
	raw, err = bson.Marshal(d)
	if err != nil {
		return nil, "", err
	}
	return raw, bson.Raw(raw).Lookup("_id").String(), nil
}

// CreateIndex records spec under its default name. Re-creating an existing
// index is a no-op, as on the server.
func (d *MemoryDatabase) CreateIndex(ctx context.Context, spec schema.IndexSpec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fault(OpCreateIndex, spec.Collection); err != nil {
		return "", err
	}
	c := d.collection(spec.Collection)
	name := spec.Name()
	for _, existing := range c.indexes {
		if existing == name {
			return name, nil
		}
	}
	c.indexes = append(c.indexes, name)
	return name, nil
}

// CreateSearchIndex records idx when search is enabled; otherwise it fails
// with SearchNotEnabled.
func (d *MemoryDatabase) CreateSearchIndex(ctx context.Context, idx schema.VectorIndex) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := idx.Validate(); err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fault(OpCreateSearchIndex, idx.Collection); err != nil {
		return "", err
	}
	if !d.server.opts.SearchIndexes {
		return "", mongo.CommandError{
			Code:    codeSearchNotEnabled,
			Name:    "SearchNotEnabled",
			Message: "Using Atlas Search Database Commands and the $listSearchIndexes aggregation stage requires additional configuration.",
		}
	}
	c := d.collection(idx.Collection)
	for _, existing := range c.searchIndexes {
		if existing == idx.Name {
			return "", mongo.CommandError{
				Code:    codeIndexAlreadyExists,
				Name:    "IndexAlreadyExists",
				Message: fmt.Sprintf("Duplicate Index: index %q already exists", idx.Name),
			}
		}
	}
	c.searchIndexes = append(c.searchIndexes, idx.Name)
	return idx.Name, nil
}

// ListIndexes returns standard index names in creation order.
func (d *MemoryDatabase) ListIndexes(ctx context.Context, collection string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fault(OpListIndexes, collection); err != nil {
		return nil, err
	}
	c, ok := d.collections[collection]
	if !ok {
		return nil, nil
	}
	return append([]string(nil), c.indexes...), nil
}

// CountDocuments returns the number of stored documents.
func (d *MemoryDatabase) CountDocuments(ctx context.Context, collection string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fault(OpCount, collection); err != nil {
		return 0, err
	}
	c, ok := d.collections[collection]
	if !ok {
		return 0, nil
	}
	return int64(len(c.docs)), nil
}

// FindMoviesWithPlot scans collection in insertion order.
func (d *MemoryDatabase) FindMoviesWithPlot(ctx context.Context, collection string, limit int) ([]catalog.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fault(OpFind, collection); err != nil {
		return nil, err
	}
	c, ok := d.collections[collection]
	if !ok {
		return nil, nil
	}
	var movies []catalog.Movie
	for _, raw := range c.docs {
		if limit > 0 && len(movies) >= limit {
			break
		}
		var m catalog.Movie
		if err := bson.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode movie from %s.%s: %w", d.name, collection, err)
		}
		if m.Plot == "" {
			continue
		}
		movies = append(movies, m)
	}
	return movies, nil
}
