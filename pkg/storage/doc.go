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

// Package storage abstracts the document database docseed bootstraps.
//
// # Backends
//
// Two implementations of Server are provided:
//
//   - MongoServer: the official MongoDB Go driver. Used in production.
//   - MemoryServer: an in-process store used by tests and by --dry-run.
//
// Both keep the server's observable behavior for the calls docseed makes:
// creating an existing collection succeeds, inserts get a generated _id,
// index names follow the server default, counting a missing collection
// returns 0, and vector search indexes are rejected unless the deployment
// has Atlas Search.
//
// # Usage
//
//	srv, err := storage.NewMongoServer(ctx, storage.MongoConfig{
//	    URI: "mongodb://localhost:27017",
//	}, logger)
//	if err != nil {
//	    return err
//	}
//	defer srv.Close(context.Background())
//
//	db := srv.Database("ai_agent_db")
//	if err := db.CreateCollection(ctx, "products"); err != nil {
//	    return err
//	}
//
// # Search Support
//
// IsSearchUnsupported classifies errors returned by CreateSearchIndex on
// deployments without Atlas Search. Callers treat those as optional-feature
// skips.
//
// # Testing
//
// MemoryDatabase.InjectFault makes an operation fail for one collection (or
// all of them), which lets tests drive the error paths of callers:
//
//	srv := storage.NewMemoryServer(storage.MemoryOptions{})
//	srv.DB("sample_mflix").InjectFault(storage.OpCreateIndex, "theaters", errBoom)
package storage
