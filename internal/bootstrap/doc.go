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

// Package bootstrap initializes a document database for the demo stack.
//
// # Steps
//
// A Bootstrapper exposes each step on its own and Run chains them:
//
//  1. SeedFixtures: create products, customers and orders, then insert the
//     catalog fixtures (CreateCollections + SeedData).
//  2. ReportStatus on the seed database.
//  3. CreateIndexes: the plot vector index, then the standard movie indexes.
//  4. ReportStatus on the movies database.
//
// Example:
//
//	b := bootstrap.New(logger)
//	sum, err := b.Run(ctx,
//	    srv.Database(schema.SeedDatabase),
//	    srv.Database(schema.MoviesDatabase),
//	    bootstrap.DefaultRunOptions(),
//	)
//	if err != nil {
//	    return err
//	}
//	if sum.Indexes.VectorSkipped {
//	    fmt.Println("vector search not available on this deployment")
//	}
//
// # Failure Policy
//
// Vector index creation is optional: it needs Atlas (or Enterprise with
// Search), so a failure is logged, recorded in IndexResult and the run
// continues. Every other failure (collection creation, inserts, standard
// indexes, counts) stops the run and is returned. Nothing is retried and
// nothing already written is rolled back.
//
// # Re-running
//
// Seeding is not idempotent. Collections are created only if missing, but
// documents are inserted unconditionally, so a second run doubles the seed
// counts. SeedOptions.Drop empties the seed collections first.
//
// # Metrics
//
// Inserted documents, created and failed indexes, vector skips and step
// durations are exported as Prometheus metrics under the docseed_ prefix
// on the default registry.
package bootstrap
