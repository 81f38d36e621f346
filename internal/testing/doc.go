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

// Package testing provides test helpers backed by the in-memory storage
// server.
//
// # Quick Start
//
//	func TestMyFeature(t *testing.T) {
//	    db := testing.SetupTestDatabase(t, "sample_mflix", testing.WithSearchIndexes())
//	    testing.InsertTestMovie(t, db, "Heat", "A group of bank robbers.", 1995, "Crime")
//
//	    // run code under test against db ...
//
//	    testing.RequireCount(t, db, "movies", 1)
//	}
//
// # Seeding Test Data
//
//   - InsertTestMovie: a sample_mflix movie with a plot
//   - InsertTestComment: a comment referencing a movie
//   - SeedTestMovies: n numbered movies at once
//
// # Querying Test Data
//
//   - QueryDocuments: decode every document of a collection
//   - RequireCount: assert a collection's document count
//   - RequireIndexes: assert a collection's standard index names
package testing
