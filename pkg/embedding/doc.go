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

// Package embedding generates plot embeddings for the movie sample data.
//
// A Generator reads movies that have a plot, asks a Provider for an
// embedding of each plot, stores the movie with its vector in a separate
// collection and finally creates a cosine vector search index sized to the
// embeddings it produced.
//
//	p := embedding.NewOllamaProvider("http://ollama:11434", "nomic-embed-text", 0, logger)
//	res, err := embedding.NewGenerator(p, logger).Run(ctx, db, embedding.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d processed, %d failed\n", res.Processed, res.Failed)
//
// Provider errors for a single movie are counted in Result.Failed and the
// run continues. Transient errors (timeouts, refused connections, HTTP 429
// and 5xx) are retried with exponential backoff first. A failing vector index
// is reported in Result.IndexErr without failing the run.
package embedding
