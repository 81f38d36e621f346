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

package schema

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Search index constants.
const (
	VectorIndexName   = "vector_index"
	VectorSearchType  = "vectorSearch"
	PlotEmbeddingPath = "plot_embedding"
	DefaultDimensions = 768
	SimilarityCosine  = "cosine"
)

// VectorIndex describes an Atlas vector search index.
type VectorIndex struct {
	Collection    string
	Name          string
	Path          string
	NumDimensions int
	Similarity    string
	// Filters are scalar paths usable as pre-filters in $vectorSearch.
	Filters []string
}

// MoviesVectorIndex is the plot embedding index on the movies collection,
// filterable by genres and year.
func MoviesVectorIndex() VectorIndex {
	return VectorIndex{
		Collection:    Movies,
		Name:          VectorIndexName,
		Path:          PlotEmbeddingPath,
		NumDimensions: DefaultDimensions,
		Similarity:    SimilarityCosine,
		Filters:       []string{"genres", "year"},
	}
}

// EmbeddedMoviesVectorIndex is the index created after embedding generation.
// Its dimension comes from the embeddings actually produced.
func EmbeddedMoviesVectorIndex(dims int) VectorIndex {
	return VectorIndex{
		Collection:    EmbeddedMovies,
		Name:          VectorIndexName,
		Path:          PlotEmbeddingPath,
		NumDimensions: dims,
		Similarity:    SimilarityCosine,
	}
}

// Validate rejects definitions the server would refuse.
func (v VectorIndex) Validate() error {
	switch {
	case v.Collection == "":
		return fmt.Errorf("vector index %q: collection is required", v.Name)
	case v.Name == "":
		return fmt.Errorf("vector index on %s: name is required", v.Collection)
	case v.Path == "":
		return fmt.Errorf("vector index %q: path is required", v.Name)
	case v.NumDimensions <= 0:
		return fmt.Errorf("vector index %q: numDimensions must be positive, got %d", v.Name, v.NumDimensions)
	}
	switch v.Similarity {
	case "cosine", "euclidean", "dotProduct":
	default:
		return fmt.Errorf("vector index %q: unsupported similarity %q", v.Name, v.Similarity)
	}
	return nil
}

// Definition returns the "definition" document of the search index:
// one vector field followed by one filter field per filter path.
func (v VectorIndex) Definition() bson.D {
	fields := bson.A{
		bson.D{
			{Key: "type", Value: "vector"},
			{Key: "path", Value: v.Path},
			{Key: "numDimensions", Value: v.NumDimensions},
			{Key: "similarity", Value: v.Similarity},
		},
	}
	for _, f := range v.Filters {
		fields = append(fields, bson.D{
			{Key: "type", Value: "filter"},
			{Key: "path", Value: f},
		})
	}
	return bson.D{{Key: "fields", Value: fields}}
}
