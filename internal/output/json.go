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

// Package output writes the machine-readable docseed output used by --json.
//
//	result := &StatusResult{Database: "sample_mflix", Counts: counts}
//	if err := output.JSONTo(os.Stdout, result); err != nil {
//	    return err
//	}
//
// Documents are printed as relaxed MongoDB Extended JSON so that dates and
// ObjectIDs survive a round trip through mongoimport.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
)

// JSONTo writes data as indented JSON to w.
func JSONTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

// ExtJSONTo writes each document as one line of relaxed Extended JSON.
func ExtJSONTo(w io.Writer, docs []bson.Raw) error {
	for i, doc := range docs {
		line, err := bson.MarshalExtJSON(doc, false, false)
		if err != nil {
			return fmt.Errorf("extended JSON encoding of document %d failed: %w", i, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}
