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

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Spec is one product specification, such as "ram": "16GB".
type Spec struct {
	Key   string
	Value string
}

// Specs is an ordered list of product specifications. It is stored as a
// subdocument whose fields keep the listed order.
type Specs []Spec

// Get returns the value stored under key.
func (s Specs) Get(key string) (string, bool) {
	for _, sp := range s {
		if sp.Key == key {
			return sp.Value, true
		}
	}
	return "", false
}

// MarshalBSONValue implements bson.ValueMarshaler.
func (s Specs) MarshalBSONValue() (bsontype.Type, []byte, error) {
	doc := make(bson.D, 0, len(s))
	for _, sp := range s {
		doc = append(doc, bson.E{Key: sp.Key, Value: sp.Value})
	}
	return bson.MarshalValue(doc)
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler. Every field must be
// a string.
func (s *Specs) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bsontype.Null {
		*s = nil
		return nil
	}
	if t != bsontype.EmbeddedDocument {
		return fmt.Errorf("specs: cannot decode %s into a document", t)
	}
	elems, err := bson.Raw(data).Elements()
	if err != nil {
		return fmt.Errorf("specs: %w", err)
	}
	out := make(Specs, 0, len(elems))
	for _, el := range elems {
		v, ok := el.Value().StringValueOK()
		if !ok {
			return fmt.Errorf("specs: field %q is %s, not a string", el.Key(), el.Value().Type)
		}
		out = append(out, Spec{Key: el.Key(), Value: v})
	}
	*s = out
	return nil
}

// MarshalJSON writes the specifications as a JSON object in order.
func (s Specs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sp := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(sp.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(sp.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
