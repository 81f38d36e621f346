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
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Server error codes docseed reacts to.
const (
	codeCommandNotFound      = 59
	codeIndexAlreadyExists   = 68
	codeCommandNotSupported  = 115
	codeNamespaceNotFound    = 26
	codeNamespaceExists      = 48
	codeSearchNotEnabled     = 31082
	codeUnrecognizedPipeline = 40324
)

// IsSearchUnsupported reports whether err means the deployment has no Atlas
// Search support (community server, or Enterprise without mongot).
func IsSearchUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeSearchNotEnabled, codeCommandNotSupported, codeCommandNotFound, codeUnrecognizedPipeline:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "atlas") || strings.Contains(msg, "search index commands")
}

// IsIndexExists reports whether err means an index with the same name exists.
func IsIndexExists(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return ce.Code == codeIndexAlreadyExists
	}
	return false
}

func hasCode(err error, code int32) bool {
	var ce mongo.CommandError
	return errors.As(err, &ce) && ce.Code == code
}
