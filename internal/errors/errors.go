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

// Package errors provides the errors docseed shows to users.
//
// A UserError says what went wrong, why, and how to fix it, and carries the
// process exit code for its category:
//
//	return errors.NewDatabaseError(
//	    "Cannot create index movies.title_1",
//	    "not authorized on sample_mflix to execute command createIndexes",
//	    "Connect as a user with the readWrite role on sample_mflix",
//	    err,
//	)
//
// Format renders the error for a terminal:
//
//	Error: Cannot create index movies.title_1
//	Cause: not authorized on sample_mflix to execute command createIndexes
//	Fix:   Connect as a user with the readWrite role on sample_mflix
//
// and ToJSON renders it for --json output.
//
// # Exit Codes
//
//   - ExitSuccess (0)
//   - ExitConfig (1): invalid or unreadable configuration
//   - ExitDatabase (2): a MongoDB command failed
//   - ExitNetwork (3): MongoDB, Ollama or Kafka could not be reached
//   - ExitInput (4): bad arguments or inconsistent seed data
//   - ExitNotFound (6): nothing to work on, e.g. no movies to embed
//   - ExitInternal (10): a bug
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes.
const (
	ExitSuccess  = 0
	ExitConfig   = 1
	ExitDatabase = 2
	ExitNetwork  = 3
	ExitInput    = 4
	ExitNotFound = 6

	// ExitInternal signals a bug that should be reported.
	ExitInternal = 10
)

// UserError is an error with user-facing context and an exit code.
type UserError struct {
	// Message describes what went wrong.
	Message string

	// Cause explains why, usually the server's own message.
	Cause string

	// Fix is an actionable suggestion.
	Fix string

	ExitCode int

	// Err is the wrapped error, if any.
	Err error
}

// Error returns the message, followed by the wrapped error when present.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *UserError) Unwrap() error {
	return e.Err
}

func newError(code int, msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: code, Err: err}
}

// NewConfigError reports an unreadable or invalid docseed.yaml, .env or
// environment override.
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return newError(ExitConfig, msg, cause, fix, err)
}

// NewDatabaseError reports a failed MongoDB command: collection creation,
// insert, standard index creation or count.
func NewDatabaseError(msg, cause, fix string, err error) *UserError {
	return newError(ExitDatabase, msg, cause, fix, err)
}

// NewNetworkError reports a server that could not be reached.
func NewNetworkError(msg, cause, fix string, err error) *UserError {
	return newError(ExitNetwork, msg, cause, fix, err)
}

// NewInputError reports bad arguments. It wraps no error.
func NewInputError(msg, cause, fix string) *UserError {
	return newError(ExitInput, msg, cause, fix, nil)
}

// NewNotFoundError reports that there was nothing to process.
func NewNotFoundError(msg, cause, fix string) *UserError {
	return newError(ExitNotFound, msg, cause, fix, nil)
}

// NewInternalError reports an unexpected condition.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return newError(ExitInternal, msg, cause, fix, err)
}

// ExitCode returns the exit code for err: 0 for nil, the code of the first
// UserError in the chain, and ExitInternal otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ue *UserError
	if stderrors.As(err, &ue) {
		return ue.ExitCode
	}
	return ExitInternal
}

var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format renders the error with colored Error, Cause and Fix labels. Empty
// sections are omitted. NO_COLOR or noColor disables colors.
func (e *UserError) Format(noColor bool) string {
	// color.NoColor is global; restore it afterwards.
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON is the --json form of a UserError.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the error for JSON output.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
}

// Report writes err to w as text or JSON and returns its exit code. Errors
// that are not a UserError are reported as internal errors.
func Report(w io.Writer, err error, jsonOutput, noColor bool) int {
	if err == nil {
		return ExitSuccess
	}

	var ue *UserError
	if !stderrors.As(err, &ue) {
		ue = NewInternalError(err.Error(), "", "This is a bug. Please report it with the command you ran", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(ue.ToJSON())
	} else {
		fmt.Fprint(w, ue.Format(noColor))
	}
	return ue.ExitCode
}
