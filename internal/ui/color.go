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

// Package ui prints the human-readable docseed output.
//
// Colors follow --no-color and NO_COLOR, and fatih/color disables them when
// stdout is not a terminal.
//
//   - Green: success (collections seeded, indexes created)
//   - Cyan: info (vector index skipped)
//   - Yellow: warnings (inconsistent fixtures, event publish failures)
//   - Red: errors
//   - Bold: headers and labels
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	Red    = color.New(color.FgRed)
	Yellow = color.New(color.FgYellow)
	Green  = color.New(color.FgGreen)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
	Dim    = color.New(color.Faint)
)

// Out receives every message. Tests may replace it.
var Out io.Writer = color.Output

// InitColors disables colors when noColor is set. Call it right after
// parsing flags.
func InitColors(noColor bool) {
	color.NoColor = noColor
}

// SetOutput redirects messages to w and returns a function restoring the
// previous writer.
func SetOutput(w io.Writer) (restore func()) {
	prev := Out
	Out = w
	return func() { Out = prev }
}

func printLine(c *color.Color, prefix, msg string) {
	_, _ = c.Fprintln(Out, prefix+msg)
}

// Success prints "✓ msg" in green.
func Success(msg string) { printLine(Green, "✓ ", msg) }

// Successf is Success with formatting.
func Successf(format string, args ...any) { Success(fmt.Sprintf(format, args...)) }

// Warning prints "⚠ msg" in yellow.
func Warning(msg string) { printLine(Yellow, "⚠ ", msg) }

// Warningf is Warning with formatting.
func Warningf(format string, args ...any) { Warning(fmt.Sprintf(format, args...)) }

// Error prints "✗ msg" in red.
func Error(msg string) { printLine(Red, "✗ ", msg) }

// Errorf is Error with formatting.
func Errorf(format string, args ...any) { Error(fmt.Sprintf(format, args...)) }

// Info prints "ℹ msg" in cyan.
func Info(msg string) { printLine(Cyan, "ℹ ", msg) }

// Infof is Info with formatting.
func Infof(format string, args ...any) { Info(fmt.Sprintf(format, args...)) }

// Header prints text in bold, underlined with '='.
//
//	Database Statistics
//	===================
func Header(text string) {
	_, _ = Bold.Fprintln(Out, text)
	_, _ = fmt.Fprintln(Out, strings.Repeat("=", len([]rune(text))))
}

// SubHeader prints text in bold.
func SubHeader(text string) {
	_, _ = Bold.Fprintln(Out, text)
}

// Stat prints an indented "label: value" line, padding labels to width.
//
//	movies:          21349
func Stat(label string, width int, value any) {
	pad := width - len(label)
	if pad < 0 {
		pad = 0
	}
	_, _ = fmt.Fprintf(Out, "  %s:%s %s\n", label, strings.Repeat(" ", pad), Cyan.Sprint(value))
}

// Label returns text in bold for inline use.
func Label(text string) string {
	return Bold.Sprint(text)
}

// DimText returns text dimmed, for URIs and other details.
func DimText(text string) string {
	return Dim.Sprint(text)
}

// CountText returns count in cyan.
func CountText(count int64) string {
	return Cyan.Sprint(count)
}
