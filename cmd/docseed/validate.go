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

package main

import (
	"context"
	"fmt"

	"github.com/kraklabs/docseed/internal/errors"
	"github.com/kraklabs/docseed/internal/output"
	"github.com/kraklabs/docseed/internal/ui"
	"github.com/kraklabs/docseed/pkg/catalog"
	"github.com/kraklabs/docseed/pkg/schema"
)

// ValidateResult is the --json result of the validate command.
type ValidateResult struct {
	Config    string `json:"config"`
	Fixtures  string `json:"fixtures"`
	Products  int    `json:"products"`
	Customers int    `json:"customers"`
	Orders    int    `json:"orders"`
	Indexes   int    `json:"indexes"`
}

// runValidate executes the 'validate' command. It checks the configuration,
// the consistency of the sample data (order totals and references) and the
// index definitions without connecting to MongoDB.
func runValidate(_ context.Context, c *cli, args []string) error {
	fs := c.newFlagSet("validate", `Usage: docseed validate

Checks the configuration, the sample data and the index definitions
without connecting to MongoDB.

`)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if _, err := c.loadConfig(); err != nil {
		return err
	}
	ui.Success("Configuration is valid")

	fx := catalog.Seed()
	if err := catalog.Validate(fx); err != nil {
		return errors.NewInputError("Sample data is inconsistent", err.Error(), "Fix the fixtures so order totals and references match")
	}
	ui.Successf("Sample data is consistent (%d products, %d customers, %d orders)", len(fx.Products), len(fx.Customers), len(fx.Orders))

	indexes := schema.MovieIndexes()
	vec := schema.MoviesVectorIndex()
	if err := vec.Validate(); err != nil {
		return errors.NewInternalError("Invalid vector index definition", err.Error(), "", err)
	}
	ui.Successf("Index definitions are valid (%d standard, 1 vector)", len(indexes))

	if c.globals.JSON {
		return output.JSONTo(c.stdout, ValidateResult{
			Config:    "ok",
			Fixtures:  "ok",
			Products:  len(fx.Products),
			Customers: len(fx.Customers),
			Orders:    len(fx.Orders),
			Indexes:   len(indexes) + 1,
		})
	}
	for _, spec := range indexes {
		fmt.Fprintf(ui.Out, "  %s\n", ui.DimText(spec.String()))
	}
	return nil
}
