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
	"errors"
	"fmt"
)

// ErrInconsistentFixtures is wrapped by every error returned from Validate.
var ErrInconsistentFixtures = errors.New("inconsistent fixtures")

// Validate checks the cross-record invariants of the fixtures: unique natural
// IDs, non-negative stock and loyalty points, known order statuses, order
// totals that match their line items, and references to existing products
// and customers. All violations are reported, joined into one error.
func Validate(f Fixtures) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInconsistentFixtures, fmt.Sprintf(format, args...)))
	}

	products := make(map[string]struct{}, len(f.Products))
	for _, p := range f.Products {
		if _, dup := products[p.ProductID]; dup {
			fail("duplicate product_id %s", p.ProductID)
		}
		products[p.ProductID] = struct{}{}
		if p.Stock < 0 {
			fail("product %s has negative stock %d", p.ProductID, p.Stock)
		}
	}

	customers := make(map[string]struct{}, len(f.Customers))
	for _, c := range f.Customers {
		if _, dup := customers[c.CustomerID]; dup {
			fail("duplicate customer_id %s", c.CustomerID)
		}
		customers[c.CustomerID] = struct{}{}
		if c.LoyaltyPoints < 0 {
			fail("customer %s has negative loyalty_points %d", c.CustomerID, c.LoyaltyPoints)
		}
	}

	orders := make(map[string]struct{}, len(f.Orders))
	for _, o := range f.Orders {
		if _, dup := orders[o.OrderID]; dup {
			fail("duplicate order_id %s", o.OrderID)
		}
		orders[o.OrderID] = struct{}{}
		if !o.Status.Valid() {
			fail("order %s has unknown status %q", o.OrderID, o.Status)
		}
		if _, ok := customers[o.CustomerID]; !ok {
			fail("order %s references unknown customer %s", o.OrderID, o.CustomerID)
		}
		for _, it := range o.Items {
			if _, ok := products[it.ProductID]; !ok {
				fail("order %s references unknown product %s", o.OrderID, it.ProductID)
			}
		}
		if !o.TotalMatchesItems() {
			fail("order %s total_amount %.2f does not match items total %.2f", o.OrderID, o.TotalAmount, o.ItemsTotal())
		}
	}

	return errors.Join(errs...)
}
