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

// Package catalog defines the records docseed writes and reads, and the fixed
// seed fixtures loaded into a fresh deployment.
//
// # Records
//
// Product, Customer and Order are the demo commerce records inserted into the
// seed database. Movie and EmbeddedMovie describe the subset of the movie sample
// collection that the embedding step reads and writes.
//
// BSON field names are fixed; agents and dashboards query these collections
// by them:
//
//	products:  product_id, name, category, description, price, stock, specs, tags
//	customers: customer_id, name, email, phone, address, join_date, loyalty_points
//	orders:    order_id, customer_id, order_date, status, items, total_amount, shipping_address
//
// # Fixtures
//
// Seed returns a fresh copy of the literal fixtures each time it is called:
//
//	fx := catalog.Seed()
//	fmt.Println(len(fx.Products), len(fx.Customers), len(fx.Orders)) // 5 3 3
//
// The fixtures are expected to be internally consistent (order totals match
// their line items, every referenced product and customer exists). Validate
// reports every violation; the bootstrapper only warns about them.
package catalog
