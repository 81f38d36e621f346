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

import "time"

// Fixtures is the full set of seed documents, grouped by collection.
type Fixtures struct {
	Products  []Product
	Customers []Customer
	Orders    []Order
}

// Seed returns the demo fixtures. Each call builds new slices, so callers may
// modify the result freely.
func Seed() Fixtures {
	return Fixtures{
		Products:  seedProducts(),
		Customers: seedCustomers(),
		Orders:    seedOrders(),
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

var (
	addrAlice = Address{Street: "123 Main St", City: "San Francisco", State: "CA", Zip: "94102", Country: "USA"}
	addrBob   = Address{Street: "456 Oak Ave", City: "New York", State: "NY", Zip: "10001", Country: "USA"}
	addrCarol = Address{Street: "789 Pine Rd", City: "Austin", State: "TX", Zip: "73301", Country: "USA"}
)

func seedProducts() []Product {
	return []Product{
		{
			ProductID:   "PROD001",
			Name:        "Laptop Pro 15",
			Category:    "Electronics",
			Description: "High-performance laptop with 15-inch display, 16GB RAM, and 512GB SSD. Perfect for developers and content creators.",
			Price:       1299.99,
			Stock:       45,
			Specs: Specs{
				{"brand", "TechCorp"},
				{"processor", "Intel i7"},
				{"ram", "16GB"},
				{"storage", "512GB SSD"},
				{"display", "15.6 inch Full HD"},
			},
			Tags: []string{"laptop", "electronics", "computers", "work"},
		},
		{
			ProductID:   "PROD002",
			Name:        "Wireless Mouse",
			Category:    "Accessories",
			Description: "Ergonomic wireless mouse with precision tracking and long battery life. Compatible with all major operating systems.",
			Price:       29.99,
			Stock:       150,
			Specs: Specs{
				{"brand", "TechCorp"},
				{"type", "Wireless"},
				{"dpi", "2400"},
				{"battery_life", "12 months"},
			},
			Tags: []string{"mouse", "accessories", "wireless", "ergonomic"},
		},
		{
			ProductID:   "PROD003",
			Name:        `4K Monitor 27"`,
			Category:    "Electronics",
			Description: "Ultra HD 4K monitor with IPS panel, HDR support, and built-in speakers. Ideal for graphic design and video editing.",
			Price:       449.99,
			Stock:       32,
			Specs: Specs{
				{"brand", "DisplayMax"},
				{"resolution", "3840x2160"},
				{"panel_type", "IPS"},
				{"refresh_rate", "60Hz"},
				{"size", "27 inch"},
			},
			Tags: []string{"monitor", "display", "4k", "electronics"},
		},
		{
			ProductID:   "PROD004",
			Name:        "Mechanical Keyboard",
			Category:    "Accessories",
			Description: "RGB mechanical keyboard with customizable switches and programmable keys. Features aluminum frame and USB-C connection.",
			Price:       159.99,
			Stock:       78,
			Specs: Specs{
				{"brand", "KeyMaster"},
				{"switch_type", "Cherry MX Blue"},
				{"backlight", "RGB"},
				{"connection", "USB-C"},
			},
			Tags: []string{"keyboard", "mechanical", "gaming", "rgb"},
		},
		{
			ProductID:   "PROD005",
			Name:        "USB-C Hub",
			Category:    "Accessories",
			Description: "Multi-port USB-C hub with HDMI, USB 3.0, SD card reader, and power delivery. Perfect for modern laptops.",
			Price:       49.99,
			Stock:       200,
			Specs: Specs{
				{"brand", "ConnectPlus"},
				{"ports", "7-in-1"},
				{"hdmi_support", "4K@30Hz"},
				{"power_delivery", "100W"},
			},
			Tags: []string{"hub", "usb-c", "adapter", "accessories"},
		},
	}
}

func seedCustomers() []Customer {
	return []Customer{
		{
			CustomerID:    "CUST001",
			Name:          "Alice Johnson",
			Email:         "alice.johnson@example.com",
			Phone:         "+1-555-0101",
			Address:       addrAlice,
			JoinDate:      day(2024, time.January, 15),
			LoyaltyPoints: 350,
		},
		{
			CustomerID:    "CUST002",
			Name:          "Bob Smith",
			Email:         "bob.smith@example.com",
			Phone:         "+1-555-0102",
			Address:       addrBob,
			JoinDate:      day(2024, time.March, 22),
			LoyaltyPoints: 120,
		},
		{
			CustomerID:    "CUST003",
			Name:          "Carol White",
			Email:         "carol.white@example.com",
			Phone:         "+1-555-0103",
			Address:       addrCarol,
			JoinDate:      day(2023, time.November, 5),
			LoyaltyPoints: 580,
		},
	}
}

func seedOrders() []Order {
	return []Order{
		{
			OrderID:    "ORD001",
			CustomerID: "CUST001",
			OrderDate:  day(2024, time.December, 1),
			Status:     OrderStatusDelivered,
			Items: []LineItem{
				{ProductID: "PROD001", Quantity: 1, Price: 1299.99},
				{ProductID: "PROD002", Quantity: 1, Price: 29.99},
			},
			TotalAmount:     1329.98,
			ShippingAddress: addrAlice,
		},
		{
			OrderID:    "ORD002",
			CustomerID: "CUST002",
			OrderDate:  day(2024, time.December, 15),
			Status:     OrderStatusShipped,
			Items: []LineItem{
				{ProductID: "PROD003", Quantity: 1, Price: 449.99},
				{ProductID: "PROD004", Quantity: 1, Price: 159.99},
			},
			TotalAmount:     609.98,
			ShippingAddress: addrBob,
		},
		{
			OrderID:    "ORD003",
			CustomerID: "CUST003",
			OrderDate:  day(2025, time.January, 10),
			Status:     OrderStatusProcessing,
			Items: []LineItem{
				{ProductID: "PROD005", Quantity: 2, Price: 49.99},
				{ProductID: "PROD002", Quantity: 1, Price: 29.99},
			},
			TotalAmount:     129.97,
			ShippingAddress: addrCarol,
		},
	}
}

// ProductDocs returns the products as insertable documents.
func (f Fixtures) ProductDocs() []any {
	docs := make([]any, len(f.Products))
	for i := range f.Products {
		docs[i] = f.Products[i]
	}
	return docs
}

// CustomerDocs returns the customers as insertable documents.
func (f Fixtures) CustomerDocs() []any {
	docs := make([]any, len(f.Customers))
	for i := range f.Customers {
		docs[i] = f.Customers[i]
	}
	return docs
}

// OrderDocs returns the orders as insertable documents.
func (f Fixtures) OrderDocs() []any {
	docs := make([]any, len(f.Orders))
	for i := range f.Orders {
		docs[i] = f.Orders[i]
	}
	return docs
}
