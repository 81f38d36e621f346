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
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Product is a sellable item in the products collection.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ProductID   string             `bson:"product_id" json:"product_id"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Stock       int                `bson:"stock" json:"stock"`
	Specs       Specs              `bson:"specs" json:"specs"`
	Tags        []string           `bson:"tags" json:"tags"`
}

// Address is a postal address embedded in customers and orders.
type Address struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	Zip     string `bson:"zip" json:"zip"`
	Country string `bson:"country" json:"country"`
}

// Customer is a registered buyer in the customers collection.
type Customer struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CustomerID    string             `bson:"customer_id" json:"customer_id"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	Phone         string             `bson:"phone" json:"phone"`
	Address       Address            `bson:"address" json:"address"`
	JoinDate      time.Time          `bson:"join_date" json:"join_date"`
	LoyaltyPoints int                `bson:"loyalty_points" json:"loyalty_points"`
}

// LineItem is one product line of an order. Price is the unit price.
type LineItem struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	Price     float64 `bson:"price" json:"price"`
}

// Order is a purchase in the orders collection.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderID         string             `bson:"order_id" json:"order_id"`
	CustomerID      string             `bson:"customer_id" json:"customer_id"`
	OrderDate       time.Time          `bson:"order_date" json:"order_date"`
	Status          OrderStatus        `bson:"status" json:"status"`
	Items           []LineItem         `bson:"items" json:"items"`
	TotalAmount     float64            `bson:"total_amount" json:"total_amount"`
	ShippingAddress Address            `bson:"shipping_address" json:"shipping_address"`
}

// ItemsTotal returns the sum of quantity x unit price over all line items,
// rounded to cents.
func (o Order) ItemsTotal() float64 {
	var cents int64
	for _, it := range o.Items {
		cents += int64(it.Quantity) * toCents(it.Price)
	}
	return float64(cents) / 100
}

// TotalMatchesItems reports whether TotalAmount equals ItemsTotal at cent precision.
func (o Order) TotalMatchesItems() bool {
	return toCents(o.TotalAmount) == toCents(o.ItemsTotal())
}

func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// Movie is the part of a sample_mflix movie the embedding step reads.
type Movie struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Plot      string             `bson:"plot"`
	Year      any                `bson:"year,omitempty"`
	Genres    []string           `bson:"genres,omitempty"`
	Cast      []string           `bson:"cast,omitempty"`
	Directors []string           `bson:"directors,omitempty"`
}

// EmbeddedMovie is a movie copied into the embeddings collection together with
// the vector computed from its plot.
type EmbeddedMovie struct {
	ID            primitive.ObjectID `bson:"_id"`
	Title         string             `bson:"title"`
	Plot          string             `bson:"plot"`
	Year          any                `bson:"year"`
	Genres        []string           `bson:"genres"`
	Cast          []string           `bson:"cast"`
	Directors     []string           `bson:"directors"`
	PlotEmbedding []float32          `bson:"plot_embedding"`
}

// NewEmbeddedMovie copies m and attaches embedding. Missing list fields are
// stored as empty arrays rather than null.
func NewEmbeddedMovie(m Movie, embedding []float32) EmbeddedMovie {
	return EmbeddedMovie{
		ID:            m.ID,
		Title:         m.Title,
		Plot:          m.Plot,
		Year:          m.Year,
		Genres:        nonNil(m.Genres),
		Cast:          nonNil(m.Cast),
		Directors:     nonNil(m.Directors),
		PlotEmbedding: embedding,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
