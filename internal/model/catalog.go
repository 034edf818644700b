package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category groups products for browsing.
type Category struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Image       string             `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Product is a storefront listing owned by its author.
// Price and QuantityAvailable are non-negative; a product belongs to one or
// more categories and zero or more offers.
type Product struct {
	ID                primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Author            primitive.ObjectID   `json:"author" bson:"author"`
	Name              string               `json:"name" bson:"name"`
	Description       string               `json:"description" bson:"description"`
	Price             float64              `json:"price" bson:"price"`
	QuantityAvailable int                  `json:"quantityAvailable" bson:"quantityAvailable"`
	ImageURLs         []string             `json:"imageUrls" bson:"imageUrls"`
	Category          []primitive.ObjectID `json:"category" bson:"category"`
	Offers            []primitive.ObjectID `json:"offers" bson:"offers"`
	CreatedAt         time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Offer is a time-bounded discount window.
// DiscountPercentage lies in [0,100]; startDate/endDate ordering is not
// enforced by the data model.
type Offer struct {
	ID                 primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name               string             `json:"name" bson:"name"`
	Description        string             `json:"description,omitempty" bson:"description,omitempty"`
	Image              string             `json:"image" bson:"image"`
	DiscountPercentage float64            `json:"discountPercentage" bson:"discountPercentage"`
	StartDate          time.Time          `json:"startDate" bson:"startDate"`
	EndDate            time.Time          `json:"endDate" bson:"endDate"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Storefront is the aggregate payload of GET /api/store.
// Recommended is a placeholder — personalization was never implemented, the
// field is always an empty list.
type Storefront struct {
	Offers      []Offer    `json:"offers"`
	Recommended []Product  `json:"recommended"`
	Categories  []Category `json:"categories"`
	Popular     []Product  `json:"popular"`
}
