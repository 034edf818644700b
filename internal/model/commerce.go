package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart maps a user to the products they intend to buy.
// No ownership restriction applies — any authenticated caller may mutate
// any cart under the current contract.
type Cart struct {
	ID        primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID   `json:"user" bson:"user"`
	Products  []primitive.ObjectID `json:"products" bson:"products"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Review is a per (product, user) rating with a free-form comment.
type Review struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Product   primitive.ObjectID `json:"product" bson:"product"`
	Rating    int                `json:"rating" bson:"rating"`
	Comment   string             `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}
