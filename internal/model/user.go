// Package model defines the documents stored in MongoDB.
//
// Every struct carries both bson tags (how the document is stored) and json
// tags (how it appears on the wire). The two deliberately match the field
// names the mobile client already depends on, so renaming a Go field never
// changes the API.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered profile.
//
// WHY A SEPARATE UID FIELD?
// Authentication is delegated to an external identity provider, so the
// primary external identifier is the provider's uid (a string claim). We
// still use Mongo's ObjectID as the document key — follow/like edges
// reference users by ObjectID, not by uid. Unique indexes on uid and email
// guarantee one provider account maps to exactly one profile.
type User struct {
	ID        primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	UID       string               `json:"uid" bson:"uid"`
	Email     string               `json:"email" bson:"email"`
	Name      string               `json:"name,omitempty" bson:"name,omitempty"`
	Picture   string               `json:"picture,omitempty" bson:"picture,omitempty"`
	Followers []primitive.ObjectID `json:"followers" bson:"followers"`
	Following []primitive.ObjectID `json:"following" bson:"following"`
	Address   *Address             `json:"address,omitempty" bson:"address,omitempty"`
	Phone     string               `json:"phone,omitempty" bson:"phone,omitempty"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Address is the postal substructure embedded in a User document.
type Address struct {
	City        string      `json:"city,omitempty" bson:"city,omitempty"`
	Street      string      `json:"street,omitempty" bson:"street,omitempty"`
	Number      int         `json:"number,omitempty" bson:"number,omitempty"`
	Zipcode     string      `json:"zipcode,omitempty" bson:"zipcode,omitempty"`
	Geolocation *Geolocation `json:"geolocation,omitempty" bson:"geolocation,omitempty"`
}

// Geolocation keeps lat/long as strings, matching what the client submits.
type Geolocation struct {
	Lat  string `json:"lat,omitempty" bson:"lat,omitempty"`
	Long string `json:"long,omitempty" bson:"long,omitempty"`
}

// Following is an edge document: "User follows Following".
//
// The edge lives in its own collection, separate from the users it links.
// At most one edge exists per ordered (user, following) pair — enforced by a
// unique compound index. Absence of an edge means not-following.
type Following struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Following primitive.ObjectID `json:"following" bson:"following"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
