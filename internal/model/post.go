package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a feed entry, optionally a buy-sell listing with priced items.
//
// Likes is an array of Like edge IDs, not a count. The count and the
// per-viewer "liked by me" flag are computed at read time (see PostView).
type Post struct {
	ID          primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Author      primitive.ObjectID   `json:"author" bson:"author"`
	Description string               `json:"description" bson:"description"`
	Images      []string             `json:"images" bson:"images"`
	Items       []Item               `json:"items" bson:"items"`
	IsBuySell   bool                 `json:"isBuySell" bson:"isBuySell"`
	Likes       []primitive.ObjectID `json:"likes" bson:"likes"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Item is one sellable entry inside a buy-sell post.
type Item struct {
	Name        string  `json:"name" bson:"name"`
	Description string  `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64 `json:"price" bson:"price"`
}

// Like is an edge document: "User likes Post".
// Unique per (post, user) — the compound index in the store is the source of
// truth; handler pre-checks are advisory only.
type Like struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Post      primitive.ObjectID `json:"post" bson:"post"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// PostView is the feed projection of a post: the author document resolved
// in place of its ID, plus the computed like fields.
type PostView struct {
	ID                   primitive.ObjectID `json:"_id"`
	Author               *User              `json:"author"`
	Description          string             `json:"description"`
	Images               []string           `json:"images"`
	Items                []Item             `json:"items"`
	IsBuySell            bool               `json:"isBuySell"`
	LikeCount            int                `json:"likeCount"`
	IsLikedByCurrentUser bool               `json:"isLikedByCurrentUser"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}
