package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Creator      primitive.ObjectID `bson:"creator" json:"creator"`
	CreatorEmail string             `bson:"creatorEmail" json:"creatorEmail"`
	ImageURL     string             `bson:"imageUrl" json:"imageUrl"`
	VideoURL     string             `bson:"videoUrl" json:"videoUrl"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Tags         []string           `bson:"tags" json:"tags"`
	Comments     []Comment          `bson:"comments" json:"comments"`
	Likes        Likes              `bson:"likes" json:"likes"`
	Date         time.Time          `bson:"date" json:"date"`
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CommentBy primitive.ObjectID `bson:"commentBy" json:"commentBy"`
	Comment   string             `bson:"comment" json:"comment"`
	Username  string             `bson:"username" json:"username"`
	Name      string             `bson:"name" json:"name"`
}

type Likes struct {
	Count  int                  `bson:"count" json:"count"` // set at creation only
	Likers []primitive.ObjectID `bson:"likers" json:"likers"`
}

// FeedPost is a Post with its creator expanded. Creator is nil when the
// referenced user no longer exists. In JSON it shadows Post.Creator.
type FeedPost struct {
	Post    `bson:",inline"`
	Creator *User `bson:"creatorUser" json:"creator"`
}
