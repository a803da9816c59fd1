package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Username string             `bson:"username" json:"username"`

	// Profile fields
	Bio         string `bson:"bio" json:"bio"`
	GitHubURL   string `bson:"gitHubUrl" json:"gitHubUrl"`
	LinkedInURL string `bson:"linkedInUrl" json:"linkedInUrl"`
	InstaURL    string `bson:"instaUrl" json:"instaUrl"`

	ClubsComm   []string `bson:"clubsComm" json:"clubsComm"`
	ClubsNumber int      `bson:"clubsNumber" json:"clubsNumber"` // set at creation, not resynced

	Posts []primitive.ObjectID `bson:"posts" json:"posts"`
}

// UserProfile is a User with its post references expanded.
type UserProfile struct {
	User
	Posts []Post `json:"posts"`
}
