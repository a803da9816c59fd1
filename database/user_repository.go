package database

import (
	"context"

	"yasn/models"
	"yasn/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindUsersByEmail returns every user with the exact email. Email is a
// lookup key, not a unique one.
func (m *MongoDB) FindUsersByEmail(ctx context.Context, email string) ([]models.User, error) {
	return m.findUsers(ctx, bson.M{"email": email})
}

func (m *MongoDB) FindUsersByUsername(ctx context.Context, username string) ([]models.User, error) {
	return m.findUsers(ctx, bson.M{"username": username})
}

func (m *MongoDB) findUsers(ctx context.Context, filter bson.M) ([]models.User, error) {
	cursor, err := m.Users.Find(ctx, filter)
	if err != nil {
		return nil, utils.NewDatabaseError("failed to query users", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, utils.NewDatabaseError("failed to decode users", err)
	}
	return users, nil
}

func (m *MongoDB) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"email": email}, email)
}

func (m *MongoDB) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return m.findUser(ctx, bson.M{"_id": id}, id.Hex())
}

func (m *MongoDB) findUser(ctx context.Context, filter bson.M, key string) (*models.User, error) {
	var user models.User
	err := m.Users.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewUserNotFoundError(key)
	}
	if err != nil {
		return nil, utils.NewDatabaseError("failed to fetch user", err)
	}
	return &user, nil
}

func (m *MongoDB) UsernameTaken(ctx context.Context, username string) (bool, error) {
	count, err := m.Users.CountDocuments(ctx, bson.M{"username": username}, options.Count().SetLimit(1))
	if err != nil {
		return false, utils.NewDatabaseError("failed to check username", err)
	}
	return count > 0, nil
}

// CreateUser inserts the user, assigning a fresh id. A unique-index
// violation on username surfaces as USERNAME_TAKEN.
func (m *MongoDB) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.ClubsComm == nil {
		user.ClubsComm = []string{}
	}
	if user.Posts == nil {
		user.Posts = []primitive.ObjectID{}
	}

	_, err := m.Users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return utils.NewUsernameTakenError()
	}
	if err != nil {
		return utils.NewDatabaseError("failed to create user", err)
	}
	return nil
}

// PopulatePosts expands each user's post references, keeping the order of
// the user's posts array and dropping ids that no longer resolve.
func (m *MongoDB) PopulatePosts(ctx context.Context, users []models.User) ([]models.UserProfile, error) {
	var ids []primitive.ObjectID
	for _, u := range users {
		ids = append(ids, u.Posts...)
	}

	byID := map[primitive.ObjectID]models.Post{}
	if len(ids) > 0 {
		posts, err := m.FindPostsByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			byID[p.ID] = p
		}
	}

	profiles := make([]models.UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, ExpandProfile(u, byID))
	}
	return profiles, nil
}

// ExpandProfile builds a UserProfile from a user and an id→post lookup.
func ExpandProfile(u models.User, byID map[primitive.ObjectID]models.Post) models.UserProfile {
	expanded := make([]models.Post, 0, len(u.Posts))
	for _, id := range u.Posts {
		if p, ok := byID[id]; ok {
			expanded = append(expanded, p)
		}
	}
	return models.UserProfile{User: u, Posts: expanded}
}
