package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"yasn/database"
	"yasn/models"
	"yasn/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore mirrors the MongoDB store's semantics in memory.
type fakeStore struct {
	mu    sync.Mutex
	users []models.User
	posts []models.Post
	clock time.Time

	// failWith, when set, is returned by every call.
	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeStore) seedUser(u models.User) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Posts == nil {
		u.Posts = []primitive.ObjectID{}
	}
	f.users = append(f.users, u)
	return u
}

func (f *fakeStore) user(id primitive.ObjectID) *models.User {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i]
		}
	}
	return nil
}

func (f *fakeStore) post(id primitive.ObjectID) *models.Post {
	for i := range f.posts {
		if f.posts[i].ID == id {
			return &f.posts[i]
		}
	}
	return nil
}

func (f *fakeStore) userSnapshot(id primitive.ObjectID) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneUser(*f.user(id))
}

func (f *fakeStore) postSnapshot(id primitive.ObjectID) models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clonePost(*f.post(id))
}

func cloneUser(u models.User) models.User {
	u.ClubsComm = append([]string{}, u.ClubsComm...)
	u.Posts = append([]primitive.ObjectID{}, u.Posts...)
	return u
}

func clonePost(p models.Post) models.Post {
	p.Tags = append([]string{}, p.Tags...)
	p.Comments = append([]models.Comment{}, p.Comments...)
	p.Likes.Likers = append([]primitive.ObjectID{}, p.Likes.Likers...)
	return p
}

func (f *fakeStore) findUsers(match func(models.User) bool) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	users := []models.User{}
	for _, u := range f.users {
		if match(u) {
			users = append(users, cloneUser(u))
		}
	}
	return users, nil
}

func (f *fakeStore) FindUsersByEmail(_ context.Context, email string) ([]models.User, error) {
	return f.findUsers(func(u models.User) bool { return u.Email == email })
}

func (f *fakeStore) FindUsersByUsername(_ context.Context, username string) ([]models.User, error) {
	return f.findUsers(func(u models.User) bool { return u.Username == username })
}

func (f *fakeStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := f.FindUsersByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, utils.NewUserNotFoundError(email)
	}
	return &users[0], nil
}

func (f *fakeStore) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	users, err := f.findUsers(func(u models.User) bool { return u.ID == id })
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, utils.NewUserNotFoundError(id.Hex())
	}
	return &users[0], nil
}

func (f *fakeStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	users, err := f.FindUsersByUsername(ctx, username)
	return len(users) > 0, err
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for _, u := range f.users {
		if u.Username == user.Username {
			return utils.NewUsernameTakenError()
		}
	}
	user.ID = primitive.NewObjectID()
	if user.Posts == nil {
		user.Posts = []primitive.ObjectID{}
	}
	f.users = append(f.users, cloneUser(*user))
	return nil
}

func (f *fakeStore) PopulatePosts(_ context.Context, users []models.User) ([]models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	byID := map[primitive.ObjectID]models.Post{}
	for _, p := range f.posts {
		byID[p.ID] = clonePost(p)
	}
	profiles := []models.UserProfile{}
	for _, u := range users {
		profiles = append(profiles, database.ExpandProfile(u, byID))
	}
	return profiles, nil
}

func (f *fakeStore) ListPosts(_ context.Context, tag string) ([]models.FeedPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	var feed []models.FeedPost
	for _, p := range f.posts {
		if tag != "" && !contains(p.Tags, tag) {
			continue
		}
		fp := models.FeedPost{Post: clonePost(p)}
		if u := f.user(p.Creator); u != nil {
			creator := cloneUser(*u)
			fp.Creator = &creator
		}
		feed = append(feed, fp)
	}
	sort.SliceStable(feed, func(i, j int) bool { return feed[i].Date.After(feed[j].Date) })
	return feed, nil
}

func (f *fakeStore) CreatePostForUser(_ context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	u := f.user(post.Creator)
	if u == nil {
		return utils.NewUserNotFoundError(post.Creator.Hex())
	}
	post.ID = primitive.NewObjectID()
	f.clock = f.clock.Add(time.Minute)
	post.Date = f.clock
	if post.Tags == nil {
		post.Tags = []string{}
	}
	for i := range post.Comments {
		post.Comments[i].ID = primitive.NewObjectID()
	}
	f.posts = append(f.posts, clonePost(*post))
	u.Posts = addToSet(u.Posts, post.ID)
	return nil
}

func (f *fakeStore) SetLike(_ context.Context, postID, userID primitive.ObjectID, liked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	p := f.post(postID)
	if p == nil {
		return utils.NewPostNotFoundError(postID.Hex())
	}
	if liked {
		p.Likes.Likers = addToSet(p.Likes.Likers, userID)
		return nil
	}
	kept := []primitive.ObjectID{}
	for _, id := range p.Likes.Likers {
		if id != userID {
			kept = append(kept, id)
		}
	}
	p.Likes.Likers = kept
	return nil
}

func (f *fakeStore) AddComment(_ context.Context, postID primitive.ObjectID, comment *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	p := f.post(postID)
	if p == nil {
		return utils.NewPostNotFoundError(postID.Hex())
	}
	comment.ID = primitive.NewObjectID()
	p.Comments = append(p.Comments, *comment)
	return nil
}

func addToSet(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
