package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"yasn/models"
	"yasn/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultTimeout = 10 * time.Second

// Store is the document-store surface the handlers need.
type Store interface {
	FindUsersByEmail(ctx context.Context, email string) ([]models.User, error)
	FindUsersByUsername(ctx context.Context, username string) ([]models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) error
	PopulatePosts(ctx context.Context, users []models.User) ([]models.UserProfile, error)

	ListPosts(ctx context.Context, tag string) ([]models.FeedPost, error)
	CreatePostForUser(ctx context.Context, post *models.Post) error
	SetLike(ctx context.Context, postID, userID primitive.ObjectID, liked bool) error
	AddComment(ctx context.Context, postID primitive.ObjectID, comment *models.Comment) error
}

type Handler struct {
	store   Store
	logger  *slog.Logger
	timeout time.Duration
}

func New(store Store, logger *slog.Logger, timeout time.Duration) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Handler{store: store, logger: logger, timeout: timeout}
}

// Register mounts every application route.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/checkprofile", h.CheckProfile)
	r.POST("/adduser", h.AddUser)
	r.GET("/profile", h.Profile)
	r.GET("/username", h.ProfileByUsername)
	r.GET("/home", h.Home)
	r.POST("/addpost", h.AddPost)
	r.POST("/handlelike", h.HandleLike)
	r.POST("/addcomment", h.AddComment)
	r.GET("/", h.SessionStatus)
}

func (h *Handler) storeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// fail logs err and writes its mapped status with a JSON error body.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	status := utils.HTTPStatus(err)

	message := "Database error"
	var appErr *utils.AppError
	if errors.As(err, &appErr) && status != http.StatusInternalServerError {
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", "error", err, "status", status)
	} else {
		h.logger.Warn(op+" rejected", "error", err, "status", status)
	}
	c.JSON(status, gin.H{"error": message})
}

// badRequest reports a binding error, which never carries an AppError.
func (h *Handler) badRequest(c *gin.Context, op string, err error) {
	h.fail(c, op, utils.NewInvalidInputError(err.Error()))
}

// formTags joins the plain and bracketed ("tags[]") form keys; never nil.
func formTags(plain, bracketed []string) []string {
	tags := make([]string, 0, len(plain)+len(bracketed))
	tags = append(tags, plain...)
	return append(tags, bracketed...)
}

func parseObjectID(raw, field string) (primitive.ObjectID, error) {
	if raw == "" {
		return primitive.NilObjectID, utils.NewInvalidInputError(field + " is required")
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, utils.NewInvalidInputError(field + " is not a valid id")
	}
	return id, nil
}
