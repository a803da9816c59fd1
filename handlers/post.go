package handlers

import (
	"context"
	"net/http"

	"yasn/middleware"
	"yasn/models"
	"yasn/utils"

	"github.com/gin-gonic/gin"
)

type CommentInput struct {
	CommentBy string `json:"commentBy"`
	Comment   string `json:"comment"`
	Username  string `json:"username"`
	Name      string `json:"name"`
}

type AddPostRequest struct {
	CurrentUserID string         `json:"currentUserId" form:"currentUserId"`
	ImageURL      string         `json:"imageUrl" form:"imageUrl"`
	VideoURL      string         `json:"videoUrl" form:"videoUrl"`
	Title         string         `json:"title" form:"title"`
	Description   string         `json:"description" form:"description"`
	Tags          []string       `json:"tags" form:"tags"`
	BracketTags   []string       `json:"-" form:"tags[]"`
	Comments      []CommentInput `json:"comments" form:"-"`
	LikesCount    int            `json:"likesCount" form:"likesCount"`
}

// Home lists posts newest first, optionally narrowed to one tag.
func (h *Handler) Home(c *gin.Context) {
	ctx, cancel := h.storeContext(c)
	defer cancel()

	posts, err := h.store.ListPosts(ctx, c.Query("tag"))
	if err != nil {
		h.fail(c, "home", err)
		return
	}
	if posts == nil {
		posts = []models.FeedPost{}
	}
	c.JSON(http.StatusOK, posts)
}

// AddPost creates a post for the acting user and links it from their profile.
func (h *Handler) AddPost(c *gin.Context) {
	var req AddPostRequest
	if err := c.ShouldBind(&req); err != nil {
		h.badRequest(c, "addpost", err)
		return
	}

	comments, err := buildComments(req.Comments)
	if err != nil {
		h.fail(c, "addpost", err)
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	creator, err := h.resolveActingUser(ctx, c, req.CurrentUserID)
	if err != nil {
		h.fail(c, "addpost", err)
		return
	}

	post := models.Post{
		Creator:      creator.ID,
		CreatorEmail: creator.Email,
		ImageURL:     req.ImageURL,
		VideoURL:     req.VideoURL,
		Title:        req.Title,
		Description:  req.Description,
		Tags:         formTags(req.Tags, req.BracketTags),
		Comments:     comments,
		Likes:        models.Likes{Count: req.LikesCount},
	}
	if err := h.store.CreatePostForUser(ctx, &post); err != nil {
		h.fail(c, "addpost", err)
		return
	}

	h.logger.Info("post created", "postId", post.ID.Hex(), "creator", creator.ID.Hex())
	c.String(http.StatusCreated, "successfully added post")
}

// resolveActingUser prefers an explicit id from the body, then the identity
// token, then the email query parameter.
func (h *Handler) resolveActingUser(ctx context.Context, c *gin.Context, currentUserID string) (*models.User, error) {
	if currentUserID == "" {
		currentUserID = c.GetString(middleware.UserIDKey)
	}
	if currentUserID != "" {
		id, err := parseObjectID(currentUserID, "currentUserId")
		if err != nil {
			return nil, err
		}
		return h.store.FindUserByID(ctx, id)
	}

	email := c.Query("email")
	if email == "" {
		return nil, utils.NewInvalidInputError("currentUserId or email is required")
	}
	return h.store.FindUserByEmail(ctx, email)
}

func buildComments(inputs []CommentInput) ([]models.Comment, error) {
	comments := make([]models.Comment, 0, len(inputs))
	for _, in := range inputs {
		by, err := parseObjectID(in.CommentBy, "commentBy")
		if err != nil {
			return nil, err
		}
		comments = append(comments, models.Comment{
			CommentBy: by,
			Comment:   in.Comment,
			Username:  in.Username,
			Name:      in.Name,
		})
	}
	return comments, nil
}
