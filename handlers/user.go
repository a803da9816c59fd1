package handlers

import (
	"context"
	"net/http"

	"yasn/models"
	"yasn/utils"

	"github.com/gin-gonic/gin"
)

type AddUserRequest struct {
	Name        string   `json:"name" form:"name"`
	Email       string   `json:"email" form:"email" binding:"required"`
	Username    string   `json:"username" form:"username" binding:"required"`
	Tags        []string `json:"tags" form:"tags"`
	BracketTags []string `json:"-" form:"tags[]"`
	Bio         string   `json:"bio" form:"bio"`
	GitHubURL   string   `json:"gitHubUrl" form:"gitHubUrl"`
	LinkedInURL string   `json:"linkedInUrl" form:"linkedInUrl"`
	InstaURL    string   `json:"instaUrl" form:"instaUrl"`
}

// CheckProfile answers whether any user has the given email: the users, or false.
func (h *Handler) CheckProfile(c *gin.Context) {
	ctx, cancel := h.storeContext(c)
	defer cancel()

	users, err := h.store.FindUsersByEmail(ctx, c.Query("email"))
	if err != nil {
		h.fail(c, "checkprofile", err)
		return
	}
	if len(users) == 0 {
		c.JSON(http.StatusOK, false)
		return
	}
	c.JSON(http.StatusOK, users)
}

// AddUser creates a profile. The username check and the insert are both
// awaited; the unique index catches a concurrent duplicate.
func (h *Handler) AddUser(c *gin.Context) {
	var req AddUserRequest
	if err := c.ShouldBind(&req); err != nil {
		h.badRequest(c, "adduser", err)
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	taken, err := h.store.UsernameTaken(ctx, req.Username)
	if err != nil {
		h.fail(c, "adduser", err)
		return
	}
	if taken {
		h.fail(c, "adduser", utils.NewUsernameTakenError())
		return
	}

	tags := formTags(req.Tags, req.BracketTags)
	user := models.User{
		Name:        req.Name,
		Email:       req.Email,
		Username:    req.Username,
		Bio:         req.Bio,
		GitHubURL:   req.GitHubURL,
		LinkedInURL: req.LinkedInURL,
		InstaURL:    req.InstaURL,
		ClubsComm:   tags,
		ClubsNumber: len(tags),
	}
	if err := h.store.CreateUser(ctx, &user); err != nil {
		h.fail(c, "adduser", err)
		return
	}

	h.logger.Info("user created", "userId", user.ID.Hex(), "username", user.Username)
	c.String(http.StatusCreated, "success")
}

func (h *Handler) Profile(c *gin.Context) {
	h.profileBy(c, "profile", h.store.FindUsersByEmail, c.Query("email"))
}

func (h *Handler) ProfileByUsername(c *gin.Context) {
	h.profileBy(c, "username", h.store.FindUsersByUsername, c.Query("username"))
}

type userFinder func(ctx context.Context, key string) ([]models.User, error)

func (h *Handler) profileBy(c *gin.Context, op string, find userFinder, key string) {
	ctx, cancel := h.storeContext(c)
	defer cancel()

	users, err := find(ctx, key)
	if err != nil {
		h.fail(c, op, err)
		return
	}
	if len(users) == 0 {
		c.JSON(http.StatusOK, false)
		return
	}

	profiles, err := h.store.PopulatePosts(ctx, users)
	if err != nil {
		h.fail(c, op, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}
