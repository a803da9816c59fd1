package handlers

import (
	"net/http"

	"yasn/models"

	"github.com/gin-gonic/gin"
)

// Username and Name are copied as sent; they are not re-read from the user.
type AddCommentRequest struct {
	PostID   string `json:"postId" form:"postId" binding:"required"`
	UserID   string `json:"userId" form:"userId" binding:"required"`
	Comment  string `json:"comment" form:"comment"`
	Username string `json:"username" form:"username"`
	Name     string `json:"name" form:"name"`
}

func (h *Handler) AddComment(c *gin.Context) {
	var req AddCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		h.badRequest(c, "addcomment", err)
		return
	}

	postID, err := parseObjectID(req.PostID, "postId")
	if err != nil {
		h.fail(c, "addcomment", err)
		return
	}
	userID, err := parseObjectID(req.UserID, "userId")
	if err != nil {
		h.fail(c, "addcomment", err)
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	comment := models.Comment{
		CommentBy: userID,
		Comment:   req.Comment,
		Username:  req.Username,
		Name:      req.Name,
	}
	if err := h.store.AddComment(ctx, postID, &comment); err != nil {
		h.fail(c, "addcomment", err)
		return
	}
	c.String(http.StatusOK, "success")
}
