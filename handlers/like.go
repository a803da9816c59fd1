package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HandleLikeRequest struct {
	CurrentUserID string `json:"currentUserId" form:"currentUserId" binding:"required"`
	Liked         bool   `json:"liked" form:"liked"`
}

// HandleLike adds (liked=true) or removes the acting user from the post's likers.
func (h *Handler) HandleLike(c *gin.Context) {
	postID, err := parseObjectID(c.Query("_id"), "_id")
	if err != nil {
		h.fail(c, "handlelike", err)
		return
	}

	var req HandleLikeRequest
	if err := c.ShouldBind(&req); err != nil {
		h.badRequest(c, "handlelike", err)
		return
	}
	userID, err := parseObjectID(req.CurrentUserID, "currentUserId")
	if err != nil {
		h.fail(c, "handlelike", err)
		return
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	if err := h.store.SetLike(ctx, postID, userID, req.Liked); err != nil {
		h.fail(c, "handlelike", err)
		return
	}
	c.String(http.StatusOK, "success")
}
