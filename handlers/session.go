package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionStartedKey = "startedAt"

// SessionStatus reports whether the request came with a session cookie,
// starting one if it did not.
func (h *Handler) SessionStatus(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get(sessionStartedKey) != nil {
		c.JSON(http.StatusOK, gin.H{"status": "session cookie set"})
		return
	}

	session.Set(sessionStartedKey, time.Now().Unix())
	if err := session.Save(); err != nil {
		h.fail(c, "session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "session cookie not set"})
}
