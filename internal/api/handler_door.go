package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ginxFromYt/ARDUINO-API/internal/store"
)

type sendCommandRequest struct {
	DoorLockID int64  `json:"door_lock_id" binding:"required"`
	Command    string `json:"command" binding:"required,oneof=lock unlock status"`
}

// SendCommand handles POST /api/door/command: an authenticated actor
// queues a command for their lock.
func (h *Handler) SendCommand(c *gin.Context) {
	var req sendCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	cmd, err := h.store.SubmitCommand(c.Request.Context(), user.ID, req.DoorLockID, req.Command)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cmd)
}

// GetLockStatus handles GET /api/door/status?door_lock_id= for actors.
func (h *Handler) GetLockStatus(c *gin.Context) {
	lockID, err := strconv.ParseInt(c.Query("door_lock_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid door_lock_id"})
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	lock, err := h.store.GetLock(c.Request.Context(), lockID)
	if err != nil {
		abortStoreError(c, err)
		return
	}
	if lock.UserID != user.ID {
		abortStoreError(c, store.ErrNotOwned)
		return
	}

	c.JSON(http.StatusOK, lock)
}
