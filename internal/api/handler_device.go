package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ginxFromYt/ARDUINO-API/internal/store"
)

// GetPendingCommand handles GET /api/door/command?door_lock_id=: the
// device's poll. Responds 404 when the queue is empty so the embedded
// client can treat "nothing to do" as a cheap status code check.
func (h *Handler) GetPendingCommand(c *gin.Context) {
	lockID, err := strconv.ParseInt(c.Query("door_lock_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid door_lock_id"})
		return
	}

	cmd, err := h.store.NextPendingCommand(c.Request.Context(), lockID)
	if errors.Is(err, store.ErrNoPending) {
		c.JSON(http.StatusNotFound, gin.H{"message": "No pending command"})
		return
	}
	if err != nil {
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           cmd.ID,
		"door_lock_id": cmd.DoorLockID,
		"command":      cmd.Command,
	})
}

type updateStatusRequest struct {
	DoorLockID int64   `json:"door_lock_id" binding:"required"`
	Status     *string `json:"status" binding:"omitempty,oneof=locked unlocked"`
	CommandID  *int64  `json:"command_id"`
}

// UpdateStatus handles POST /api/door/status: the device reports its
// physical state and acknowledges the command it executed.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lock, err := h.store.UpdateLockStatus(c.Request.Context(), req.DoorLockID, store.StatusUpdate{
		Status:    req.Status,
		CommandID: req.CommandID,
	})
	if err != nil {
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, lock)
}

type validateRfidRequest struct {
	DoorLockID int64  `json:"door_lock_id" binding:"required"`
	UID        string `json:"uid" binding:"required"`
}

// ValidateRfid handles POST /api/door/validate-rfid: the device asks
// whether a presented card belongs to the lock's owner.
func (h *Handler) ValidateRfid(c *gin.Context) {
	var req validateRfidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	authorized, err := h.store.ValidateRfid(c.Request.Context(), req.DoorLockID, req.UID)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"authorized": authorized})
}
