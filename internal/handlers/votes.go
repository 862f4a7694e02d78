package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/apperr"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/middleware"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/models"
)

type VoteHandler struct {
	responder
	votes VoteService
}

type castVoteRequest struct {
	EntityType string `json:"entity_type" binding:"required"`
	EntityID   string `json:"entity_id" binding:"required"`
	VoteType   string `json:"vote_type" binding:"required"`
}

// CastVote handles POST /api/votes
func (h *VoteHandler) CastVote(c *gin.Context) {
	var input castVoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, apperr.InvalidArgument(err.Error()))
		return
	}

	target, err := models.NewTarget(input.EntityType, input.EntityID)
	if err != nil {
		h.fail(c, apperr.InvalidArgument(err.Error()))
		return
	}

	result, err := h.votes.Cast(c.Request.Context(), middleware.UserID(c), target, models.VoteType(input.VoteType))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RemoveVote handles DELETE /api/votes/:entityType/:entityId
func (h *VoteHandler) RemoveVote(c *gin.Context) {
	target, ok := h.target(c)
	if !ok {
		return
	}

	counts, err := h.votes.Remove(c.Request.Context(), middleware.UserID(c), target)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// GetCounts handles GET /api/votes/:entityType/:entityId
func (h *VoteHandler) GetCounts(c *gin.Context) {
	target, ok := h.target(c)
	if !ok {
		return
	}

	counts, err := h.votes.Counts(c.Request.Context(), target)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *VoteHandler) GetStats(c *gin.Context) {
	target, ok := h.target(c)
	if !ok {
		return
	}

	detail, err := h.votes.Stats(c.Request.Context(), target)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetMyVote returns {"user_vote": null} when the caller has not voted.
func (h *VoteHandler) GetMyVote(c *gin.Context) {
	target, ok := h.target(c)
	if !ok {
		return
	}

	vote, err := h.votes.UserVote(c.Request.Context(), middleware.UserID(c), target)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_vote": vote})
}

func (h *VoteHandler) target(c *gin.Context) (models.Target, bool) {
	target, err := models.NewTarget(c.Param("entityType"), c.Param("entityId"))
	if err != nil {
		h.fail(c, apperr.InvalidArgument(err.Error()))
		return models.Target{}, false
	}
	return target, true
}
