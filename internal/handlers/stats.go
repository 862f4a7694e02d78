package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/apperr"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/identity"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/middleware"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/models"
)

const maxBatchUsers = 100

type StatsHandler struct {
	responder
	stats    StatsService
	profiles ProfileLookup
}

type userStatsResponse struct {
	models.UserStats
	Profile *identity.Profile `json:"profile,omitempty"`
}

// RecalculateMine handles POST /api/stats/me/recalculate
func (h *StatsHandler) RecalculateMine(c *gin.Context) {
	row, err := h.stats.RecalculateOne(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// RecalculateAll handles POST /api/admin/stats/recalculate
func (h *StatsHandler) RecalculateAll(c *gin.Context) {
	n, err := h.stats.RecalculateAll(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated_count": n})
}

// GetUserStats returns a user's stats, creating them on first read, plus
// their display profile when one can be found.
func (h *StatsHandler) GetUserStats(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("id")

	row, err := h.stats.Get(ctx, userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := userStatsResponse{UserStats: *row}
	if h.profiles != nil {
		if p, ok := h.profiles.Lookup(ctx, userID); ok {
			resp.Profile = &p
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ListStats handles GET /api/stats?user_ids=a,b,c
func (h *StatsHandler) ListStats(c *gin.Context) {
	var ids []string
	for _, id := range strings.Split(c.Query("user_ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		h.fail(c, apperr.InvalidArgument("user_ids is required"))
		return
	}
	if len(ids) > maxBatchUsers {
		h.fail(c, apperr.InvalidArgument(fmt.Sprintf("at most %d user ids per request", maxBatchUsers)))
		return
	}

	rows, err := h.stats.List(c.Request.Context(), ids)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
