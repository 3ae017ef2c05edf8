package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coterran/internal/service"
)

type LeaderboardHandler struct {
	Svc *service.LeaderboardService
}

func (h *LeaderboardHandler) Register(r *gin.Engine) {
	r.GET("/api/leaderboard", h.leaderboard)
}

// @Summary Forecaster leaderboard ranked by mean Brier score
// @Tags leaderboard
// @Param limit query int false "max entries"
// @Success 200 {object} apiResponse
// @Router /api/leaderboard [get]
func (h *LeaderboardHandler) leaderboard(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "leaderboard service unavailable", nil)
		return
	}
	entries, err := h.Svc.Leaderboard(c.Request.Context(), parseIntQuery(c, "limit", 0))
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, entries, map[string]any{"count": len(entries)})
}
