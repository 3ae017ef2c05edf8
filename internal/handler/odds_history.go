package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"coterran/internal/repository"
)

type OddsHistoryHandler struct {
	Repo repository.Repository
}

func (h *OddsHistoryHandler) Register(r *gin.Engine) {
	r.GET("/api/markets/:id/odds-history", h.listOddsHistory)
}

// @Summary Consensus movement for a market, newest first
// @Tags odds
// @Param id path string true "market id"
// @Param hours query int false "lookback window in hours"
// @Param limit query int false "max entries"
// @Success 200 {object} apiResponse
// @Router /api/markets/{id}/odds-history [get]
func (h *OddsHistoryHandler) listOddsHistory(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		Error(c, http.StatusBadRequest, "id required", nil)
		return
	}
	market, err := h.Repo.GetMarketByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if market == nil {
		Error(c, http.StatusNotFound, "market not found", nil)
		return
	}

	params := repository.ListOddsHistoryParams{
		MarketID: id,
		Limit:    parseIntQuery(c, "limit", 100),
	}
	if hours := parseIntQuery(c, "hours", 0); hours > 0 {
		since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
		params.Since = &since
	}
	items, err := h.Repo.ListOddsHistory(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}
