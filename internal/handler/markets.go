package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"coterran/internal/models"
	"coterran/internal/repository"
	"coterran/internal/service"
)

type MarketHandler struct {
	Repo       repository.Repository
	Consensus  *service.ConsensusService
	Resolution *service.ResolutionService
}

func (h *MarketHandler) Register(r *gin.Engine) {
	group := r.Group("/api/markets")
	group.GET("", h.listMarkets)
	group.POST("", h.createMarket)
	group.GET("/:id", h.getMarket)
	group.POST("/:id/resolve", h.resolveMarket)
}

// @Summary List markets
// @Tags markets
// @Param status query string false "open or resolved"
// @Param category query string false "category filter"
// @Success 200 {object} apiResponse
// @Router /api/markets [get]
func (h *MarketHandler) listMarkets(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := repository.ListMarketsParams{
		Limit:  parseIntQuery(c, "limit", 0),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		if status != models.MarketStatusOpen && status != models.MarketStatusResolved {
			Error(c, http.StatusBadRequest, "unknown status", nil)
			return
		}
		params.Status = &status
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		params.Category = &category
	}
	items, err := h.Repo.ListMarkets(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	// Join each market with its latest daily snapshot so list consumers get
	// consensus figures without a per-market aggregation query.
	ids := make([]string, 0, len(items))
	for i := range items {
		ids = append(ids, items[i].ID)
	}
	latest := map[string]models.Snapshot{}
	if len(ids) > 0 {
		snaps, err := h.Repo.LatestSnapshotPerMarket(c.Request.Context(), models.SnapshotTypeDaily, ids)
		if err != nil {
			Error(c, http.StatusBadGateway, err.Error(), nil)
			return
		}
		for _, snap := range snaps {
			latest[snap.MarketID] = snap
		}
	}
	out := make([]gin.H, 0, len(items))
	for i := range items {
		row := gin.H{"market": items[i]}
		if snap, ok := latest[items[i].ID]; ok {
			row["consensus"] = snap
		}
		out = append(out, row)
	}
	Ok(c, out, map[string]any{"count": len(out)})
}

type createMarketRequest struct {
	Question           string  `json:"question" binding:"required"`
	Description        *string `json:"description"`
	Category           string  `json:"category" binding:"required"`
	CloseDate          string  `json:"close_date" binding:"required"`
	DataSource         *string `json:"data_source"`
	ResolutionCriteria string  `json:"resolution_criteria" binding:"required"`
	CreatedBy          *string `json:"created_by"`
}

// @Summary Create a market
// @Tags markets
// @Param body body createMarketRequest true "market"
// @Success 200 {object} apiResponse
// @Router /api/markets [post]
func (h *MarketHandler) createMarket(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	var req createMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	closeDate, err := time.Parse(time.RFC3339, req.CloseDate)
	if err != nil {
		Error(c, http.StatusBadRequest, "close_date must be RFC3339", nil)
		return
	}
	item := models.Market{
		ID:                 uuid.NewString(),
		Question:           strings.TrimSpace(req.Question),
		Description:        req.Description,
		Category:           strings.TrimSpace(req.Category),
		Status:             models.MarketStatusOpen,
		CloseDate:          closeDate.UTC(),
		DataSource:         req.DataSource,
		ResolutionCriteria: strings.TrimSpace(req.ResolutionCriteria),
		CreatedBy:          req.CreatedBy,
	}
	if err := h.Repo.CreateMarket(c.Request.Context(), &item); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}

// @Summary Market detail with current consensus
// @Tags markets
// @Param id path string true "market id"
// @Success 200 {object} apiResponse
// @Router /api/markets/{id} [get]
func (h *MarketHandler) getMarket(c *gin.Context) {
	if h.Repo == nil || h.Consensus == nil {
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
	view, err := h.Consensus.MarketConsensus(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	preds, err := h.Repo.ListPredictionsByMarket(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	public := make([]models.Prediction, 0, len(preds))
	for _, p := range preds {
		if p.IsPublic {
			public = append(public, p)
		}
	}
	Ok(c, map[string]any{
		"market":      market,
		"statistics":  view.Summary,
		"odds":        view.Odds,
		"predictions": public,
	}, nil)
}

type resolveMarketRequest struct {
	Outcome          *float64 `json:"outcome" binding:"required"`
	ResolutionSource *string  `json:"resolution_source"`
	ResolutionNotes  *string  `json:"resolution_notes"`
	ResolvedBy       *string  `json:"resolved_by"`
}

// @Summary Resolve a market and score its predictions
// @Tags markets
// @Param id path string true "market id"
// @Param body body resolveMarketRequest true "resolution"
// @Success 200 {object} apiResponse
// @Router /api/markets/{id}/resolve [post]
func (h *MarketHandler) resolveMarket(c *gin.Context) {
	if h.Resolution == nil {
		Error(c, http.StatusInternalServerError, "resolution service unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		Error(c, http.StatusBadRequest, "id required", nil)
		return
	}
	var req resolveMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	market, err := h.Resolution.Resolve(c.Request.Context(), id, service.ResolveMarketInput{
		Outcome:          *req.Outcome,
		ResolutionSource: req.ResolutionSource,
		ResolutionNotes:  req.ResolutionNotes,
		ResolvedBy:       req.ResolvedBy,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, market, nil)
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
