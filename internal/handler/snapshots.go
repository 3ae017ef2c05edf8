package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"coterran/internal/models"
	"coterran/internal/repository"
	"coterran/internal/service"
)

// Derived series: both are filtered views over the stored monthly rows, which
// is why monthly snapshots are never deleted.
const (
	seriesQuarterly = "3monthly"
	seriesAnnual    = "annual"
)

type SnapshotHandler struct {
	Repo repository.Repository
	Svc  *service.SnapshotService
}

func (h *SnapshotHandler) Register(r *gin.Engine) {
	r.GET("/api/markets/:id/snapshots", h.listMarketSnapshots)
	r.GET("/api/snapshots/latest", h.latestSnapshots)
	r.POST("/api/admin/snapshots", h.runSnapshots)
}

// @Summary Snapshot series for one market
// @Tags snapshots
// @Param id path string true "market id"
// @Param type query string false "daily, weekly, monthly, 3monthly or annual"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Success 200 {object} apiResponse
// @Router /api/markets/{id}/snapshots [get]
func (h *SnapshotHandler) listMarketSnapshots(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		Error(c, http.StatusBadRequest, "id required", nil)
		return
	}

	series := strings.TrimSpace(c.Query("type"))
	if series == "" {
		series = models.SnapshotTypeDaily
	}
	if series == "3-monthly" {
		series = seriesQuarterly
	}
	stored := series
	switch series {
	case models.SnapshotTypeDaily, models.SnapshotTypeWeekly, models.SnapshotTypeMonthly:
	case seriesQuarterly, seriesAnnual:
		stored = models.SnapshotTypeMonthly
	default:
		Error(c, http.StatusBadRequest, "unknown snapshot type", nil)
		return
	}

	params := repository.ListSnapshotsParams{
		MarketID:     id,
		SnapshotType: &stored,
		Limit:        parseIntQuery(c, "limit", 0),
		Offset:       parseIntQuery(c, "offset", 0),
	}
	for _, q := range []struct {
		key string
		dst **time.Time
	}{
		{"from", &params.From},
		{"to", &params.To},
	} {
		raw := strings.TrimSpace(c.Query(q.key))
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			Error(c, http.StatusBadRequest, q.key+" must be RFC3339", nil)
			return
		}
		utc := ts.UTC()
		*q.dst = &utc
	}

	items, err := h.Repo.ListSnapshots(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	items = filterSeries(items, series)
	Ok(c, items, map[string]any{"count": len(items), "type": series})
}

// filterSeries thins monthly rows down to the derived cadences: quarter starts
// for 3monthly, January rows for annual.
func filterSeries(items []models.Snapshot, series string) []models.Snapshot {
	switch series {
	case seriesQuarterly:
		out := items[:0]
		for _, item := range items {
			if (int(item.SnapshotDate.Month())-1)%3 == 0 {
				out = append(out, item)
			}
		}
		return out
	case seriesAnnual:
		out := items[:0]
		for _, item := range items {
			if item.SnapshotDate.Month() == time.January {
				out = append(out, item)
			}
		}
		return out
	default:
		return items
	}
}

// @Summary Latest snapshot per market (open markets unless ids are given)
// @Tags snapshots
// @Param type query string false "daily, weekly or monthly"
// @Param market_ids query string false "comma separated market ids"
// @Success 200 {object} apiResponse
// @Router /api/snapshots/latest [get]
func (h *SnapshotHandler) latestSnapshots(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "snapshot service unavailable", nil)
		return
	}
	snapshotType := strings.TrimSpace(c.Query("type"))
	if snapshotType == "" {
		snapshotType = models.SnapshotTypeDaily
	}
	var marketIDs []string
	if raw := strings.TrimSpace(c.Query("market_ids")); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				marketIDs = append(marketIDs, id)
			}
		}
	}
	items, err := h.Svc.Latest(c.Request.Context(), snapshotType, marketIDs)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, map[string]any{"count": len(items), "type": snapshotType})
}

type runSnapshotsRequest struct {
	SnapshotType string  `json:"snapshot_type" binding:"required"`
	MarketID     *string `json:"market_id"`
}

// @Summary Trigger a snapshot run on demand
// @Tags snapshots
// @Param body body runSnapshotsRequest true "run"
// @Success 200 {object} apiResponse
// @Router /api/admin/snapshots [post]
func (h *SnapshotHandler) runSnapshots(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "snapshot service unavailable", nil)
		return
	}
	var req runSnapshotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if req.MarketID != nil {
		snap, err := h.Svc.CreateSnapshot(c.Request.Context(), *req.MarketID, req.SnapshotType)
		if err != nil {
			Fail(c, err)
			return
		}
		Ok(c, snap, nil)
		return
	}

	var summary service.RunSummary
	var err error
	switch req.SnapshotType {
	case models.SnapshotTypeDaily:
		summary, err = h.Svc.RunDaily(c.Request.Context())
	case models.SnapshotTypeWeekly:
		summary, err = h.Svc.RunWeekly(c.Request.Context())
	case models.SnapshotTypeMonthly:
		summary, err = h.Svc.RunMonthly(c.Request.Context())
	default:
		Error(c, http.StatusBadRequest, "unknown snapshot type", nil)
		return
	}
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, summary, nil)
}
