package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"coterran/internal/repository"
	"coterran/internal/service"
)

type PredictionHandler struct {
	Repo repository.Repository
	Svc  *service.PredictionService
}

func (h *PredictionHandler) Register(r *gin.Engine) {
	r.POST("/api/predictions", h.submitPrediction)
	r.GET("/api/users/:id/predictions", h.listUserPredictions)
}

type submitPredictionRequest struct {
	MarketID   string   `json:"market_id" binding:"required"`
	UserID     string   `json:"user_id" binding:"required"`
	Prediction *float64 `json:"prediction" binding:"required"`
	Confidence *string  `json:"confidence"`
	Reasoning  *string  `json:"reasoning"`
	Sources    []string `json:"sources"`
	IsPublic   *bool    `json:"is_public"`
}

// @Summary Submit or revise a prediction
// @Tags predictions
// @Param body body submitPredictionRequest true "prediction"
// @Success 200 {object} apiResponse
// @Router /api/predictions [post]
func (h *PredictionHandler) submitPrediction(c *gin.Context) {
	if h.Svc == nil {
		Error(c, http.StatusInternalServerError, "prediction service unavailable", nil)
		return
	}
	var req submitPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	res, err := h.Svc.Submit(c.Request.Context(), service.SubmitPredictionInput{
		MarketID:   req.MarketID,
		UserID:     req.UserID,
		Value:      *req.Prediction,
		Confidence: req.Confidence,
		Reasoning:  req.Reasoning,
		Sources:    req.Sources,
		IsPublic:   req.IsPublic,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, map[string]any{
		"prediction": res.Prediction,
		"created":    res.Created,
		"consensus":  res.History,
	}, nil)
}

// @Summary Predictions made by one user
// @Tags predictions
// @Param id path string true "user id"
// @Success 200 {object} apiResponse
// @Router /api/users/{id}/predictions [get]
func (h *PredictionHandler) listUserPredictions(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		Error(c, http.StatusBadRequest, "id required", nil)
		return
	}
	user, err := h.Repo.GetUserByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if user == nil {
		Error(c, http.StatusNotFound, "user not found", nil)
		return
	}
	items, err := h.Repo.ListPredictionsByUser(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}
