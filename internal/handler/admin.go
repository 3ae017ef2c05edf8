package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"coterran/internal/models"
	"coterran/internal/repository"
)

type AdminHandler struct {
	Repo repository.Repository
}

func (h *AdminHandler) Register(r *gin.Engine) {
	group := r.Group("/api/admin")
	group.GET("/analytics", h.analytics)
	group.GET("/users/pending", h.pendingUsers)
	group.POST("/users/:id/approve", h.approveUser)
}

// @Summary Platform-wide aggregate counts
// @Tags admin
// @Success 200 {object} apiResponse
// @Router /api/admin/analytics [get]
func (h *AdminHandler) analytics(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	overview, err := h.Repo.AnalyticsOverview(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, overview, nil)
}

// @Summary Users awaiting approval
// @Tags admin
// @Success 200 {object} apiResponse
// @Router /api/admin/users/pending [get]
func (h *AdminHandler) pendingUsers(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	items, err := h.Repo.ListPendingUsers(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

type approveUserRequest struct {
	ApprovedBy *string `json:"approved_by"`
}

// @Summary Approve a pending user
// @Tags admin
// @Param id path string true "user id"
// @Success 200 {object} apiResponse
// @Router /api/admin/users/{id}/approve [post]
func (h *AdminHandler) approveUser(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		Error(c, http.StatusBadRequest, "id required", nil)
		return
	}
	var req approveUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		Error(c, http.StatusBadRequest, err.Error(), nil)
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
	if err := h.Repo.ApproveUser(c.Request.Context(), id); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	details, _ := json.Marshal(map[string]any{"email": user.Email})
	audit := models.AuditLog{
		UserID:     req.ApprovedBy,
		Action:     "user_approved",
		EntityType: "user",
		EntityID:   id,
		Details:    details,
	}
	if err := h.Repo.InsertAuditLogTx(c.Request.Context(), nil, &audit); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, map[string]any{"id": id, "approved": true}, nil)
}
