package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type ResourceHandler struct {
	resourceRepo repository.ResourceRepository
}

func NewResourceHandler(resourceRepo repository.ResourceRepository) *ResourceHandler {
	return &ResourceHandler{resourceRepo: resourceRepo}
}

func (h *ResourceHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/resources", middleware.RequireRole(model.RoleAdmin), h.ListResources)
	router.GET("/api/centers", middleware.RequireRole(model.RoleCitizen, model.RoleAdmin, model.RoleDeliverer), h.ListCenters)
}

// ListResources returns stock levels across all centers
// @Summary      List resource stocks
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.Response
// @Router       /api/resources [get]
func (h *ResourceHandler) ListResources(c *gin.Context) {
	params := pagination.Parse(c)

	stocks, total, err := h.resourceRepo.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   stocks,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// ListCenters returns relief centers
// @Summary      List relief centers
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.Response
// @Router       /api/centers [get]
func (h *ResourceHandler) ListCenters(c *gin.Context) {
	params := pagination.Parse(c)

	centers, total, err := h.resourceRepo.ListCenters(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   centers,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}
