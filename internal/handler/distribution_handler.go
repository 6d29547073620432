package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TransitionDTO struct {
	Status string `json:"status" binding:"required,oneof=PREPARING IN_TRANSIT DELIVERING COMPLETED CANCELLED"`
}

type DistributionHandler struct {
	distService service.DistributionService
}

func NewDistributionHandler(distService service.DistributionService) *DistributionHandler {
	return &DistributionHandler{distService: distService}
}

func (h *DistributionHandler) RegisterRoutes(router *gin.RouterGroup) {
	distributions := router.Group("/api/distributions")
	{
		distributions.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateDistribution)
		distributions.GET("", middleware.RequireRole(model.RoleAdmin), h.ListDistributions)
		distributions.GET("/mine", middleware.RequireRole(model.RoleDeliverer), h.ListMyDistributions)
		distributions.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleDeliverer), h.GetDistribution)
		distributions.PUT("/:id/status", middleware.RequireRole(model.RoleAdmin, model.RoleDeliverer), h.TransitionDistribution)
		distributions.GET("/:id/ledger", middleware.RequireRole(model.RoleAdmin), h.GetLedger)
	}
}

// CreateDistribution assigns a deliverer to a matched request
// @Summary      Create a distribution
// @Description  Commits the matched stock (atomic check-and-decrement), creates the delivery task and notifies the deliverer
// @Tags         distributions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDistributionDTO  true  "Distribution Payload"
// @Success      201      {object}  response.Response{data=model.Distribution}
// @Failure      409      {object}  response.Response
// @Router       /api/distributions [post]
func (h *DistributionHandler) CreateDistribution(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		abortNoIdentity(c)
		return
	}

	var dto service.CreateDistributionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	dist, err := h.distService.Create(c.Request.Context(), actorID, dto)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, dist))
}

// ListDistributions returns distributions, optionally filtered by status
// @Summary      List distributions
// @Tags         distributions
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Limit"
// @Success      200     {object}  response.Response
// @Router       /api/distributions [get]
func (h *DistributionHandler) ListDistributions(c *gin.Context) {
	params := pagination.Parse(c)

	dists, total, err := h.distService.List(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   dists,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// ListMyDistributions returns the authenticated deliverer's tasks
// @Summary      List my delivery tasks
// @Tags         distributions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /api/distributions/mine [get]
func (h *DistributionHandler) ListMyDistributions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortNoIdentity(c)
		return
	}

	params := pagination.Parse(c)
	dists, total, err := h.distService.ListByDeliverer(c.Request.Context(), userID, params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   dists,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// GetDistribution returns one distribution with relations
// @Summary      Get a distribution
// @Tags         distributions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Distribution ID"
// @Success      200  {object}  response.Response{data=model.Distribution}
// @Failure      404  {object}  response.Response
// @Router       /api/distributions/{id} [get]
func (h *DistributionHandler) GetDistribution(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid distribution id"))
		return
	}

	dist, err := h.distService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, dist))
}

// TransitionDistribution moves a distribution along its lifecycle
// @Summary      Transition a distribution
// @Description  Applies one edge of the delivery state machine and appends a ledger entry
// @Tags         distributions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string         true  "Distribution ID"
// @Param        payload  body      TransitionDTO  true  "Target Status"
// @Success      200      {object}  response.Response{data=model.Distribution}
// @Failure      409      {object}  response.Response
// @Router       /api/distributions/{id}/status [put]
func (h *DistributionHandler) TransitionDistribution(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid distribution id"))
		return
	}

	var dto TransitionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	dist, err := h.distService.Transition(c.Request.Context(), id, dto.Status)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, dist))
}

// GetLedger returns the append-only transition ledger of a distribution
// @Summary      Get distribution ledger
// @Tags         distributions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Distribution ID"
// @Success      200  {object}  response.Response{data=[]service.LedgerEntryResponse}
// @Router       /api/distributions/{id}/ledger [get]
func (h *DistributionHandler) GetLedger(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid distribution id"))
		return
	}

	entries, err := h.distService.Ledger(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}
