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

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	{
		requests.POST("", middleware.RequireRole(model.RoleCitizen, model.RoleAdmin), h.SubmitRequest)
		requests.GET("", middleware.RequireRole(model.RoleAdmin), h.ListRequests)
		requests.GET("/:id", middleware.RequireRole(model.RoleCitizen, model.RoleAdmin, model.RoleDeliverer), h.GetRequest)
		requests.POST("/:id/rematch", middleware.RequireRole(model.RoleAdmin), h.RerunMatch)
		requests.POST("/batch-update-priorities", middleware.RequireRole(model.RoleAdmin), h.BatchUpdatePriorities)
	}
}

// SubmitRequest handles POST /api/requests
// @Summary      Submit a relief request
// @Description  Creates a pending aid request, computes its priority score and notifies all admins
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmitRequestDTO  true  "Request Payload"
// @Success      201      {object}  response.Response{data=model.ReliefRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/requests [post]
func (h *RequestHandler) SubmitRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortNoIdentity(c)
		return
	}

	var dto service.SubmitRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	req, err := h.requestService.Submit(c.Request.Context(), userID, dto)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, req))
}

// ListRequests returns relief requests, optionally filtered by approval status
// @Summary      List relief requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Approval status filter (PENDING, APPROVED, REJECTED)"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Limit"
// @Success      200     {object}  response.Response
// @Router       /api/requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	params := pagination.Parse(c)

	requests, total, err := h.requestService.List(c.Request.Context(), service.RequestFilter{
		ApprovalStatus: c.Query("status"),
		Page:           params.Page,
		Limit:          params.Limit,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   requests,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// GetRequest returns one relief request with relations
// @Summary      Get a relief request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=model.ReliefRequest}
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request id"))
		return
	}

	req, err := h.requestService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// RerunMatch re-applies the matching policy to an approved request
// @Summary      Re-run resource matching
// @Description  Applies the selection policy again, overwriting the prior match outcome
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.MatchResult}
// @Failure      409  {object}  response.Response
// @Router       /api/requests/{id}/rematch [post]
func (h *RequestHandler) RerunMatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request id"))
		return
	}

	result, err := h.requestService.RerunMatch(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// BatchUpdatePriorities rescores all undecided requests
// @Summary      Recompute priorities
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /api/requests/batch-update-priorities [post]
func (h *RequestHandler) BatchUpdatePriorities(c *gin.Context) {
	updated, err := h.requestService.RefreshPriorities(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"updated": updated}))
}
