package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RejectRequestDTO struct {
	Reason string `json:"reason" binding:"required"`
}

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	{
		requests.PUT("/:id/approve", middleware.RequireRole(model.RoleAdmin), h.ApproveRequest)
		requests.PUT("/:id/reject", middleware.RequireRole(model.RoleAdmin), h.RejectRequest)
	}
}

// ApproveRequest approves a pending relief request and runs matching
// @Summary      Approve a request
// @Description  Marks a pending request approved, synchronously matches it to the nearest stock and notifies the requester
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=model.ReliefRequest}
// @Failure      409  {object}  response.Response
// @Router       /api/requests/{id}/approve [put]
func (h *ApprovalHandler) ApproveRequest(c *gin.Context) {
	h.decide(c, true, "")
}

// RejectRequest rejects a pending relief request
// @Summary      Reject a request
// @Description  Marks a pending request rejected with a mandatory reason and notifies the requester
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string            true  "Request ID"
// @Param        payload  body      RejectRequestDTO  true  "Rejection Reason"
// @Success      200      {object}  response.Response{data=model.ReliefRequest}
// @Failure      409      {object}  response.Response
// @Router       /api/requests/{id}/reject [put]
func (h *ApprovalHandler) RejectRequest(c *gin.Context) {
	var dto RejectRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Rejection requires a reason"))
		return
	}
	h.decide(c, false, dto.Reason)
}

func (h *ApprovalHandler) decide(c *gin.Context, approved bool, reason string) {
	approverID, ok := currentUserID(c)
	if !ok {
		abortNoIdentity(c)
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request id"))
		return
	}

	req, err := h.approvalService.Decide(c.Request.Context(), requestID, approverID, approved, reason)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}
