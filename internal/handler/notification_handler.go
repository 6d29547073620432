package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/geo"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BroadcastDTO struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
	RadiusKm  float64 `json:"radius_km" binding:"required,gt=0"`
	Message   string  `json:"message" binding:"required"`
}

type NotificationHandler struct {
	notifService service.NotificationService
}

func NewNotificationHandler(notifService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := middleware.RequireRole(model.RoleCitizen, model.RoleAdmin, model.RoleDeliverer)

	notifications := router.Group("/api/notifications")
	{
		notifications.GET("", anyRole, h.ListNotifications)
		notifications.GET("/unread-count", anyRole, h.UnreadCount)
		notifications.PUT("/read-all", anyRole, h.MarkAllRead)
		notifications.PUT("/:id/read", anyRole, h.MarkRead)
	}

	router.POST("/api/alerts/broadcast", middleware.RequireRole(model.RoleAdmin), h.BroadcastEmergency)
}

// ListNotifications returns the authenticated user's notifications
// @Summary      List my notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.Response
// @Router       /api/notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortNoIdentity(c)
		return
	}

	params := pagination.Parse(c)
	notifications, total, err := h.notifService.ListForUser(c.Request.Context(), userID, params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   notifications,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// UnreadCount returns the authenticated user's unread notification count
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortNoIdentity(c)
		return
	}

	count, err := h.notifService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"unread": count}))
}

// MarkRead flips one notification's read flag
// @Summary      Mark notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortNoIdentity(c)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid notification id"))
		return
	}

	if err := h.notifService.MarkRead(c.Request.Context(), userID, id); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "marked read"}))
}

// MarkAllRead flips every unread notification of the user
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /api/notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortNoIdentity(c)
		return
	}

	if err := h.notifService.MarkAllRead(c.Request.Context(), userID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "all marked read"}))
}

// BroadcastEmergency fans an alert out to all users in a radius
// @Summary      Broadcast emergency alert
// @Description  Notifies every user with stored coordinates and notifications enabled within the radius
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      BroadcastDTO  true  "Broadcast Payload"
// @Success      200      {object}  response.Response{data=service.FanoutResult}
// @Failure      400      {object}  response.Response
// @Router       /api/alerts/broadcast [post]
func (h *NotificationHandler) BroadcastEmergency(c *gin.Context) {
	senderID, ok := currentUserID(c)
	if !ok {
		abortNoIdentity(c)
		return
	}

	var dto BroadcastDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.notifService.BroadcastEmergency(c.Request.Context(), senderID,
		geo.Point{Lat: dto.Latitude, Lng: dto.Longitude}, dto.RadiusKm, dto.Message)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
