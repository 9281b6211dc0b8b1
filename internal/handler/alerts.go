package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"Lifeline/internal/alert"
	"Lifeline/internal/models"
	"Lifeline/pkg/errors"
	"Lifeline/pkg/response"
)

type triggerSOSRequest struct {
	OwnerID   string           `json:"ownerId" binding:"required"`
	Location  *models.Location `json:"location" binding:"required"`
	Message   string           `json:"message"`
	AlertType string           `json:"alertType"`
	OwnerName string           `json:"ownerName"`
}

func (h *Handlers) handleTriggerSOS(c *gin.Context) {
	var req triggerSOSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, errors.CodeValidation, err.Error())
		return
	}

	result, err := h.lifecycle.TriggerSOS(alert.TriggerInput{
		OwnerID:   req.OwnerID,
		Location:  req.Location,
		Message:   req.Message,
		AlertType: req.AlertType,
		OwnerName: req.OwnerName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "sos dispatched", gin.H{
		"trackingCode": result.TrackingCode,
		"stats":        result.Stats,
		"mapLink":      result.MapLink,
	})
}

func (h *Handlers) handleListAlerts(c *gin.Context) {
	ownerID := c.Param("ownerId")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	alerts, err := models.GetAlertsByOwner(h.db, ownerID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "ok", gin.H{"alerts": alerts})
}

func (h *Handlers) handleTrackAlert(c *gin.Context) {
	code := c.Param("trackingCode")

	a, err := models.GetAlertByTrackingCode(h.db, code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "ok", gin.H{"alert": a})
}

func (h *Handlers) handleResolveAlert(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("alertId"), 10, 32)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, errors.CodeValidation, "invalid alert id")
		return
	}

	result, err := h.lifecycle.Resolve(uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "alert resolved", gin.H{
		"alert":    result.Alert,
		"notified": result.Notified,
	})
}

func (h *Handlers) handleOwnerStats(c *gin.Context) {
	ownerID := c.Param("ownerId")

	total, err := models.CountAlerts(h.db, ownerID, nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	active := models.AlertStatusActive
	activeCount, err := models.CountAlerts(h.db, ownerID, &active)
	if err != nil {
		response.Error(c, err)
		return
	}
	list, err := models.GetContactList(h.db, ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	contactCount := 0
	if list != nil {
		contactCount = len(list.Contacts)
	}

	response.Success(c, "ok", gin.H{
		"totalAlerts":       total,
		"activeAlerts":      activeCount,
		"resolvedAlerts":    total - activeCount,
		"emergencyContacts": contactCount,
	})
}
