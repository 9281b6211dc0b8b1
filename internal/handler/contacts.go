package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Lifeline/internal/models"
	"Lifeline/pkg/errors"
	"Lifeline/pkg/response"
)

type saveContactsRequest struct {
	OwnerID  string           `json:"ownerId" binding:"required"`
	Contacts []models.Contact `json:"contacts" binding:"required"`
}

func (h *Handlers) handleSaveContacts(c *gin.Context) {
	var req saveContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, errors.CodeValidation, err.Error())
		return
	}
	for _, contact := range req.Contacts {
		if contact.Name == "" || contact.Phone == "" {
			response.Fail(c, http.StatusBadRequest, errors.CodeValidation, "every contact needs a name and phone")
			return
		}
	}

	list, err := models.SaveContactList(h.db, req.OwnerID, req.Contacts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "contacts saved", gin.H{"ownerId": list.OwnerID, "contacts": list.Contacts})
}

func (h *Handlers) handleGetContacts(c *gin.Context) {
	ownerID := c.Param("ownerId")

	list, err := models.GetContactList(h.db, ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	contacts := []models.Contact{}
	if list != nil {
		contacts = list.Contacts
	}
	response.Success(c, "ok", gin.H{"ownerId": ownerID, "contacts": contacts})
}
