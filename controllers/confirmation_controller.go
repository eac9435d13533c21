package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grouporder/confirmation"
	"grouporder/models"
)

type ConfirmationController struct {
	currency string
}

func NewConfirmationController(currency string) *ConfirmationController {
	return &ConfirmationController{currency: currency}
}

// Render shows the confirmation for a list of ordered items. An empty or
// missing list renders the "no details" message. ?format=text returns the
// plain text receipt.
func (cc *ConfirmationController) Render(c *gin.Context) {
	var body struct {
		OrderedItems []models.OrderedItem `json:"orderedItems" binding:"dive"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, "invalid", "Invalid ordered items")
			return
		}
	}

	receipt := confirmation.Render(body.OrderedItems)
	if c.Query("format") == "text" {
		c.String(http.StatusOK, receipt.Text(cc.currency))
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipt": receipt, "text": receipt.Text(cc.currency)})
}
