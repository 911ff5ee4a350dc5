package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PaymentHandler accepts gateway payment notifications on a public endpoint.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Callback handles GET/POST /api/payment/callback. The gateway expects a
// plain "OK<order id>" acknowledgement.
func (h *PaymentHandler) Callback(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	params := make(map[string]string, len(c.Request.Form))
	for key, values := range c.Request.Form {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	orderID, err := h.facade.PaymentCallback(c.Request.Context(), params)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.String(http.StatusOK, "OK%s", orderID)
}
