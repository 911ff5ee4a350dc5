package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/server/http/dto"
	"github.com/polkiloo/orderdesk/internal/usecase"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// List handles GET /api/admin/orders. One of status or requester_id narrows
// the listing.
func (h *OrderHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		orders []model.Order
		err    error
	)
	switch {
	case c.Query("status") != "":
		orders, err = h.facade.Orders(ctx, model.OrderStatus(c.Query("status")))
	case c.Query("requester_id") != "":
		requesterID, parseErr := strconv.ParseInt(c.Query("requester_id"), 10, 64)
		if parseErr != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		orders, err = h.facade.RequesterOrders(ctx, requesterID)
	default:
		c.Status(http.StatusBadRequest)
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		response = append(response, dto.NewOrderResponse(order))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/admin/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(*order))
}

// Take handles POST /api/admin/orders/:id/take.
func (h *OrderHandler) Take(c *gin.Context) {
	var req dto.TakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if req.FulfillerID == 0 {
		req.FulfillerID = CurrentAdminID(c)
	}

	order, err := h.facade.TakeOrder(c.Request.Context(), c.Param("id"), req.FulfillerID, req.FulfillerName)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(*order))
}

// SetPrice handles POST /api/admin/orders/:id/price.
func (h *OrderHandler) SetPrice(c *gin.Context) {
	var req dto.PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.SetPrice(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(*order))
}

// Deliver handles POST /api/admin/orders/:id/deliver with multipart files.
func (h *OrderHandler) Deliver(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var uploads []usecase.Upload
	var closers []func()
	defer func() {
		for _, closeFn := range closers {
			closeFn()
		}
	}()
	for _, header := range form.File["files"] {
		file, err := header.Open()
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		closers = append(closers, func() { _ = file.Close() })
		uploads = append(uploads, usecase.Upload{Name: header.Filename, Content: file})
	}

	order, err := h.facade.DeliverWork(c.Request.Context(), c.Param("id"), uploads)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(*order))
}

// Complete handles POST /api/admin/orders/:id/complete.
func (h *OrderHandler) Complete(c *gin.Context) {
	order, err := h.facade.ForceComplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(*order))
}

// Cancel handles POST /api/admin/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	order, err := h.facade.CancelOrder(c.Request.Context(), c.Param("id"), model.SenderRoleFulfiller)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(*order))
}

// Tags handles PUT /api/admin/orders/:id/tags.
func (h *OrderHandler) Tags(c *gin.Context) {
	var req dto.TagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.UpdateTags(c.Request.Context(), c.Param("id"), req.Tags); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Purge handles DELETE /api/admin/orders/:id.
func (h *OrderHandler) Purge(c *gin.Context) {
	if err := h.facade.PurgeOrder(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Message handles POST /api/admin/orders/:id/message.
func (h *OrderHandler) Message(c *gin.Context) {
	var req dto.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.SendMessage(c.Request.Context(), c.Param("id"), model.SenderRoleFulfiller, req.Text); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// History handles GET /api/admin/orders/:id/history.
func (h *OrderHandler) History(c *gin.Context) {
	history, err := h.facade.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if len(history) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.HistoryMessageResponse, 0, len(history))
	for _, message := range history {
		response = append(response, dto.HistoryMessageResponse{
			Sender:    string(message.Sender),
			Body:      message.Body,
			CreatedAt: message.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, response)
}

// Archive handles GET /api/admin/orders/:id/archive.
func (h *OrderHandler) Archive(c *gin.Context) {
	archive, err := h.facade.DeliveredArchive(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	disposition := fmt.Sprintf("attachment; filename=%q", c.Param("id")+".zip")
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, "application/zip", archive)
}
