package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderdesk/internal/server/http/dto"
)

// TemplateHandler manages canned reply endpoints.
type TemplateHandler struct {
	facade TemplateFacade
}

// NewTemplateHandler constructs TemplateHandler.
func NewTemplateHandler(facade TemplateFacade) *TemplateHandler {
	return &TemplateHandler{facade: facade}
}

// Create handles POST /api/admin/templates.
func (h *TemplateHandler) Create(c *gin.Context) {
	var req dto.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	template, err := h.facade.CreateTemplate(c.Request.Context(), req.Name, req.Category, req.Body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTemplateResponse(*template))
}

// List handles GET /api/admin/templates.
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.facade.Templates(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if len(templates) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.TemplateResponse, 0, len(templates))
	for _, template := range templates {
		response = append(response, dto.NewTemplateResponse(template))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/admin/templates/:id.
func (h *TemplateHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	template, err := h.facade.Template(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTemplateResponse(*template))
}

// Delete handles DELETE /api/admin/templates/:id.
func (h *TemplateHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.DeleteTemplate(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
