package dto

import "github.com/polkiloo/orderdesk/internal/domain/model"

// TemplateRequest creates a canned reply.
type TemplateRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Body     string `json:"body"`
}

// TemplateResponse is the wire representation of a canned reply.
type TemplateResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Body     string `json:"body"`
}

// NewTemplateResponse maps a domain template onto the wire shape.
func NewTemplateResponse(template model.ResponseTemplate) TemplateResponse {
	return TemplateResponse{
		ID:       template.ID,
		Name:     template.Name,
		Category: template.Category,
		Body:     template.Body,
	}
}
