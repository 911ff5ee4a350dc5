package usecase

import (
	"context"
	"strings"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
)

// TemplateUseCase manages canned response templates.
type TemplateUseCase struct {
	templates repository.TemplateRepository
}

// NewTemplateUseCase constructs TemplateUseCase.
func NewTemplateUseCase(templates repository.TemplateRepository) *TemplateUseCase {
	return &TemplateUseCase{templates: templates}
}

// Create stores a new template.
func (u *TemplateUseCase) Create(ctx context.Context, name, category, body string) (*model.ResponseTemplate, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domainErrors.NewValidation("name", "must not be empty")
	}
	if strings.TrimSpace(body) == "" {
		return nil, domainErrors.NewValidation("body", "must not be empty")
	}
	return u.templates.Create(ctx, name, category, body)
}

// List returns all templates.
func (u *TemplateUseCase) List(ctx context.Context) ([]model.ResponseTemplate, error) {
	return u.templates.List(ctx)
}

// Get returns one template by id.
func (u *TemplateUseCase) Get(ctx context.Context, id int64) (*model.ResponseTemplate, error) {
	return u.templates.Get(ctx, id)
}

// Delete removes a template.
func (u *TemplateUseCase) Delete(ctx context.Context, id int64) error {
	return u.templates.Delete(ctx, id)
}
