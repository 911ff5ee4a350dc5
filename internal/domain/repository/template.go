package repository

import (
	"context"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// TemplateRepository stores reusable fulfiller reply templates.
type TemplateRepository interface {
	Create(ctx context.Context, name, category, body string) (*model.ResponseTemplate, error)
	List(ctx context.Context) ([]model.ResponseTemplate, error)
	Get(ctx context.Context, id int64) (*model.ResponseTemplate, error)
	Delete(ctx context.Context, id int64) error
}
