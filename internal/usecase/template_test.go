package usecase

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/test"
)

func TestTemplateCRUD(t *testing.T) {
	ctx := context.Background()
	uc := NewTemplateUseCase(&test.TemplateRepositoryStub{})

	created, err := uc.Create(ctx, "greeting", "intro", "Hello! Your order is received.")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	listed, err := uc.List(ctx)
	if err != nil || len(listed) != 1 {
		t.Fatalf("expected one template, got %v, %v", listed, err)
	}

	fetched, err := uc.Get(ctx, created.ID)
	if err != nil || fetched.Body != created.Body {
		t.Fatalf("get: %v, %v", fetched, err)
	}

	if err := uc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := uc.Get(ctx, created.ID); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestTemplateCreateValidation(t *testing.T) {
	ctx := context.Background()
	uc := NewTemplateUseCase(&test.TemplateRepositoryStub{})

	if _, err := uc.Create(ctx, " ", "intro", "body"); !domainErrors.IsValidation(err) {
		t.Fatalf("empty name must be rejected, got %v", err)
	}
	if _, err := uc.Create(ctx, "name", "intro", ""); !domainErrors.IsValidation(err) {
		t.Fatalf("empty body must be rejected, got %v", err)
	}
}
