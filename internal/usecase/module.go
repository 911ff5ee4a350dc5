package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/orderdesk/internal/adapter/notify"
	"github.com/polkiloo/orderdesk/internal/adapter/payment"
	"github.com/polkiloo/orderdesk/internal/config"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
	"github.com/polkiloo/orderdesk/internal/storage/files"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newIntakeUseCase,
	newLifecycleUseCase,
	newBrowseUseCase,
	NewTemplateUseCase,
	func(store *files.Store) AttachmentStore { return store },
)

type intakeParams struct {
	fx.In

	Orders repository.OrderRepository
	Store  AttachmentStore
	Config *config.Config
}

func newIntakeUseCase(p intakeParams) *IntakeUseCase {
	return NewIntakeUseCase(p.Orders, p.Store, p.Config.MaxActiveOrders, p.Config.MinBudget, p.Config.MaxDescription)
}

type lifecycleParams struct {
	fx.In

	Orders   repository.OrderRepository
	Audit    repository.AuditRepository
	Store    AttachmentStore
	Gateway  payment.Gateway
	Notifier notify.Channel
	Logger   *slog.Logger
	Config   *config.Config
}

func newLifecycleUseCase(p lifecycleParams) *LifecycleUseCase {
	return NewLifecycleUseCase(p.Orders, p.Audit, p.Store, p.Gateway, p.Notifier, p.Logger, p.Config.MinBudget, p.Config.AdminID)
}

type browseParams struct {
	fx.In

	Orders repository.OrderRepository
	Audit  repository.AuditRepository
	Store  AttachmentStore
	Config *config.Config
}

func newBrowseUseCase(p browseParams) *BrowseUseCase {
	return NewBrowseUseCase(p.Orders, p.Audit, p.Store, p.Config.RetentionWindow())
}
