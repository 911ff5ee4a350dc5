package handlers

import (
	"context"

	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Login(password string) (string, error)
	ParseToken(token string) (int64, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	Order(ctx context.Context, orderID string) (*model.Order, error)
	Orders(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	RequesterOrders(ctx context.Context, requesterID int64) ([]model.Order, error)
	TakeOrder(ctx context.Context, orderID string, fulfillerID int64, fulfillerName string) (*model.Order, error)
	SetPrice(ctx context.Context, orderID string, amount float64) (*model.Order, error)
	DeliverWork(ctx context.Context, orderID string, uploads []usecase.Upload) (*model.Order, error)
	ForceComplete(ctx context.Context, orderID string) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID string, initiator model.SenderRole) (*model.Order, error)
	UpdateTags(ctx context.Context, orderID string, tags []string) error
	PurgeOrder(ctx context.Context, orderID string) error
	SendMessage(ctx context.Context, orderID string, sender model.SenderRole, text string) error
	History(ctx context.Context, orderID string) ([]model.HistoryMessage, error)
	DeliveredArchive(ctx context.Context, orderID string) ([]byte, error)
}

// TemplateFacade provides canned reply management.
type TemplateFacade interface {
	CreateTemplate(ctx context.Context, name, category, body string) (*model.ResponseTemplate, error)
	Templates(ctx context.Context) ([]model.ResponseTemplate, error)
	Template(ctx context.Context, id int64) (*model.ResponseTemplate, error)
	DeleteTemplate(ctx context.Context, id int64) error
}

// PaymentFacade handles gateway payment notifications.
type PaymentFacade interface {
	PaymentCallback(ctx context.Context, params map[string]string) (string, error)
}

// DeskFacade aggregates the full set of operations used across handlers.
type DeskFacade interface {
	AuthFacade
	OrderFacade
	TemplateFacade
	PaymentFacade
}
