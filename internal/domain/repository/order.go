package repository

import (
	"context"
	"time"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
//
// Mutating methods taking a "from" status set perform the change as a single
// conditional statement; the returned bool reports whether a row matched, so
// a lost transition race surfaces as false rather than a partial write.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]model.Order, error)
	ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	CountActive(ctx context.Context, requesterID int64) (int, error)

	UpdateStatus(ctx context.Context, id string, from []model.OrderStatus, to model.OrderStatus) (bool, error)
	SetPrice(ctx context.Context, id string, from []model.OrderStatus, amount float64, paymentLink string) (bool, error)
	MarkPaid(ctx context.Context, id string, from []model.OrderStatus) (bool, error)
	SetDelivered(ctx context.Context, id string, from []model.OrderStatus, files []string) (bool, error)
	Complete(ctx context.Context, id string, from []model.OrderStatus, completedAt time.Time) (bool, error)
	AssignFulfiller(ctx context.Context, id string, from []model.OrderStatus, fulfillerID int64, fulfillerName string) (bool, error)

	UpdateTags(ctx context.Context, id string, tags []string) error
	ListCompletedBefore(ctx context.Context, cutoff time.Time) ([]model.Order, error)
	Delete(ctx context.Context, id string) error
}
