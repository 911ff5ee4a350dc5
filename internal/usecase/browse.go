package usecase

import (
	"context"
	"time"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
	"github.com/polkiloo/orderdesk/internal/storage/files"
)

// BrowseUseCase serves read paths: listings, order details, message history
// and delivered-work downloads.
type BrowseUseCase struct {
	orders repository.OrderRepository
	audit  repository.AuditRepository
	store  AttachmentStore

	retention time.Duration
	now       func() time.Time
}

// NewBrowseUseCase constructs BrowseUseCase.
func NewBrowseUseCase(orders repository.OrderRepository, audit repository.AuditRepository, store AttachmentStore, retention time.Duration) *BrowseUseCase {
	return &BrowseUseCase{
		orders:    orders,
		audit:     audit,
		store:     store,
		retention: retention,
		now:       time.Now,
	}
}

// Get returns one order by id.
func (u *BrowseUseCase) Get(ctx context.Context, orderID string) (*model.Order, error) {
	return u.orders.GetByID(ctx, orderID)
}

// ListByRequester returns the requester's orders, newest first.
func (u *BrowseUseCase) ListByRequester(ctx context.Context, requesterID int64) ([]model.Order, error) {
	return u.orders.ListByRequester(ctx, requesterID)
}

// ListByStatus returns all orders in one lifecycle status.
func (u *BrowseUseCase) ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	if !status.Valid() {
		return nil, domainErrors.NewValidation("status", "unknown status")
	}
	return u.orders.ListByStatus(ctx, status)
}

// History returns the order's message log.
func (u *BrowseUseCase) History(ctx context.Context, orderID string) ([]model.HistoryMessage, error) {
	if _, err := u.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return u.audit.MessageHistory(ctx, orderID)
}

// ExpiredDeliveries returns completed orders whose delivered files outlived
// the retention cutoff.
func (u *BrowseUseCase) ExpiredDeliveries(ctx context.Context, cutoff time.Time) ([]model.Order, error) {
	return u.orders.ListCompletedBefore(ctx, cutoff)
}

// DeliveredArchive packs the delivered files of a completed order into a zip.
// Files of an order completed longer than the retention window ago are gone.
func (u *BrowseUseCase) DeliveredArchive(ctx context.Context, orderID string) ([]byte, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CompletedAt != nil && !IsFileAvailable(*order.CompletedAt, u.now(), u.retention) {
		return nil, domainErrors.ErrNotFound
	}

	stored, err := u.store.ListFiles(u.store.Folder(orderID, order.RequesterID, files.NamespaceDelivered))
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, domainErrors.ErrNotFound
	}
	return files.ArchiveZip(stored)
}

// IsFileAvailable reports whether delivered work completed at completedAt is
// still inside the retention window at the given instant.
func IsFileAvailable(completedAt, now time.Time, window time.Duration) bool {
	return now.Sub(completedAt) <= window
}
