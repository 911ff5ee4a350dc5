package app

import (
	"context"
	"io"
	"time"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/pkg/auth"
	"github.com/polkiloo/orderdesk/internal/usecase"
)

// DeskFacade aggregates the use cases behind one application surface used by
// the HTTP handlers, the chat transport and the retention scheduler.
type DeskFacade struct {
	intake    *usecase.IntakeUseCase
	lifecycle *usecase.LifecycleUseCase
	browse    *usecase.BrowseUseCase
	templates *usecase.TemplateUseCase

	hasher   auth.PasswordHasher
	strategy auth.Strategy

	adminID           int64
	adminPasswordHash string
}

// NewDeskFacade constructs DeskFacade.
func NewDeskFacade(
	intake *usecase.IntakeUseCase,
	lifecycle *usecase.LifecycleUseCase,
	browse *usecase.BrowseUseCase,
	templates *usecase.TemplateUseCase,
	hasher auth.PasswordHasher,
	strategy auth.Strategy,
	adminID int64,
	adminPasswordHash string,
) *DeskFacade {
	return &DeskFacade{
		intake:            intake,
		lifecycle:         lifecycle,
		browse:            browse,
		templates:         templates,
		hasher:            hasher,
		strategy:          strategy,
		adminID:           adminID,
		adminPasswordHash: adminPasswordHash,
	}
}

// Login exchanges the administrator password for a signed token.
func (f *DeskFacade) Login(password string) (string, error) {
	if f.adminPasswordHash == "" {
		return "", domainErrors.ErrInvalidCredentials
	}
	if err := f.hasher.Compare(f.adminPasswordHash, password); err != nil {
		return "", domainErrors.ErrInvalidCredentials
	}
	return f.strategy.IssueToken(f.adminID)
}

// ParseToken validates a token and returns the encoded administrator id.
func (f *DeskFacade) ParseToken(token string) (int64, error) {
	id, err := f.strategy.ParseToken(token)
	if err != nil {
		return 0, err
	}
	if id != f.adminID {
		return 0, auth.ErrInvalidToken
	}
	return id, nil
}

// BeginIntake opens an order dialog for a requester.
func (f *DeskFacade) BeginIntake(ctx context.Context, requesterID int64, requesterName string) (*usecase.IntakeSession, error) {
	return f.intake.Begin(ctx, requesterID, requesterName)
}

// Intake exposes the dialog state machine for the chat transport.
func (f *DeskFacade) Intake() *usecase.IntakeUseCase {
	return f.intake
}

// Order returns one order.
func (f *DeskFacade) Order(ctx context.Context, orderID string) (*model.Order, error) {
	return f.browse.Get(ctx, orderID)
}

// Orders lists orders, optionally narrowed to one status.
func (f *DeskFacade) Orders(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	return f.browse.ListByStatus(ctx, status)
}

// RequesterOrders lists one requester's orders.
func (f *DeskFacade) RequesterOrders(ctx context.Context, requesterID int64) ([]model.Order, error) {
	return f.browse.ListByRequester(ctx, requesterID)
}

// TakeOrder assigns an order to a fulfiller.
func (f *DeskFacade) TakeOrder(ctx context.Context, orderID string, fulfillerID int64, fulfillerName string) (*model.Order, error) {
	return f.lifecycle.Take(ctx, orderID, fulfillerID, fulfillerName)
}

// SetPrice fixes the final amount and issues a payment link.
func (f *DeskFacade) SetPrice(ctx context.Context, orderID string, amount float64) (*model.Order, error) {
	return f.lifecycle.SetPrice(ctx, orderID, amount)
}

// ConfirmPayment marks an order paid manually.
func (f *DeskFacade) ConfirmPayment(ctx context.Context, orderID string) (*model.Order, error) {
	return f.lifecycle.ConfirmPayment(ctx, orderID)
}

// PaymentCallback verifies and applies a gateway payment notification.
func (f *DeskFacade) PaymentCallback(ctx context.Context, params map[string]string) (string, error) {
	return f.lifecycle.HandlePaymentCallback(ctx, params)
}

// DeliverWork stores uploaded files and advances the order.
func (f *DeskFacade) DeliverWork(ctx context.Context, orderID string, uploads []usecase.Upload) (*model.Order, error) {
	return f.lifecycle.Deliver(ctx, orderID, uploads)
}

// AcceptWork completes the order on the requester's approval.
func (f *DeskFacade) AcceptWork(ctx context.Context, orderID string) (*model.Order, error) {
	return f.lifecycle.Accept(ctx, orderID)
}

// RequestRevision sends delivered work back for rework.
func (f *DeskFacade) RequestRevision(ctx context.Context, orderID string) (*model.Order, error) {
	return f.lifecycle.RequestRevision(ctx, orderID)
}

// CancelOrder aborts an active order.
func (f *DeskFacade) CancelOrder(ctx context.Context, orderID string, initiator model.SenderRole) (*model.Order, error) {
	return f.lifecycle.Cancel(ctx, orderID, initiator)
}

// ForceComplete closes an order administratively.
func (f *DeskFacade) ForceComplete(ctx context.Context, orderID string) (*model.Order, error) {
	return f.lifecycle.ForceComplete(ctx, orderID)
}

// UpdateTags replaces the order's tags.
func (f *DeskFacade) UpdateTags(ctx context.Context, orderID string, tags []string) error {
	return f.lifecycle.UpdateTags(ctx, orderID, tags)
}

// PurgeOrder erases an order with its history and attachments.
func (f *DeskFacade) PurgeOrder(ctx context.Context, orderID string) error {
	return f.lifecycle.Purge(ctx, orderID)
}

// SendMessage relays a message between the parties.
func (f *DeskFacade) SendMessage(ctx context.Context, orderID string, sender model.SenderRole, text string) error {
	return f.lifecycle.SendMessage(ctx, orderID, sender, text)
}

// History returns the order's message log.
func (f *DeskFacade) History(ctx context.Context, orderID string) ([]model.HistoryMessage, error) {
	return f.browse.History(ctx, orderID)
}

// DeliveredArchive returns the delivered files packed as a zip.
func (f *DeskFacade) DeliveredArchive(ctx context.Context, orderID string) ([]byte, error) {
	return f.browse.DeliveredArchive(ctx, orderID)
}

// CreateTemplate stores a canned reply.
func (f *DeskFacade) CreateTemplate(ctx context.Context, name, category, body string) (*model.ResponseTemplate, error) {
	return f.templates.Create(ctx, name, category, body)
}

// Templates lists canned replies.
func (f *DeskFacade) Templates(ctx context.Context) ([]model.ResponseTemplate, error) {
	return f.templates.List(ctx)
}

// Template returns one canned reply.
func (f *DeskFacade) Template(ctx context.Context, id int64) (*model.ResponseTemplate, error) {
	return f.templates.Get(ctx, id)
}

// DeleteTemplate removes a canned reply.
func (f *DeskFacade) DeleteTemplate(ctx context.Context, id int64) error {
	return f.templates.Delete(ctx, id)
}

// OrdersInProgress feeds the deadline reminder sweep.
func (f *DeskFacade) OrdersInProgress(ctx context.Context) ([]model.Order, error) {
	return f.browse.ListByStatus(ctx, model.OrderStatusInProgress)
}

// OrdersPastRetention feeds the retention sweep.
func (f *DeskFacade) OrdersPastRetention(ctx context.Context, cutoff time.Time) ([]model.Order, error) {
	return f.browse.ExpiredDeliveries(ctx, cutoff)
}

// PurgeDeliveredFiles removes delivered files past retention.
func (f *DeskFacade) PurgeDeliveredFiles(ctx context.Context, order model.Order) error {
	return f.lifecycle.PurgeDelivered(ctx, order)
}

// RemindDeadline notifies about an approaching deadline.
func (f *DeskFacade) RemindDeadline(ctx context.Context, order model.Order, daysLeft int) error {
	return f.lifecycle.RemindDeadline(ctx, order, daysLeft)
}

// AddIntakeFile stores one attachment in the requester's open dialog.
func (f *DeskFacade) AddIntakeFile(requesterID int64, r io.Reader, name string) (string, error) {
	return f.intake.AddFile(requesterID, r, name)
}
