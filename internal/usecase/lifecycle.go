package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/polkiloo/orderdesk/internal/adapter/notify"
	"github.com/polkiloo/orderdesk/internal/adapter/payment"
	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
	"github.com/polkiloo/orderdesk/internal/pkg/keymutex"
	"github.com/polkiloo/orderdesk/internal/storage/files"
)

// Upload is one incoming delivery attachment.
type Upload struct {
	Name    string
	Content io.Reader
}

// LifecycleUseCase owns every status transition after order creation.
// Transitions on the same order are serialized; the persisted update is a
// single conditional statement, so a lost race surfaces as an illegal
// transition instead of a partial write.
type LifecycleUseCase struct {
	orders   repository.OrderRepository
	audit    repository.AuditRepository
	store    AttachmentStore
	gateway  payment.Gateway
	notifier notify.Channel
	logger   *slog.Logger

	locks     *keymutex.KeyMutex
	minBudget float64
	adminID   int64
	now       func() time.Time
}

// NewLifecycleUseCase constructs LifecycleUseCase.
func NewLifecycleUseCase(
	orders repository.OrderRepository,
	audit repository.AuditRepository,
	store AttachmentStore,
	gateway payment.Gateway,
	notifier notify.Channel,
	logger *slog.Logger,
	minBudget float64,
	adminID int64,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		orders:    orders,
		audit:     audit,
		store:     store,
		gateway:   gateway,
		notifier:  notifier,
		logger:    logger,
		locks:     keymutex.New(),
		minBudget: minBudget,
		adminID:   adminID,
		now:       time.Now,
	}
}

// Take assigns the order to a fulfiller and starts the work.
func (u *LifecycleUseCase) Take(ctx context.Context, orderID string, fulfillerID int64, fulfillerName string) (*model.Order, error) {
	u.locks.Lock(orderID)
	defer u.locks.Unlock(orderID)

	order, err := u.guarded(ctx, orderID, model.OrderStatusInProgress)
	if err != nil {
		return nil, err
	}

	updated, err := u.orders.AssignFulfiller(ctx, orderID, []model.OrderStatus{order.Status}, fulfillerID, fulfillerName)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, transitionError(order.Status, model.OrderStatusInProgress)
	}

	order.Status = model.OrderStatusInProgress
	order.FulfillerID = fulfillerID
	order.FulfillerName = fulfillerName

	u.logAction(ctx, fulfillerID, "take_order", orderID)
	u.post(ctx, order.RequesterID, fmt.Sprintf("Order %s is now in progress.", orderID))
	return order, nil
}

// SetPrice fixes the final amount, generates a payment link and moves the
// order to waiting_payment.
func (u *LifecycleUseCase) SetPrice(ctx context.Context, orderID string, amount float64) (*model.Order, error) {
	if amount < u.minBudget {
		return nil, domainErrors.ErrBudgetTooLow
	}

	u.locks.Lock(orderID)
	defer u.locks.Unlock(orderID)

	order, err := u.guarded(ctx, orderID, model.OrderStatusWaitingPayment)
	if err != nil {
		return nil, err
	}

	link := u.gateway.CreateLink(orderID, amount, "Order "+orderID, order.RequesterID)
	updated, err := u.orders.SetPrice(ctx, orderID, []model.OrderStatus{order.Status}, amount, link)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, transitionError(order.Status, model.OrderStatusWaitingPayment)
	}

	order.Status = model.OrderStatusWaitingPayment
	order.FinalAmount = amount
	order.PaymentLink = link

	u.logAction(ctx, u.adminID, "set_price_"+strconv.FormatFloat(amount, 'f', -1, 64), orderID)
	u.post(ctx, order.RequesterID, fmt.Sprintf("Order %s is priced at %s. Pay here: %s", orderID, formatMoney(amount), link))
	return order, nil
}

// ConfirmPayment marks the order paid. Requires a previously issued payment link.
func (u *LifecycleUseCase) ConfirmPayment(ctx context.Context, orderID string) (*model.Order, error) {
	u.locks.Lock(orderID)
	defer u.locks.Unlock(orderID)
	return u.confirmPayment(ctx, orderID)
}

func (u *LifecycleUseCase) confirmPayment(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := u.guarded(ctx, orderID, model.OrderStatusPaid)
	if err != nil {
		return nil, err
	}
	if order.PaymentLink == "" {
		return nil, transitionError(order.Status, model.OrderStatusPaid)
	}

	updated, err := u.orders.MarkPaid(ctx, orderID, []model.OrderStatus{order.Status})
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, transitionError(order.Status, model.OrderStatusPaid)
	}

	order.Status = model.OrderStatusPaid
	order.PaymentStatus = model.PaymentStatusPaid

	u.post(ctx, u.fulfillerOf(order), fmt.Sprintf("Order %s has been paid.", orderID))
	u.post(ctx, order.RequesterID, fmt.Sprintf("Payment for order %s confirmed.", orderID))
	return order, nil
}

// HandlePaymentCallback verifies a gateway callback and confirms payment.
// Returns the order id for the gateway acknowledgement.
func (u *LifecycleUseCase) HandlePaymentCallback(ctx context.Context, params map[string]string) (string, error) {
	orderID := params["InvId"]
	if orderID == "" {
		return "", domainErrors.NewValidation("InvId", "missing order id")
	}
	amount, err := strconv.ParseFloat(params["OutSum"], 64)
	if err != nil {
		return "", domainErrors.NewValidation("OutSum", "invalid amount")
	}

	u.locks.Lock(orderID)
	defer u.locks.Unlock(orderID)

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.FinalAmount != amount || !u.gateway.VerifyCallback(params, orderID, amount) {
		return "", domainErrors.ErrInvalidCredentials
	}

	if _, err := u.confirmPayment(ctx, orderID); err != nil {
		return "", err
	}
	return orderID, nil
}

// Deliver stores the uploaded work and moves the order to work_uploaded.
// Files from earlier deliveries are kept; new uploads are appended.
func (u *LifecycleUseCase) Deliver(ctx context.Context, orderID string, uploads []Upload) (*model.Order, error) {
	if len(uploads) == 0 {
		return nil, domainErrors.NewValidation("files", "at least one file is required")
	}

	u.locks.Lock(orderID)
	defer u.locks.Unlock(orderID)

	order, err := u.guarded(ctx, orderID, model.OrderStatusWorkUploaded)
	if err != nil {
		return nil, err
	}

	folder, err := u.store.EnsureFolder(orderID, order.RequesterID, files.NamespaceDelivered)
	if err != nil {
		return nil, err
	}

	names := append([]string(nil), order.DeliveredFiles...)
	for _, upload := range uploads {
		if err := ValidateFileName(upload.Name); err != nil {
			return nil, err
		}
		stored, err := u.store.AddFile(folder, upload.Content, upload.Name)
		if err != nil {
			return nil, err
		}
		names = append(names, stored.Name)
	}

	updated, err := u.orders.SetDelivered(ctx, orderID, []model.OrderStatus{order.Status}, names)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, transitionError(order.Status, model.OrderStatusWorkUploaded)
	}

	order.Status = model.OrderStatusWorkUploaded
	order.DeliveredFiles = names

	u.logAction(ctx, u.fulfillerOf(order), "deliver_work", orderID)
	u.post(ctx, order.RequesterID, fmt.Sprintf("Work for order %s is uploaded. Accept it or request a revision.", orderID))
	return order, nil
}

// Accept completes the order on the requester's approval.
func (u *LifecycleUseCase) Accept(ctx context.Context, orderID string) (*model.Order, error) {
	u.locks.Lock(orderID)
	defer u.locks.Unlock(orderID)

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusWorkUploaded {
		return nil, transitionError(order.Status, model.OrderStatusCompleted)
	}

	completedAt := u.now()
	updated, err := u.orders.Complete(ctx, orderID, []model.OrderStatus{model.OrderStatusWorkUploaded}, completedAt)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, transitionError(order.Status, model.OrderStatusCompleted)
	}

	order.Status = model.OrderStatusCompleted
	order.CompletedAt = &completedAt

	u.post(ctx, u.fulfillerOf(order), fmt.Sprintf("Order %s was accepted by the requester.", orderID))
	return order, nil
}

// RequestRevision returns uploaded work to the fulfiller for rework.
func (u *LifecycleUseCase) RequestRevision(ctx context.Context, orderID string) (*model.Order, error) {
	u.locks.Lock(orderID)
	defer u.locks.Unlock(orderID)

	order, err := u.guarded(ctx, orderID, model.OrderStatusRevisionRequested)
	if err != nil {
		return nil, err
	}

	updated, err := u.orders.UpdateStatus(ctx, orderID, []model.OrderStatus{order.Status}, model.OrderStatusRevisionRequested)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, transitionError(order.Status, model.OrderStatusRevisionRequested)
	}

	order.Status = model.OrderStatusRevisionRequested

	u.post(ctx, u.fulfillerOf(order), fmt.Sprintf("Revision requested for order %s.", orderID))
	return order, nil
}

// Cancel aborts an active order and notifies the counterpart of the initiator.
func (u *LifecycleUseCase) Cancel(ctx context.Context, orderID string, initiator model.SenderRole) (*model.Order, error) {
	u.locks.Lock(orderID)
	defer u.locks.Unlock(orderID)

	order, err := u.guarded(ctx, orderID, model.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}

	updated, err := u.orders.UpdateStatus(ctx, orderID, []model.OrderStatus{order.Status}, model.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, transitionError(order.Status, model.OrderStatusCancelled)
	}

	order.Status = model.OrderStatusCancelled

	if initiator == model.SenderRoleFulfiller {
		u.logAction(ctx, u.fulfillerOf(order), "cancel_order", orderID)
		u.post(ctx, order.RequesterID, fmt.Sprintf("Order %s was cancelled.", orderID))
	} else {
		u.post(ctx, u.fulfillerOf(order), fmt.Sprintf("Order %s was cancelled by the requester.", orderID))
	}
	return order, nil
}

// ForceComplete closes an active order administratively.
func (u *LifecycleUseCase) ForceComplete(ctx context.Context, orderID string) (*model.Order, error) {
	u.locks.Lock(orderID)
	defer u.locks.Unlock(orderID)

	order, err := u.guarded(ctx, orderID, model.OrderStatusCompleted)
	if err != nil {
		return nil, err
	}

	completedAt := u.now()
	updated, err := u.orders.Complete(ctx, orderID, []model.OrderStatus{order.Status}, completedAt)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, transitionError(order.Status, model.OrderStatusCompleted)
	}

	order.Status = model.OrderStatusCompleted
	order.CompletedAt = &completedAt

	u.logAction(ctx, u.adminID, "force_complete", orderID)
	u.post(ctx, order.RequesterID, fmt.Sprintf("Order %s is closed.", orderID))
	return order, nil
}

// UpdateTags replaces the order's tag set.
func (u *LifecycleUseCase) UpdateTags(ctx context.Context, orderID string, tags []string) error {
	if err := u.orders.UpdateTags(ctx, orderID, tags); err != nil {
		return err
	}
	u.logAction(ctx, u.adminID, "update_tags", orderID)
	return nil
}

// Purge erases the order row, its history and both attachment folders.
func (u *LifecycleUseCase) Purge(ctx context.Context, orderID string) error {
	u.locks.Lock(orderID)
	defer u.locks.Unlock(orderID)

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := u.orders.Delete(ctx, orderID); err != nil {
		return err
	}

	for _, ns := range []files.Namespace{files.NamespaceSubmitted, files.NamespaceDelivered} {
		if err := u.store.Purge(u.store.Folder(orderID, order.RequesterID, ns)); err != nil {
			u.logger.Error("purge attachments", slog.String("order_id", orderID), slog.Any("error", err))
		}
	}

	u.logAction(ctx, u.adminID, "purge_order", orderID)
	return nil
}

// SendMessage relays a message between the parties and records it in history.
func (u *LifecycleUseCase) SendMessage(ctx context.Context, orderID string, sender model.SenderRole, text string) error {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := u.audit.SaveMessage(ctx, orderID, sender, text); err != nil {
		return err
	}

	recipient := order.RequesterID
	if sender == model.SenderRoleRequester {
		recipient = u.fulfillerOf(order)
	}
	u.post(ctx, recipient, fmt.Sprintf("Message on order %s: %s", orderID, text))
	return nil
}

// PurgeDelivered removes the delivered files of an order whose retention
// window has passed. The order row and its history stay.
func (u *LifecycleUseCase) PurgeDelivered(ctx context.Context, order model.Order) error {
	return u.store.Purge(u.store.Folder(order.ID, order.RequesterID, files.NamespaceDelivered))
}

// RemindDeadline notifies the requester and the fulfiller about an
// approaching deadline.
func (u *LifecycleUseCase) RemindDeadline(ctx context.Context, order model.Order, daysLeft int) error {
	text := fmt.Sprintf("Order %s is due in %d day(s), deadline %s.", order.ID, daysLeft, order.Deadline.Format(DeadlineLayout))
	if err := u.notifier.Notify(ctx, order.RequesterID, text); err != nil {
		return err
	}
	return u.notifier.Notify(ctx, u.fulfillerOf(&order), text)
}

// guarded loads the order and checks the transition against the lifecycle table.
func (u *LifecycleUseCase) guarded(ctx context.Context, orderID string, target model.OrderStatus) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(order.Status, target) {
		return nil, transitionError(order.Status, target)
	}
	return order, nil
}

func (u *LifecycleUseCase) fulfillerOf(order *model.Order) int64 {
	if order.FulfillerID != 0 {
		return order.FulfillerID
	}
	return u.adminID
}

// post sends a best-effort notification. A delivery failure is logged and
// never rolls back the committed transition.
func (u *LifecycleUseCase) post(ctx context.Context, actorID int64, text string) {
	if err := u.notifier.Notify(ctx, actorID, text); err != nil {
		u.logger.Warn("notification failed", slog.Int64("actor_id", actorID), slog.Any("error", err))
	}
}

func (u *LifecycleUseCase) logAction(ctx context.Context, actorID int64, action, orderID string) {
	if err := u.audit.LogAdminAction(ctx, actorID, action, orderID); err != nil {
		u.logger.Warn("audit log failed", slog.String("order_id", orderID), slog.Any("error", err))
	}
}

func transitionError(from, to model.OrderStatus) error {
	return fmt.Errorf("%w: %s to %s", domainErrors.ErrInvalidTransition, from, to)
}

func formatMoney(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
