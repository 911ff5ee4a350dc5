package test

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// OrderRepositoryStub is an in-memory OrderRepository with the same
// conditional-update semantics as the persistent one. Individual methods can
// be overridden through the Fn fields.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	Orders map[string]*model.Order
	Err    error

	CreateFn       func(context.Context, *model.Order) error
	GetByIDFn      func(context.Context, string) (*model.Order, error)
	CountActiveFn  func(context.Context, int64) (int, error)
	UpdateStatusFn func(context.Context, string, []model.OrderStatus, model.OrderStatus) (bool, error)
}

// NewOrderRepositoryStub constructs a stub with an initialized map.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{Orders: make(map[string]*model.Order)}
}

// Seed inserts an order bypassing duplicate checks.
func (s *OrderRepositoryStub) Seed(order *model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *order
	s.Orders[order.ID] = &clone
}

// Get returns the stored order without copying, for assertions.
func (s *OrderRepositoryStub) Get(id string) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Orders[id]
}

// Create stores a new order or reports a duplicate identifier.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Orders[order.ID]; exists {
		return domainErrors.ErrDuplicateID
	}
	clone := *order
	s.Orders[order.ID] = &clone
	return nil
}

// GetByID returns a copy of the stored order.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	clone := *order
	return &clone, nil
}

// ListByRequester returns the requester's orders.
func (s *OrderRepositoryStub) ListByRequester(ctx context.Context, requesterID int64) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, order := range s.Orders {
		if order.RequesterID == requesterID {
			result = append(result, *order)
		}
	}
	return result, nil
}

// ListByStatus returns orders in one status.
func (s *OrderRepositoryStub) ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, order := range s.Orders {
		if order.Status == status {
			result = append(result, *order)
		}
	}
	return result, nil
}

// CountActive counts the requester's non-terminal orders.
func (s *OrderRepositoryStub) CountActive(ctx context.Context, requesterID int64) (int, error) {
	if s.CountActiveFn != nil {
		return s.CountActiveFn(ctx, requesterID)
	}
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, order := range s.Orders {
		if order.RequesterID == requesterID && order.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

func statusIn(status model.OrderStatus, set []model.OrderStatus) bool {
	for _, candidate := range set {
		if candidate == status {
			return true
		}
	}
	return false
}

func (s *OrderRepositoryStub) conditional(id string, from []model.OrderStatus, apply func(*model.Order)) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[id]
	if !ok || !statusIn(order.Status, from) {
		return false, nil
	}
	apply(order)
	return true, nil
}

// UpdateStatus applies a guarded status change.
func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, id string, from []model.OrderStatus, to model.OrderStatus) (bool, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, id, from, to)
	}
	return s.conditional(id, from, func(order *model.Order) {
		order.Status = to
	})
}

// SetPrice fixes the amount, link and waiting_payment status.
func (s *OrderRepositoryStub) SetPrice(ctx context.Context, id string, from []model.OrderStatus, amount float64, paymentLink string) (bool, error) {
	return s.conditional(id, from, func(order *model.Order) {
		order.FinalAmount = amount
		order.PaymentLink = paymentLink
		order.Status = model.OrderStatusWaitingPayment
	})
}

// MarkPaid applies the paid transition when a link exists.
func (s *OrderRepositoryStub) MarkPaid(ctx context.Context, id string, from []model.OrderStatus) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[id]
	if !ok || !statusIn(order.Status, from) || order.PaymentLink == "" {
		return false, nil
	}
	order.Status = model.OrderStatusPaid
	order.PaymentStatus = model.PaymentStatusPaid
	return true, nil
}

// SetDelivered replaces delivered files and sets work_uploaded.
func (s *OrderRepositoryStub) SetDelivered(ctx context.Context, id string, from []model.OrderStatus, files []string) (bool, error) {
	return s.conditional(id, from, func(order *model.Order) {
		order.DeliveredFiles = append([]string(nil), files...)
		order.Status = model.OrderStatusWorkUploaded
	})
}

// Complete closes the order with a completion timestamp.
func (s *OrderRepositoryStub) Complete(ctx context.Context, id string, from []model.OrderStatus, completedAt time.Time) (bool, error) {
	return s.conditional(id, from, func(order *model.Order) {
		order.Status = model.OrderStatusCompleted
		at := completedAt
		order.CompletedAt = &at
	})
}

// AssignFulfiller records the fulfiller and sets in_progress.
func (s *OrderRepositoryStub) AssignFulfiller(ctx context.Context, id string, from []model.OrderStatus, fulfillerID int64, fulfillerName string) (bool, error) {
	return s.conditional(id, from, func(order *model.Order) {
		order.FulfillerID = fulfillerID
		order.FulfillerName = fulfillerName
		order.Status = model.OrderStatusInProgress
	})
}

// UpdateTags replaces the tag set.
func (s *OrderRepositoryStub) UpdateTags(ctx context.Context, id string, tags []string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	order.Tags = append([]string(nil), tags...)
	return nil
}

// ListCompletedBefore returns completed orders past the cutoff that still
// hold delivered files.
func (s *OrderRepositoryStub) ListCompletedBefore(ctx context.Context, cutoff time.Time) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, order := range s.Orders {
		if order.Status == model.OrderStatusCompleted && order.CompletedAt != nil &&
			order.CompletedAt.Before(cutoff) && len(order.DeliveredFiles) > 0 {
			result = append(result, *order)
		}
	}
	return result, nil
}

// Delete removes the order.
func (s *OrderRepositoryStub) Delete(ctx context.Context, id string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Orders[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.Orders, id)
	return nil
}

// AdminActionRecord is one audited call captured by AuditRepositoryStub.
type AdminActionRecord struct {
	AdminID int64
	Action  string
	OrderID string
}

// AuditRepositoryStub records audit calls in memory.
type AuditRepositoryStub struct {
	mu       sync.Mutex
	Actions  []AdminActionRecord
	Messages []model.HistoryMessage
	Err      error
}

// LogAdminAction appends the action record.
func (s *AuditRepositoryStub) LogAdminAction(ctx context.Context, adminID int64, action, orderID string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Actions = append(s.Actions, AdminActionRecord{AdminID: adminID, Action: action, OrderID: orderID})
	return nil
}

// SaveMessage appends the history message.
func (s *AuditRepositoryStub) SaveMessage(ctx context.Context, orderID string, sender model.SenderRole, body string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, model.HistoryMessage{
		ID:        int64(len(s.Messages) + 1),
		OrderID:   orderID,
		Sender:    sender,
		Body:      body,
		CreatedAt: time.Now(),
	})
	return nil
}

// MessageHistory returns stored messages for one order.
func (s *AuditRepositoryStub) MessageHistory(ctx context.Context, orderID string) ([]model.HistoryMessage, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.HistoryMessage
	for _, message := range s.Messages {
		if message.OrderID == orderID {
			result = append(result, message)
		}
	}
	return result, nil
}

// TemplateRepositoryStub stores response templates in memory.
type TemplateRepositoryStub struct {
	mu        sync.Mutex
	Templates []model.ResponseTemplate
	Next      int64
	Err       error
}

// Create stores a template and assigns the next identifier.
func (s *TemplateRepositoryStub) Create(ctx context.Context, name, category, body string) (*model.ResponseTemplate, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Next++
	template := model.ResponseTemplate{ID: s.Next, Name: name, Category: category, Body: body}
	s.Templates = append(s.Templates, template)
	return &template, nil
}

// List returns stored templates.
func (s *TemplateRepositoryStub) List(ctx context.Context) ([]model.ResponseTemplate, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ResponseTemplate(nil), s.Templates...), nil
}

// Get returns one template by id.
func (s *TemplateRepositoryStub) Get(ctx context.Context, id int64) (*model.ResponseTemplate, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, template := range s.Templates {
		if template.ID == id {
			clone := template
			return &clone, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// Delete removes a template by id.
func (s *TemplateRepositoryStub) Delete(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, template := range s.Templates {
		if template.ID == id {
			s.Templates = append(s.Templates[:i], s.Templates[i+1:]...)
			return nil
		}
	}
	return domainErrors.ErrNotFound
}
