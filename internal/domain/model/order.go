package model

import "time"

// OrderStatus describes order lifecycle state.
type OrderStatus string

const (
	OrderStatusNew               OrderStatus = "new"
	OrderStatusInProgress        OrderStatus = "in_progress"
	OrderStatusWaitingPayment    OrderStatus = "waiting_payment"
	OrderStatusPaid              OrderStatus = "paid"
	OrderStatusWorkUploaded      OrderStatus = "work_uploaded"
	OrderStatusRevisionRequested OrderStatus = "revision_requested"
	OrderStatusCompleted         OrderStatus = "completed"
	OrderStatusCancelled         OrderStatus = "cancelled"
)

// PaymentStatus describes payment state of an order.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// transitions is the single source of truth for legal status changes.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusNew:               {OrderStatusInProgress, OrderStatusWaitingPayment, OrderStatusCancelled, OrderStatusCompleted},
	OrderStatusInProgress:        {OrderStatusWaitingPayment, OrderStatusCancelled, OrderStatusCompleted},
	OrderStatusWaitingPayment:    {OrderStatusPaid, OrderStatusCancelled, OrderStatusCompleted},
	OrderStatusPaid:              {OrderStatusWorkUploaded, OrderStatusCancelled, OrderStatusCompleted},
	OrderStatusWorkUploaded:      {OrderStatusCompleted, OrderStatusRevisionRequested, OrderStatusCancelled},
	OrderStatusRevisionRequested: {OrderStatusWorkUploaded, OrderStatusCancelled, OrderStatusCompleted},
}

// Valid reports whether status belongs to the closed enumeration.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusNew, OrderStatusInProgress, OrderStatusWaitingPayment,
		OrderStatusPaid, OrderStatusWorkUploaded, OrderStatusRevisionRequested,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// IsActive reports whether the status counts toward the active-order quota.
func (s OrderStatus) IsActive() bool {
	switch s {
	case OrderStatusNew, OrderStatusInProgress, OrderStatusWaitingPayment,
		OrderStatusPaid, OrderStatusWorkUploaded:
		return true
	}
	return false
}

// ActiveStatuses returns the set of statuses counted toward the quota.
func ActiveStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusNew,
		OrderStatusInProgress,
		OrderStatusWaitingPayment,
		OrderStatusPaid,
		OrderStatusWorkUploaded,
	}
}

// CanTransition reports whether from -> to is a legal lifecycle transition.
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// PlagiarismCheck is present only when originality screening was requested.
type PlagiarismCheck struct {
	System         PlagiarismSystem
	MinOriginality int
}

// Order describes a tracked unit of work from intake to completion.
type Order struct {
	ID            string
	RequesterID   int64
	RequesterName string

	Discipline  Discipline
	WorkType    WorkType
	CustomWork  string
	Description string

	Deadline  time.Time
	CreatedAt time.Time
	// CompletedAt is set exactly once, on the transition into completed.
	CompletedAt *time.Time

	// RequestedBudget zero means the fulfiller sets the price.
	RequestedBudget float64
	FinalAmount     float64
	PaymentStatus   PaymentStatus
	PaymentLink     string

	Plagiarism *PlagiarismCheck

	SubmittedFiles []string
	DeliveredFiles []string

	Status        OrderStatus
	Tags          []string
	FulfillerID   int64
	FulfillerName string
}

// HasFinalPrice reports whether the fulfiller has priced the order.
func (o *Order) HasFinalPrice() bool {
	return o.FinalAmount > 0
}
