package model

import "time"

// SenderRole identifies who authored a history message.
type SenderRole string

const (
	SenderRoleRequester SenderRole = "requester"
	SenderRoleFulfiller SenderRole = "fulfiller"
)

// AdminAction is an append-only record of a fulfiller action.
type AdminAction struct {
	ID        int64
	AdminID   int64
	Action    string
	OrderID   string
	CreatedAt time.Time
}

// HistoryMessage is an append-only record of a message exchanged over an order.
type HistoryMessage struct {
	ID        int64
	OrderID   string
	Sender    SenderRole
	Body      string
	CreatedAt time.Time
}

// ResponseTemplate is a stored reply the fulfiller can reuse.
type ResponseTemplate struct {
	ID       int64
	Name     string
	Category string
	Body     string
}
