package repository

import (
	"context"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// AuditRepository records append-only administrative actions and message history.
type AuditRepository interface {
	LogAdminAction(ctx context.Context, adminID int64, action, orderID string) error
	SaveMessage(ctx context.Context, orderID string, sender model.SenderRole, body string) error
	MessageHistory(ctx context.Context, orderID string) ([]model.HistoryMessage, error)
}
