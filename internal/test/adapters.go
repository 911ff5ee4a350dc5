package test

import (
	"context"
	"sync"

	"github.com/polkiloo/orderdesk/internal/adapter/notify"
)

// Notification is one captured Notify call.
type Notification struct {
	ActorID int64
	Text    string
}

// NotifierStub captures notifications instead of delivering them.
type NotifierStub struct {
	mu   sync.Mutex
	Sent []Notification
	Err  error
}

// Notify records the notification or returns the configured error.
func (s *NotifierStub) Notify(ctx context.Context, actorID int64, text string, attachments ...notify.Attachment) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, Notification{ActorID: actorID, Text: text})
	return nil
}

// For returns the notifications delivered to one actor.
func (s *NotifierStub) For(actorID int64) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []Notification
	for _, notification := range s.Sent {
		if notification.ActorID == actorID {
			result = append(result, notification)
		}
	}
	return result
}

// GatewayStub fabricates deterministic payment links for tests.
type GatewayStub struct {
	Links    []string
	VerifyOK bool
}

// CreateLink returns a predictable link and records it.
func (s *GatewayStub) CreateLink(orderID string, amount float64, description string, payerID int64) string {
	link := "https://pay.test/" + orderID
	s.Links = append(s.Links, link)
	return link
}

// VerifyCallback returns the configured verdict.
func (s *GatewayStub) VerifyCallback(params map[string]string, orderID string, amount float64) bool {
	return s.VerifyOK
}
