package dto

import (
	"time"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// PlagiarismResponse mirrors an originality requirement.
type PlagiarismResponse struct {
	System         string `json:"system"`
	MinOriginality int    `json:"min_originality"`
}

// OrderResponse is the wire representation of an order.
type OrderResponse struct {
	ID            string `json:"id"`
	RequesterID   int64  `json:"requester_id"`
	RequesterName string `json:"requester_name,omitempty"`

	Discipline  string `json:"discipline"`
	WorkType    string `json:"work_type"`
	CustomWork  string `json:"custom_work,omitempty"`
	Description string `json:"description,omitempty"`

	Deadline    string     `json:"deadline"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	RequestedBudget float64 `json:"requested_budget"`
	FinalAmount     float64 `json:"final_amount"`
	PaymentStatus   string  `json:"payment_status"`
	PaymentLink     string  `json:"payment_link,omitempty"`

	Plagiarism *PlagiarismResponse `json:"plagiarism,omitempty"`

	SubmittedFiles []string `json:"submitted_files,omitempty"`
	DeliveredFiles []string `json:"delivered_files,omitempty"`

	Status        string   `json:"status"`
	Tags          []string `json:"tags,omitempty"`
	FulfillerID   int64    `json:"fulfiller_id,omitempty"`
	FulfillerName string   `json:"fulfiller_name,omitempty"`
}

// NewOrderResponse maps a domain order onto the wire shape.
func NewOrderResponse(order model.Order) OrderResponse {
	response := OrderResponse{
		ID:              order.ID,
		RequesterID:     order.RequesterID,
		RequesterName:   order.RequesterName,
		Discipline:      string(order.Discipline),
		WorkType:        string(order.WorkType),
		CustomWork:      order.CustomWork,
		Description:     order.Description,
		Deadline:        order.Deadline.Format("02.01.2006"),
		CreatedAt:       order.CreatedAt,
		CompletedAt:     order.CompletedAt,
		RequestedBudget: order.RequestedBudget,
		FinalAmount:     order.FinalAmount,
		PaymentStatus:   string(order.PaymentStatus),
		PaymentLink:     order.PaymentLink,
		SubmittedFiles:  order.SubmittedFiles,
		DeliveredFiles:  order.DeliveredFiles,
		Status:          string(order.Status),
		Tags:            order.Tags,
		FulfillerID:     order.FulfillerID,
		FulfillerName:   order.FulfillerName,
	}
	if order.Plagiarism != nil {
		response.Plagiarism = &PlagiarismResponse{
			System:         string(order.Plagiarism.System),
			MinOriginality: order.Plagiarism.MinOriginality,
		}
	}
	return response
}

// TakeRequest names the fulfiller taking the order.
type TakeRequest struct {
	FulfillerID   int64  `json:"fulfiller_id"`
	FulfillerName string `json:"fulfiller_name"`
}

// PriceRequest carries the final amount for an order.
type PriceRequest struct {
	Amount float64 `json:"amount"`
}

// TagsRequest replaces the order's tag set.
type TagsRequest struct {
	Tags []string `json:"tags"`
}

// MessageRequest relays one message to the order counterpart.
type MessageRequest struct {
	Text string `json:"text"`
}

// HistoryMessageResponse is one entry of the order message log.
type HistoryMessageResponse struct {
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
