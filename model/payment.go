package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending  OrderStatus = "PENDING"
	OrderCaptured OrderStatus = "CAPTURED"
	OrderFailed   OrderStatus = "FAILED"
)

// DepositOrder tracks an in-flight PayPal checkout order. The status guard on
// PENDING is what makes repeated capture confirmations for the same order a
// no-op.
type DepositOrder struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	PayPalOrderID string          `json:"paypal_order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	CapturedAt    *time.Time      `json:"captured_at,omitempty"`
}

type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "PENDING"
	PayoutCompleted PayoutStatus = "COMPLETED"
	PayoutFailed    PayoutStatus = "FAILED"
	PayoutReversed  PayoutStatus = "REVERSED"
)

// Payout tracks an in-flight PayPal payout batch. The unique payout_batch_id
// key guarantees the optimistic debit is applied exactly once per batch.
type Payout struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	PayoutBatchID string          `json:"payout_batch_id"`
	SenderBatchID string          `json:"sender_batch_id"`
	ReceiverEmail string          `json:"receiver_email"`
	Amount        decimal.Decimal `json:"amount"`
	Status        PayoutStatus    `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
