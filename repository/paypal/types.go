package paypal

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

type CreateOrderReq struct {
	Amount      decimal.Decimal
	Description string
	ReturnURL   string
	CancelURL   string
}

type CreateOrderResp struct {
	OrderID    string
	Status     string
	ApproveURL string
}

type CaptureResp struct {
	Status string
	// Amount is the captured value; zero when the processor did not report one.
	Amount decimal.Decimal
}

type PayoutReq struct {
	SenderBatchID string
	ReceiverEmail string
	Amount        decimal.Decimal
}

type PayoutResp struct {
	PayoutBatchID string
	BatchStatus   string
}

// Client is the payment gateway adapter. All calls obtain a credential from
// the token cache first; none of them touch wallet state.
type Client interface {
	CreateOrder(ctx context.Context, req CreateOrderReq) (*CreateOrderResp, error)
	CaptureOrder(ctx context.Context, orderID string) (*CaptureResp, error)
	CreatePayout(ctx context.Context, req PayoutReq) (*PayoutResp, error)
	GetPayoutBatch(ctx context.Context, batchID string) (string, error)
}

// GatewayError covers non-success HTTP statuses, malformed responses and
// transport failures on gateway calls.
type GatewayError struct {
	Op     string
	Status int
	Reason string
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("paypal %s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("paypal %s: %s (status %d)", e.Op, e.Reason, e.Status)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// CaptureError distinguishes a processor-reported API error (API=true, with
// the processor's error name) from an unexpected/network failure.
type CaptureError struct {
	API     bool
	Name    string
	Message string
	Err     error
}

func (e *CaptureError) Error() string {
	if e.API {
		return fmt.Sprintf("paypal capture rejected: %s: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("paypal capture failed: %v", e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// CredentialError wraps a failed token refresh. Every caller waiting on the
// in-flight refresh receives it.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string { return fmt.Sprintf("paypal token refresh: %v", e.Err) }

func (e *CredentialError) Unwrap() error { return e.Err }
