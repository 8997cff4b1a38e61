package paymentsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emmanueldavidson96/altbucks-server/model"
	paymentrepo "github.com/emmanueldavidson96/altbucks-server/repository/payment"
	"github.com/emmanueldavidson96/altbucks-server/repository/paypal"
	"github.com/emmanueldavidson96/altbucks-server/service/reconcile"
	"github.com/emmanueldavidson96/altbucks-server/service/settlement"
)

var (
	ErrOrderAlreadyCaptured = errors.New("deposit order already captured")
	ErrCaptureIncomplete    = errors.New("payment capture incomplete")
	ErrPayoutNotAccepted    = errors.New("payout not accepted")
)

// EnqueueReconcileFunc schedules a payout reconciliation job. Wired in main as
// a closure over the River client; best effort, the debit stands either way.
type EnqueueReconcileFunc func(ctx context.Context, args reconcile.PayoutArgs) error

type DepositCreated struct {
	OrderID    string `json:"order_id"`
	Status     string `json:"status"`
	ApproveURL string `json:"approve_url"`
}

type WithdrawalAccepted struct {
	PayoutBatchID string `json:"payout_batch_id"`
	BatchStatus   string `json:"batch_status"`
}

// Service bridges external payment outcomes and settlement: it is the only
// place a deposit becomes a credit and a payout initiation becomes a debit.
type Service interface {
	// CreateDeposit opens a checkout order at the gateway. No wallet mutation;
	// crediting happens only after capture confirmation.
	CreateDeposit(ctx context.Context, userID int64, amount decimal.Decimal) (*DepositCreated, error)

	// ConfirmDeposit captures the order and, on a completed capture with a
	// reported amount, credits the wallet once per order id.
	ConfirmDeposit(ctx context.Context, userID int64, orderID string) (*model.Wallet, error)

	// Withdraw pre-checks the balance, submits a payout and applies the
	// optimistic debit once the gateway reports the batch as PENDING.
	Withdraw(ctx context.Context, userID int64, receiverEmail string, amount decimal.Decimal) (*WithdrawalAccepted, error)
}

type service struct {
	gw        paypal.Client
	payments  paymentrepo.Repo
	settle    settlement.Service
	enqueue   EnqueueReconcileFunc
	returnURL string
	cancelURL string
}

func New(gw paypal.Client, payments paymentrepo.Repo, settle settlement.Service, enqueue EnqueueReconcileFunc, returnURL, cancelURL string) Service {
	return &service{
		gw:        gw,
		payments:  payments,
		settle:    settle,
		enqueue:   enqueue,
		returnURL: returnURL,
		cancelURL: cancelURL,
	}
}

func (s *service) CreateDeposit(ctx context.Context, userID int64, amount decimal.Decimal) (*DepositCreated, error) {
	if !amount.IsPositive() {
		return nil, settlement.ErrInvalidAmount
	}

	resp, err := s.gw.CreateOrder(ctx, paypal.CreateOrderReq{
		Amount:      amount,
		Description: "Task creator deposit",
		ReturnURL:   fmt.Sprintf("%s?userId=%d", s.returnURL, userID),
		CancelURL:   s.cancelURL,
	})
	if err != nil {
		return nil, err
	}

	if err := s.payments.InsertOrder(ctx, userID, resp.OrderID, amount); err != nil {
		return nil, err
	}

	return &DepositCreated{OrderID: resp.OrderID, Status: resp.Status, ApproveURL: resp.ApproveURL}, nil
}

func (s *service) ConfirmDeposit(ctx context.Context, userID int64, orderID string) (*model.Wallet, error) {
	capture, err := s.gw.CaptureOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if capture.Status != "COMPLETED" || !capture.Amount.IsPositive() {
		return nil, ErrCaptureIncomplete
	}

	// Status guard on the order row keeps a retried confirmation from
	// crediting twice.
	ok, err := s.payments.MarkOrderCaptured(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrderAlreadyCaptured
	}

	w, err := s.settle.Credit(ctx, userID, capture.Amount, model.Ref{Table: "deposit_orders", ID: orderID})
	if err != nil {
		// Money was captured at the processor but the wallet could not take
		// the credit. There is no compensation path here; flag it loudly.
		slog.Error("deposit captured but credit failed",
			"order_id", orderID, "user_id", userID, "amount", capture.Amount, "err", err)
		return nil, err
	}
	return w, nil
}

func (s *service) Withdraw(ctx context.Context, userID int64, receiverEmail string, amount decimal.Decimal) (*WithdrawalAccepted, error) {
	// Balance and role are checked before any external money movement.
	if err := s.settle.CheckWithdrawable(ctx, userID, amount); err != nil {
		return nil, err
	}

	senderBatchID := "Payouts_" + uuid.NewString()
	resp, err := s.gw.CreatePayout(ctx, paypal.PayoutReq{
		SenderBatchID: senderBatchID,
		ReceiverEmail: receiverEmail,
		Amount:        amount,
	})
	if err != nil {
		return nil, err
	}
	if resp.BatchStatus != "PENDING" {
		return nil, ErrPayoutNotAccepted
	}

	inserted, err := s.payments.InsertPayout(ctx, &model.Payout{
		UserID:        userID,
		PayoutBatchID: resp.PayoutBatchID,
		SenderBatchID: senderBatchID,
		ReceiverEmail: receiverEmail,
		Amount:        amount,
	})
	if err != nil {
		return nil, err
	}
	if inserted {
		if _, err := s.settle.Debit(ctx, userID, amount, model.Ref{Table: "payouts", ID: resp.PayoutBatchID}); err != nil {
			return nil, err
		}
	}

	if s.enqueue != nil {
		if err := s.enqueue(ctx, reconcile.PayoutArgs{
			PayoutBatchID: resp.PayoutBatchID,
			UserID:        userID,
			Amount:        amount,
		}); err != nil {
			slog.Warn("failed to enqueue payout reconciliation", "payout_batch_id", resp.PayoutBatchID, "err", err)
		}
	}

	return &WithdrawalAccepted{PayoutBatchID: resp.PayoutBatchID, BatchStatus: resp.BatchStatus}, nil
}
