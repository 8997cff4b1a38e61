package paymentrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/emmanueldavidson96/altbucks-server/model"
)

var ErrNotFound = errors.New("payment record not found")

type Repo interface {
	InsertOrder(ctx context.Context, userID int64, orderID string, amount decimal.Decimal) error

	// MarkOrderCaptured flips the order PENDING -> CAPTURED. Returns false when
	// the order was not pending, which makes repeated capture confirmations for
	// the same order id a no-op.
	MarkOrderCaptured(ctx context.Context, orderID string) (bool, error)

	FindOrder(ctx context.Context, orderID string) (*model.DepositOrder, error)

	// InsertPayout records an accepted payout batch. Returns false when the
	// batch id is already recorded, so the optimistic debit runs at most once
	// per external batch.
	InsertPayout(ctx context.Context, p *model.Payout) (bool, error)

	// MarkPayoutStatus flips a payout from one status to another. Returns false
	// when the payout was not in the expected status.
	MarkPayoutStatus(ctx context.Context, batchID string, from, to model.PayoutStatus) (bool, error)

	FindPayout(ctx context.Context, batchID string) (*model.Payout, error)
}

type repo struct{ pool *pgxpool.Pool }

func New(pool *pgxpool.Pool) Repo { return &repo{pool} }

func (r *repo) InsertOrder(ctx context.Context, userID int64, orderID string, amount decimal.Decimal) error {
	const q = `
INSERT INTO deposit_orders (user_id, paypal_order_id, amount, status)
VALUES ($1,$2,$3,'PENDING')`
	_, err := r.pool.Exec(ctx, q, userID, orderID, amount)
	return err
}

func (r *repo) MarkOrderCaptured(ctx context.Context, orderID string) (bool, error) {
	const q = `
UPDATE deposit_orders
SET status='CAPTURED', captured_at=NOW()
WHERE paypal_order_id=$1 AND status='PENDING'`
	res, err := r.pool.Exec(ctx, q, orderID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *repo) FindOrder(ctx context.Context, orderID string) (*model.DepositOrder, error) {
	const q = `
SELECT id, user_id, paypal_order_id, amount, status, created_at, captured_at
FROM deposit_orders WHERE paypal_order_id=$1`
	var o model.DepositOrder
	err := r.pool.QueryRow(ctx, q, orderID).Scan(
		&o.ID, &o.UserID, &o.PayPalOrderID, &o.Amount, &o.Status, &o.CreatedAt, &o.CapturedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repo) InsertPayout(ctx context.Context, p *model.Payout) (bool, error) {
	const q = `
INSERT INTO payouts (user_id, payout_batch_id, sender_batch_id, receiver_email, amount, status)
VALUES ($1,$2,$3,$4,$5,'PENDING')
ON CONFLICT (payout_batch_id) DO NOTHING`
	res, err := r.pool.Exec(ctx, q, p.UserID, p.PayoutBatchID, p.SenderBatchID, p.ReceiverEmail, p.Amount)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *repo) MarkPayoutStatus(ctx context.Context, batchID string, from, to model.PayoutStatus) (bool, error) {
	const q = `
UPDATE payouts SET status=$3, updated_at=NOW()
WHERE payout_batch_id=$1 AND status=$2`
	res, err := r.pool.Exec(ctx, q, batchID, from, to)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *repo) FindPayout(ctx context.Context, batchID string) (*model.Payout, error) {
	const q = `
SELECT id, user_id, payout_batch_id, sender_batch_id, receiver_email, amount, status, created_at, updated_at
FROM payouts WHERE payout_batch_id=$1`
	var p model.Payout
	err := r.pool.QueryRow(ctx, q, batchID).Scan(
		&p.ID, &p.UserID, &p.PayoutBatchID, &p.SenderBatchID, &p.ReceiverEmail,
		&p.Amount, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
