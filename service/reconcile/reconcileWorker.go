package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/riverqueue/river"
	"github.com/shopspring/decimal"

	"github.com/emmanueldavidson96/altbucks-server/model"
	paymentrepo "github.com/emmanueldavidson96/altbucks-server/repository/payment"
	"github.com/emmanueldavidson96/altbucks-server/repository/paypal"
	"github.com/emmanueldavidson96/altbucks-server/service/settlement"
)

// PayoutArgs is enqueued after every optimistic debit so a failed external
// payout eventually re-credits the wallet.
type PayoutArgs struct {
	PayoutBatchID string          `json:"payout_batch_id"`
	UserID        int64           `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
}

func (PayoutArgs) Kind() string { return "payout_reconcile" }

const pollInterval = time.Minute

// PayoutWorker polls the payout batch status at the gateway. Terminal failure
// states reverse the optimistic debit exactly once, guarded by the payout row's
// status transitions.
type PayoutWorker struct {
	river.WorkerDefaults[PayoutArgs]
	gw       paypal.Client
	payments paymentrepo.Repo
	settle   settlement.Service
}

func NewPayoutWorker(gw paypal.Client, payments paymentrepo.Repo, settle settlement.Service) *PayoutWorker {
	return &PayoutWorker{gw: gw, payments: payments, settle: settle}
}

func (w *PayoutWorker) Work(ctx context.Context, job *river.Job[PayoutArgs]) error {
	args := job.Args

	status, err := w.gw.GetPayoutBatch(ctx, args.PayoutBatchID)
	if err != nil {
		return err
	}

	switch status {
	case "SUCCESS":
		_, err := w.payments.MarkPayoutStatus(ctx, args.PayoutBatchID, model.PayoutPending, model.PayoutCompleted)
		return err

	case "DENIED", "FAILED", "RETURNED", "CANCELED":
		ok, err := w.payments.MarkPayoutStatus(ctx, args.PayoutBatchID, model.PayoutPending, model.PayoutFailed)
		if err != nil {
			return err
		}
		if !ok {
			// Already reconciled by an earlier attempt.
			return nil
		}
		if _, err := w.settle.ReverseDebit(ctx, args.UserID, args.Amount, model.Ref{Table: "payouts", ID: args.PayoutBatchID}); err != nil {
			return err
		}
		if _, err := w.payments.MarkPayoutStatus(ctx, args.PayoutBatchID, model.PayoutFailed, model.PayoutReversed); err != nil {
			return err
		}
		slog.Warn("payout failed externally, wallet re-credited",
			"payout_batch_id", args.PayoutBatchID,
			"user_id", args.UserID,
			"amount", args.Amount,
			"batch_status", status,
		)
		return nil

	default:
		// Still PENDING or PROCESSING at the gateway.
		return river.JobSnooze(pollInterval)
	}
}
