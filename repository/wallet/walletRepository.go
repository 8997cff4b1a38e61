package walletrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emmanueldavidson96/altbucks-server/model"
)

var ErrNotFound = errors.New("wallet not found")

// SettleFunc mutates the locked wallet in place and returns the ledger entry
// to record alongside it. Returning an error aborts the settlement and leaves
// the wallet untouched.
type SettleFunc func(w *model.Wallet) (model.WalletLedger, error)

type Repo interface {
	Find(ctx context.Context, userID int64) (*model.Wallet, error)

	// Settle runs fn against the wallet row under a row lock and persists the
	// mutated wallet plus the ledger entry in one transaction. This is the only
	// write path for wallet balances.
	Settle(ctx context.Context, userID int64, fn SettleFunc) (*model.Wallet, error)

	ListLedger(ctx context.Context, userID int64) ([]model.WalletLedger, error)
}

type repo struct{ pool *pgxpool.Pool }

func New(pool *pgxpool.Pool) Repo { return &repo{pool} }

const walletCols = `id, user_id, available_balance, total_deposits, total_earnings, total_withdrawals, created_at, updated_at`

func (r *repo) Find(ctx context.Context, userID int64) (*model.Wallet, error) {
	q := `SELECT ` + walletCols + ` FROM wallets WHERE user_id=$1`
	w, err := scanWallet(r.pool.QueryRow(ctx, q, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return w, err
}

func (r *repo) Settle(ctx context.Context, userID int64, fn SettleFunc) (*model.Wallet, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q := `SELECT ` + walletCols + ` FROM wallets WHERE user_id=$1 FOR UPDATE`
	w, err := scanWallet(tx.QueryRow(ctx, q, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	entry, err := fn(w)
	if err != nil {
		return nil, err
	}

	const qUp = `
UPDATE wallets
SET available_balance=$2, total_deposits=$3, total_earnings=$4, total_withdrawals=$5, updated_at=NOW()
WHERE user_id=$1`
	if _, err := tx.Exec(ctx, qUp, userID,
		w.AvailableBalance, w.TotalDeposits, w.TotalEarnings, w.TotalWithdrawals,
	); err != nil {
		return nil, err
	}

	const qLedger = `
INSERT INTO wallet_ledger (user_id, ref_table, ref_id, entry_type, amount, balance_after)
VALUES ($1,$2,$3,$4,$5,$6)`
	if _, err := tx.Exec(ctx, qLedger,
		userID, entry.RefTable, entry.RefID, entry.EntryType, entry.Amount, entry.BalanceAfter,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *repo) ListLedger(ctx context.Context, userID int64) ([]model.WalletLedger, error) {
	const q = `
SELECT id, user_id, ref_table, ref_id, entry_type, amount, balance_after, created_at
FROM wallet_ledger
WHERE user_id=$1
ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.WalletLedger
	for rows.Next() {
		var l model.WalletLedger
		if err := rows.Scan(&l.ID, &l.UserID, &l.RefTable, &l.RefID, &l.EntryType, &l.Amount, &l.BalanceAfter, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type row interface{ Scan(dest ...any) error }

func scanWallet(rw row) (*model.Wallet, error) {
	var w model.Wallet
	if err := rw.Scan(
		&w.ID, &w.UserID, &w.AvailableBalance, &w.TotalDeposits, &w.TotalEarnings,
		&w.TotalWithdrawals, &w.CreatedAt, &w.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &w, nil
}
