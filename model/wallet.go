package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the per-user balance record. AvailableBalance and the three
// accumulators are written only by the settlement service; the accumulators
// never decrease.
type Wallet struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"user_id"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalEarnings    decimal.Decimal `json:"total_earnings"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type LedgerType string

const (
	LedgerDeposit            LedgerType = "DEPOSIT_CONFIRMED"
	LedgerEarning            LedgerType = "TASK_EARNING"
	LedgerWithdrawal         LedgerType = "WITHDRAWAL"
	LedgerWithdrawalReversed LedgerType = "WITHDRAWAL_REVERSED"
)

type WalletLedger struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	RefTable     string          `json:"ref_table"`
	RefID        *string         `json:"ref_id,omitempty"`
	EntryType    LedgerType      `json:"entry_type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Ref ties a ledger entry (and its dedup guard) to the external record that
// caused the settlement: a deposit order, a payout batch, a task.
type Ref struct {
	Table string
	ID    string
}
