package settlement

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/emmanueldavidson96/altbucks-server/model"
	userrepo "github.com/emmanueldavidson96/altbucks-server/repository/user"
	walletrepo "github.com/emmanueldavidson96/altbucks-server/repository/wallet"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInvalidRole         = errors.New("user is neither a task creator nor a task earner")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Wallets interface {
	Find(ctx context.Context, userID int64) (*model.Wallet, error)
	Settle(ctx context.Context, userID int64, fn walletrepo.SettleFunc) (*model.Wallet, error)
}

// Service applies all balance mutations. Credit moves total_deposits for
// creators and total_earnings for earners; Debit moves total_withdrawals for
// both. ReverseDebit is the reconciliation path that re-credits a wallet after
// an externally failed payout.
type Service interface {
	Credit(ctx context.Context, userID int64, amount decimal.Decimal, ref model.Ref) (*model.Wallet, error)
	Debit(ctx context.Context, userID int64, amount decimal.Decimal, ref model.Ref) (*model.Wallet, error)
	ReverseDebit(ctx context.Context, userID int64, amount decimal.Decimal, ref model.Ref) (*model.Wallet, error)

	// CheckWithdrawable verifies role and balance without mutating anything.
	// Callers must pass this before initiating any external payout.
	CheckWithdrawable(ctx context.Context, userID int64, amount decimal.Decimal) error
}

type service struct {
	users   Users
	wallets Wallets
}

func New(users Users, wallets Wallets) Service {
	return &service{users: users, wallets: wallets}
}

func (s *service) Credit(ctx context.Context, userID int64, amount decimal.Decimal, ref model.Ref) (*model.Wallet, error) {
	role, err := s.enter(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	return s.settle(ctx, userID, func(w *model.Wallet) (model.WalletLedger, error) {
		w.AvailableBalance = w.AvailableBalance.Add(amount)
		entryType := model.LedgerDeposit
		if role == model.RoleEarner {
			w.TotalEarnings = w.TotalEarnings.Add(amount)
			entryType = model.LedgerEarning
		} else {
			w.TotalDeposits = w.TotalDeposits.Add(amount)
		}
		return entry(w, ref, entryType, amount), nil
	})
}

func (s *service) Debit(ctx context.Context, userID int64, amount decimal.Decimal, ref model.Ref) (*model.Wallet, error) {
	// Both roles draw from the same withdrawal accumulator.
	if _, err := s.enter(ctx, userID, amount); err != nil {
		return nil, err
	}
	return s.settle(ctx, userID, func(w *model.Wallet) (model.WalletLedger, error) {
		if w.AvailableBalance.LessThan(amount) {
			return model.WalletLedger{}, ErrInsufficientBalance
		}
		w.AvailableBalance = w.AvailableBalance.Sub(amount)
		w.TotalWithdrawals = w.TotalWithdrawals.Add(amount)
		return entry(w, ref, model.LedgerWithdrawal, amount.Neg()), nil
	})
}

func (s *service) ReverseDebit(ctx context.Context, userID int64, amount decimal.Decimal, ref model.Ref) (*model.Wallet, error) {
	if _, err := s.enter(ctx, userID, amount); err != nil {
		return nil, err
	}
	// The accumulators stay untouched: total_withdrawals never decreases, the
	// reversal shows up as its own ledger entry.
	return s.settle(ctx, userID, func(w *model.Wallet) (model.WalletLedger, error) {
		w.AvailableBalance = w.AvailableBalance.Add(amount)
		return entry(w, ref, model.LedgerWithdrawalReversed, amount), nil
	})
}

func (s *service) CheckWithdrawable(ctx context.Context, userID int64, amount decimal.Decimal) error {
	if _, err := s.enter(ctx, userID, amount); err != nil {
		return err
	}
	w, err := s.wallets.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, walletrepo.ErrNotFound) {
			return ErrWalletNotFound
		}
		return err
	}
	if w.AvailableBalance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// enter validates the amount and resolves the user's role once.
func (s *service) enter(ctx context.Context, userID int64, amount decimal.Decimal) (model.Role, error) {
	if !amount.IsPositive() {
		return "", ErrInvalidAmount
	}
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	role, ok := model.RoleOf(u)
	if !ok {
		slog.Error("settlement: user role flags invalid",
			"user_id", userID,
			"is_task_creator", u.IsTaskCreator,
			"is_task_earner", u.IsTaskEarner,
		)
		return "", ErrInvalidRole
	}
	return role, nil
}

func (s *service) settle(ctx context.Context, userID int64, fn walletrepo.SettleFunc) (*model.Wallet, error) {
	w, err := s.wallets.Settle(ctx, userID, fn)
	if err != nil {
		if errors.Is(err, walletrepo.ErrNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return w, nil
}

func entry(w *model.Wallet, ref model.Ref, t model.LedgerType, amount decimal.Decimal) model.WalletLedger {
	var refID *string
	if ref.ID != "" {
		id := ref.ID
		refID = &id
	}
	return model.WalletLedger{
		UserID:       w.UserID,
		RefTable:     ref.Table,
		RefID:        refID,
		EntryType:    t,
		Amount:       amount,
		BalanceAfter: w.AvailableBalance,
	}
}
