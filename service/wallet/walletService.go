package walletsvc

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/emmanueldavidson96/altbucks-server/model"
	userrepo "github.com/emmanueldavidson96/altbucks-server/repository/user"
	walletrepo "github.com/emmanueldavidson96/altbucks-server/repository/wallet"
	"github.com/emmanueldavidson96/altbucks-server/service/settlement"
)

// Summary is role-shaped: creators see their deposit accumulator, earners
// their earnings accumulator.
type Summary struct {
	Role             model.Role       `json:"role"`
	AvailableBalance decimal.Decimal  `json:"available_balance"`
	TotalDeposits    *decimal.Decimal `json:"total_deposits,omitempty"`
	TotalEarnings    *decimal.Decimal `json:"total_earnings,omitempty"`
	TotalWithdrawals decimal.Decimal  `json:"total_withdrawals"`
}

type Service interface {
	Summary(ctx context.Context, userID int64) (*Summary, error)
	Ledger(ctx context.Context, userID int64) ([]model.WalletLedger, error)
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Wallets interface {
	Find(ctx context.Context, userID int64) (*model.Wallet, error)
	ListLedger(ctx context.Context, userID int64) ([]model.WalletLedger, error)
}

type service struct {
	users   Users
	wallets Wallets
}

func New(users Users, wallets Wallets) Service { return &service{users: users, wallets: wallets} }

func (s *service) Summary(ctx context.Context, userID int64) (*Summary, error) {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, settlement.ErrUserNotFound
		}
		return nil, err
	}
	role, ok := model.RoleOf(u)
	if !ok {
		return nil, settlement.ErrInvalidRole
	}

	w, err := s.wallets.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, walletrepo.ErrNotFound) {
			return nil, settlement.ErrWalletNotFound
		}
		return nil, err
	}

	out := &Summary{
		Role:             role,
		AvailableBalance: w.AvailableBalance,
		TotalWithdrawals: w.TotalWithdrawals,
	}
	if role == model.RoleCreator {
		out.TotalDeposits = &w.TotalDeposits
	} else {
		out.TotalEarnings = &w.TotalEarnings
	}
	return out, nil
}

func (s *service) Ledger(ctx context.Context, userID int64) ([]model.WalletLedger, error) {
	return s.wallets.ListLedger(ctx, userID)
}
