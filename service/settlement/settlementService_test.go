package settlement_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/emmanueldavidson96/altbucks-server/model"
	userrepo "github.com/emmanueldavidson96/altbucks-server/repository/user"
	walletrepo "github.com/emmanueldavidson96/altbucks-server/repository/wallet"
	"github.com/emmanueldavidson96/altbucks-server/service/settlement"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

type mockUsers struct {
	byIDFn func(ctx context.Context, id int64) (*model.User, error)
}

func (m *mockUsers) ByID(ctx context.Context, id int64) (*model.User, error) {
	return m.byIDFn(ctx, id)
}

// mockWallets applies settle funcs against an in-memory wallet the way the
// pg implementation does: mutation and ledger entry either both land or
// neither does.
type mockWallets struct {
	w       *model.Wallet
	entries []model.WalletLedger
	err     error
}

func (m *mockWallets) Find(ctx context.Context, userID int64) (*model.Wallet, error) {
	if m.err != nil {
		return nil, m.err
	}
	cp := *m.w
	return &cp, nil
}

func (m *mockWallets) Settle(ctx context.Context, userID int64, fn walletrepo.SettleFunc) (*model.Wallet, error) {
	if m.err != nil {
		return nil, m.err
	}
	cp := *m.w
	entry, err := fn(&cp)
	if err != nil {
		return nil, err
	}
	m.w = &cp
	m.entries = append(m.entries, entry)
	out := cp
	return &out, nil
}

func creator() *mockUsers {
	return &mockUsers{byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
		return &model.User{ID: id, IsTaskCreator: true}, nil
	}}
}

func earner() *mockUsers {
	return &mockUsers{byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
		return &model.User{ID: id, IsTaskEarner: true}, nil
	}}
}

func wallet(balance string) *mockWallets {
	return &mockWallets{w: &model.Wallet{UserID: 1, AvailableBalance: d(balance)}}
}

func TestCredit_CreatorMovesDeposits(t *testing.T) {
	ctx := context.Background()
	wm := wallet("100")
	svc := settlement.New(creator(), wm)

	w, err := svc.Credit(ctx, 1, d("50"), model.Ref{Table: "deposit_orders", ID: "ord-1"})
	require.NoError(t, err)
	require.Equal(t, "150", w.AvailableBalance.String())
	require.Equal(t, "50", w.TotalDeposits.String())
	require.Equal(t, "0", w.TotalEarnings.String())

	require.Len(t, wm.entries, 1)
	require.Equal(t, model.LedgerDeposit, wm.entries[0].EntryType)
	require.Equal(t, "150", wm.entries[0].BalanceAfter.String())
}

func TestCredit_EarnerMovesEarnings(t *testing.T) {
	ctx := context.Background()
	wm := wallet("0")
	svc := settlement.New(earner(), wm)

	w, err := svc.Credit(ctx, 1, d("12.50"), model.Ref{Table: "tasks", ID: "7"})
	require.NoError(t, err)
	require.Equal(t, "12.5", w.AvailableBalance.String())
	require.Equal(t, "12.5", w.TotalEarnings.String())
	require.Equal(t, "0", w.TotalDeposits.String())
	require.Equal(t, model.LedgerEarning, wm.entries[0].EntryType)
}

func TestCredit_InvalidRoleLeavesWalletUntouched(t *testing.T) {
	ctx := context.Background()
	wm := wallet("100")
	users := &mockUsers{byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
		return &model.User{ID: id}, nil
	}}
	svc := settlement.New(users, wm)

	_, err := svc.Credit(ctx, 1, d("50"), model.Ref{})
	require.ErrorIs(t, err, settlement.ErrInvalidRole)
	require.Equal(t, "100", wm.w.AvailableBalance.String())
	require.Empty(t, wm.entries)
}

func TestCredit_InvalidAmount(t *testing.T) {
	ctx := context.Background()
	svc := settlement.New(creator(), wallet("0"))

	_, err := svc.Credit(ctx, 1, d("0"), model.Ref{})
	require.ErrorIs(t, err, settlement.ErrInvalidAmount)

	_, err = svc.Credit(ctx, 1, d("-5"), model.Ref{})
	require.ErrorIs(t, err, settlement.ErrInvalidAmount)
}

func TestCredit_UserNotFound(t *testing.T) {
	ctx := context.Background()
	users := &mockUsers{byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
		return nil, userrepo.ErrNotFound
	}}
	svc := settlement.New(users, wallet("0"))

	_, err := svc.Credit(ctx, 1, d("10"), model.Ref{})
	require.ErrorIs(t, err, settlement.ErrUserNotFound)
}

func TestCredit_WalletNotFound(t *testing.T) {
	ctx := context.Background()
	wm := &mockWallets{err: walletrepo.ErrNotFound}
	svc := settlement.New(creator(), wm)

	_, err := svc.Credit(ctx, 1, d("10"), model.Ref{})
	require.ErrorIs(t, err, settlement.ErrWalletNotFound)
}

func TestDebit_InsufficientBalanceLeavesWalletUntouched(t *testing.T) {
	ctx := context.Background()
	wm := wallet("100")
	svc := settlement.New(earner(), wm)

	_, err := svc.Debit(ctx, 1, d("150"), model.Ref{Table: "payouts", ID: "b-1"})
	require.ErrorIs(t, err, settlement.ErrInsufficientBalance)
	require.Equal(t, "100", wm.w.AvailableBalance.String())
	require.Equal(t, "0", wm.w.TotalWithdrawals.String())
	require.Empty(t, wm.entries)
}

func TestDebit_AppliesWithdrawal(t *testing.T) {
	ctx := context.Background()
	wm := wallet("200")
	svc := settlement.New(earner(), wm)

	w, err := svc.Debit(ctx, 1, d("80"), model.Ref{Table: "payouts", ID: "b-1"})
	require.NoError(t, err)
	require.Equal(t, "120", w.AvailableBalance.String())
	require.Equal(t, "80", w.TotalWithdrawals.String())

	require.Len(t, wm.entries, 1)
	require.Equal(t, model.LedgerWithdrawal, wm.entries[0].EntryType)
	require.Equal(t, "-80", wm.entries[0].Amount.String())
}

func TestReverseDebit_RecreditsWithoutTouchingAccumulators(t *testing.T) {
	ctx := context.Background()
	wm := wallet("120")
	wm.w.TotalWithdrawals = d("80")
	svc := settlement.New(earner(), wm)

	w, err := svc.ReverseDebit(ctx, 1, d("80"), model.Ref{Table: "payouts", ID: "b-1"})
	require.NoError(t, err)
	require.Equal(t, "200", w.AvailableBalance.String())
	require.Equal(t, "80", w.TotalWithdrawals.String())
	require.Equal(t, model.LedgerWithdrawalReversed, wm.entries[0].EntryType)
}

func TestCheckWithdrawable(t *testing.T) {
	ctx := context.Background()
	svc := settlement.New(earner(), wallet("100"))

	require.NoError(t, svc.CheckWithdrawable(ctx, 1, d("100")))
	require.ErrorIs(t, svc.CheckWithdrawable(ctx, 1, d("100.01")), settlement.ErrInsufficientBalance)
	require.ErrorIs(t, svc.CheckWithdrawable(ctx, 1, d("0")), settlement.ErrInvalidAmount)
}

// The accounting identity must hold across any sequence of settlements:
// available == deposits + earnings - withdrawals.
func TestAccountingIdentity(t *testing.T) {
	ctx := context.Background()
	wm := wallet("0")
	svc := settlement.New(creator(), wm)

	_, err := svc.Credit(ctx, 1, d("100"), model.Ref{})
	require.NoError(t, err)
	_, err = svc.Debit(ctx, 1, d("30"), model.Ref{})
	require.NoError(t, err)
	_, err = svc.Credit(ctx, 1, d("12.25"), model.Ref{})
	require.NoError(t, err)
	_, err = svc.Debit(ctx, 1, d("55"), model.Ref{})
	require.NoError(t, err)
	_, err = svc.Debit(ctx, 1, d("100"), model.Ref{})
	require.ErrorIs(t, err, settlement.ErrInsufficientBalance)

	w := wm.w
	sum := w.TotalDeposits.Add(w.TotalEarnings).Sub(w.TotalWithdrawals)
	require.True(t, w.AvailableBalance.Equal(sum),
		"available %s != deposits %s + earnings %s - withdrawals %s",
		w.AvailableBalance, w.TotalDeposits, w.TotalEarnings, w.TotalWithdrawals)
	require.Equal(t, "27.25", w.AvailableBalance.String())
}

var errBoom = errors.New("boom")

func TestCredit_StoreErrorPassesThrough(t *testing.T) {
	ctx := context.Background()
	wm := &mockWallets{err: errBoom}
	svc := settlement.New(creator(), wm)

	_, err := svc.Credit(ctx, 1, d("10"), model.Ref{})
	require.ErrorIs(t, err, errBoom)
}
