package paymentsvc_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/emmanueldavidson96/altbucks-server/model"
	"github.com/emmanueldavidson96/altbucks-server/repository/paypal"
	paymentsvc "github.com/emmanueldavidson96/altbucks-server/service/payment"
	"github.com/emmanueldavidson96/altbucks-server/service/reconcile"
	"github.com/emmanueldavidson96/altbucks-server/service/settlement"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

type mockGateway struct {
	createOrderFn  func(ctx context.Context, req paypal.CreateOrderReq) (*paypal.CreateOrderResp, error)
	captureOrderFn func(ctx context.Context, orderID string) (*paypal.CaptureResp, error)
	createPayoutFn func(ctx context.Context, req paypal.PayoutReq) (*paypal.PayoutResp, error)
	payoutCalls    int
}

func (m *mockGateway) CreateOrder(ctx context.Context, req paypal.CreateOrderReq) (*paypal.CreateOrderResp, error) {
	return m.createOrderFn(ctx, req)
}

func (m *mockGateway) CaptureOrder(ctx context.Context, orderID string) (*paypal.CaptureResp, error) {
	return m.captureOrderFn(ctx, orderID)
}

func (m *mockGateway) CreatePayout(ctx context.Context, req paypal.PayoutReq) (*paypal.PayoutResp, error) {
	m.payoutCalls++
	return m.createPayoutFn(ctx, req)
}

func (m *mockGateway) GetPayoutBatch(ctx context.Context, batchID string) (string, error) {
	return "", nil
}

type mockPayments struct {
	orders        []string
	captured      bool
	capturedErr   error
	payoutInserts []*model.Payout
	insertOK      bool
}

func (m *mockPayments) InsertOrder(ctx context.Context, userID int64, orderID string, amount decimal.Decimal) error {
	m.orders = append(m.orders, orderID)
	return nil
}

func (m *mockPayments) MarkOrderCaptured(ctx context.Context, orderID string) (bool, error) {
	return m.captured, m.capturedErr
}

func (m *mockPayments) FindOrder(ctx context.Context, orderID string) (*model.DepositOrder, error) {
	return nil, nil
}

func (m *mockPayments) InsertPayout(ctx context.Context, p *model.Payout) (bool, error) {
	m.payoutInserts = append(m.payoutInserts, p)
	return m.insertOK, nil
}

func (m *mockPayments) MarkPayoutStatus(ctx context.Context, batchID string, from, to model.PayoutStatus) (bool, error) {
	return true, nil
}

func (m *mockPayments) FindPayout(ctx context.Context, batchID string) (*model.Payout, error) {
	return nil, nil
}

type mockSettle struct {
	credits, debits []decimal.Decimal
	checkErr        error
	creditErr       error
}

func (m *mockSettle) Credit(ctx context.Context, userID int64, amount decimal.Decimal, ref model.Ref) (*model.Wallet, error) {
	if m.creditErr != nil {
		return nil, m.creditErr
	}
	m.credits = append(m.credits, amount)
	return &model.Wallet{UserID: userID, AvailableBalance: amount}, nil
}

func (m *mockSettle) Debit(ctx context.Context, userID int64, amount decimal.Decimal, ref model.Ref) (*model.Wallet, error) {
	m.debits = append(m.debits, amount)
	return &model.Wallet{UserID: userID}, nil
}

func (m *mockSettle) ReverseDebit(ctx context.Context, userID int64, amount decimal.Decimal, ref model.Ref) (*model.Wallet, error) {
	return &model.Wallet{UserID: userID}, nil
}

func (m *mockSettle) CheckWithdrawable(ctx context.Context, userID int64, amount decimal.Decimal) error {
	return m.checkErr
}

func newService(gw *mockGateway, pm *mockPayments, st *mockSettle, enq paymentsvc.EnqueueReconcileFunc) paymentsvc.Service {
	return paymentsvc.New(gw, pm, st, enq, "http://localhost/confirm", "http://localhost/cancel")
}

func TestCreateDeposit_NoWalletMutation(t *testing.T) {
	ctx := context.Background()
	gw := &mockGateway{
		createOrderFn: func(ctx context.Context, req paypal.CreateOrderReq) (*paypal.CreateOrderResp, error) {
			require.Equal(t, "50.00", req.Amount.StringFixed(2))
			require.Contains(t, req.ReturnURL, "userId=9")
			return &paypal.CreateOrderResp{OrderID: "ord-1", Status: "PAYER_ACTION_REQUIRED", ApproveURL: "https://paypal/approve"}, nil
		},
	}
	pm := &mockPayments{}
	st := &mockSettle{}
	svc := newService(gw, pm, st, nil)

	res, err := svc.CreateDeposit(ctx, 9, d("50"))
	require.NoError(t, err)
	require.Equal(t, "ord-1", res.OrderID)
	require.Equal(t, "https://paypal/approve", res.ApproveURL)

	require.Equal(t, []string{"ord-1"}, pm.orders)
	require.Empty(t, st.credits)
	require.Empty(t, st.debits)
}

func TestCreateDeposit_InvalidAmountSkipsGateway(t *testing.T) {
	ctx := context.Background()
	gw := &mockGateway{
		createOrderFn: func(ctx context.Context, req paypal.CreateOrderReq) (*paypal.CreateOrderResp, error) {
			t.Fatal("gateway must not be called")
			return nil, nil
		},
	}
	svc := newService(gw, &mockPayments{}, &mockSettle{}, nil)

	_, err := svc.CreateDeposit(ctx, 9, d("0"))
	require.ErrorIs(t, err, settlement.ErrInvalidAmount)
}

func TestConfirmDeposit_CompletedCreditsOnce(t *testing.T) {
	ctx := context.Background()
	gw := &mockGateway{
		captureOrderFn: func(ctx context.Context, orderID string) (*paypal.CaptureResp, error) {
			require.Equal(t, "ord-1", orderID)
			return &paypal.CaptureResp{Status: "COMPLETED", Amount: d("50.00")}, nil
		},
	}
	pm := &mockPayments{captured: true}
	st := &mockSettle{}
	svc := newService(gw, pm, st, nil)

	w, err := svc.ConfirmDeposit(ctx, 9, "ord-1")
	require.NoError(t, err)
	require.NotNil(t, w)
	require.Len(t, st.credits, 1)
	require.Equal(t, "50.00", st.credits[0].StringFixed(2))
}

func TestConfirmDeposit_NotCompletedNoCredit(t *testing.T) {
	ctx := context.Background()
	for _, capture := range []*paypal.CaptureResp{
		{Status: "DECLINED", Amount: d("50")},
		{Status: "COMPLETED"}, // no captured amount reported
	} {
		gw := &mockGateway{
			captureOrderFn: func(ctx context.Context, orderID string) (*paypal.CaptureResp, error) {
				return capture, nil
			},
		}
		st := &mockSettle{}
		svc := newService(gw, &mockPayments{captured: true}, st, nil)

		_, err := svc.ConfirmDeposit(ctx, 9, "ord-1")
		require.ErrorIs(t, err, paymentsvc.ErrCaptureIncomplete)
		require.Empty(t, st.credits)
	}
}

func TestConfirmDeposit_RepeatedConfirmationIsNoop(t *testing.T) {
	ctx := context.Background()
	gw := &mockGateway{
		captureOrderFn: func(ctx context.Context, orderID string) (*paypal.CaptureResp, error) {
			return &paypal.CaptureResp{Status: "COMPLETED", Amount: d("50")}, nil
		},
	}
	pm := &mockPayments{captured: false} // order no longer PENDING
	st := &mockSettle{}
	svc := newService(gw, pm, st, nil)

	_, err := svc.ConfirmDeposit(ctx, 9, "ord-1")
	require.ErrorIs(t, err, paymentsvc.ErrOrderAlreadyCaptured)
	require.Empty(t, st.credits)
}

func TestWithdraw_InsufficientBalanceSkipsGateway(t *testing.T) {
	ctx := context.Background()
	gw := &mockGateway{
		createPayoutFn: func(ctx context.Context, req paypal.PayoutReq) (*paypal.PayoutResp, error) {
			return &paypal.PayoutResp{PayoutBatchID: "b-1", BatchStatus: "PENDING"}, nil
		},
	}
	st := &mockSettle{checkErr: settlement.ErrInsufficientBalance}
	svc := newService(gw, &mockPayments{insertOK: true}, st, nil)

	_, err := svc.Withdraw(ctx, 9, "earner@example.com", d("150"))
	require.ErrorIs(t, err, settlement.ErrInsufficientBalance)
	require.Zero(t, gw.payoutCalls)
	require.Empty(t, st.debits)
}

func TestWithdraw_PendingAppliesOptimisticDebit(t *testing.T) {
	ctx := context.Background()
	gw := &mockGateway{
		createPayoutFn: func(ctx context.Context, req paypal.PayoutReq) (*paypal.PayoutResp, error) {
			require.Equal(t, "earner@example.com", req.ReceiverEmail)
			require.Equal(t, "80.00", req.Amount.StringFixed(2))
			return &paypal.PayoutResp{PayoutBatchID: "b-1", BatchStatus: "PENDING"}, nil
		},
	}
	pm := &mockPayments{insertOK: true}
	st := &mockSettle{}

	var enqueued []reconcile.PayoutArgs
	enq := func(ctx context.Context, args reconcile.PayoutArgs) error {
		enqueued = append(enqueued, args)
		return nil
	}
	svc := newService(gw, pm, st, enq)

	res, err := svc.Withdraw(ctx, 9, "earner@example.com", d("80"))
	require.NoError(t, err)
	require.Equal(t, "b-1", res.PayoutBatchID)
	require.Equal(t, "PENDING", res.BatchStatus)

	require.Len(t, st.debits, 1)
	require.Equal(t, "80.00", st.debits[0].StringFixed(2))
	require.Len(t, pm.payoutInserts, 1)
	require.Equal(t, "b-1", pm.payoutInserts[0].PayoutBatchID)

	require.Len(t, enqueued, 1)
	require.Equal(t, "b-1", enqueued[0].PayoutBatchID)
}

func TestWithdraw_NotPendingNoDebit(t *testing.T) {
	ctx := context.Background()
	gw := &mockGateway{
		createPayoutFn: func(ctx context.Context, req paypal.PayoutReq) (*paypal.PayoutResp, error) {
			return &paypal.PayoutResp{PayoutBatchID: "b-1", BatchStatus: "DENIED"}, nil
		},
	}
	st := &mockSettle{}
	svc := newService(gw, &mockPayments{insertOK: true}, st, nil)

	_, err := svc.Withdraw(ctx, 9, "earner@example.com", d("80"))
	require.ErrorIs(t, err, paymentsvc.ErrPayoutNotAccepted)
	require.Empty(t, st.debits)
}

func TestWithdraw_DuplicateBatchDebitsOnce(t *testing.T) {
	ctx := context.Background()
	gw := &mockGateway{
		createPayoutFn: func(ctx context.Context, req paypal.PayoutReq) (*paypal.PayoutResp, error) {
			return &paypal.PayoutResp{PayoutBatchID: "b-1", BatchStatus: "PENDING"}, nil
		},
	}
	pm := &mockPayments{insertOK: false} // batch id already recorded
	st := &mockSettle{}
	svc := newService(gw, pm, st, nil)

	_, err := svc.Withdraw(ctx, 9, "earner@example.com", d("80"))
	require.NoError(t, err)
	require.Empty(t, st.debits)
}

func TestWithdraw_GatewayErrorNoDebit(t *testing.T) {
	ctx := context.Background()
	gw := &mockGateway{
		createPayoutFn: func(ctx context.Context, req paypal.PayoutReq) (*paypal.PayoutResp, error) {
			return nil, &paypal.GatewayError{Op: "create payout", Reason: "batch header missing"}
		},
	}
	st := &mockSettle{}
	svc := newService(gw, &mockPayments{insertOK: true}, st, nil)

	_, err := svc.Withdraw(ctx, 9, "earner@example.com", d("80"))
	var ge *paypal.GatewayError
	require.ErrorAs(t, err, &ge)
	require.Empty(t, st.debits)
}
