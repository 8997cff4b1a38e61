package paypal

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	paypalrepo "github.com/emmanueldavidson96/altbucks-server/repository/paypal"
	paymentsvc "github.com/emmanueldavidson96/altbucks-server/service/payment"
	"github.com/emmanueldavidson96/altbucks-server/service/settlement"
)

type Controller struct {
	Svc paymentsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/paypal/deposit
// @Summary Create a PayPal checkout order for a creator deposit
// @Success 201 {object} map[string]any
// @Failure 400,401,502,500
func (h *Controller) Deposit(c echo.Context) error {
	var req DepositReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	userID := c.Get("user_id").(int64)

	res, err := h.Svc.CreateDeposit(c.Request().Context(), userID, decimal.NewFromFloat(req.Amount))
	if err != nil {
		return h.fail(c, "CreateDeposit", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Order created successfully!",
		"data":    res,
	})
}

// GET /v1/paypal/confirm-deposit?token=...&userId=...
// The external processor redirects the payer here after approval.
func (h *Controller) ConfirmDeposit(c echo.Context) error {
	orderID := c.QueryParam("token")
	userIDStr := c.QueryParam("userId")
	if orderID == "" || userIDStr == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "both token and userId are required"})
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad userId"})
	}

	_, err = h.Svc.ConfirmDeposit(c.Request().Context(), userID, orderID)
	switch {
	case errors.Is(err, paymentsvc.ErrOrderAlreadyCaptured):
		return c.JSON(http.StatusOK, echo.Map{"message": "payment already processed"})
	case errors.Is(err, paymentsvc.ErrCaptureIncomplete):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "payment capture failed, please try again later"})
	case err != nil:
		return h.fail(c, "ConfirmDeposit", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "payment captured and added to wallet successfully"})
}

// POST /v1/paypal/withdrawal
// @Summary Withdraw wallet balance to a PayPal account
// @Success 202 {object} map[string]any
// @Failure 400,401,404,502,500
func (h *Controller) Withdrawal(c echo.Context) error {
	var req WithdrawalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "paypal email and amount are required fields"})
	}
	userID := c.Get("user_id").(int64)

	res, err := h.Svc.Withdraw(c.Request().Context(), userID, req.PayPalEmail, decimal.NewFromFloat(req.Amount))
	if err != nil {
		return h.fail(c, "Withdraw", err)
	}

	return c.JSON(http.StatusAccepted, echo.Map{
		"message":         "Payment is being processed. Please check your PayPal wallet shortly.",
		"payout_batch_id": res.PayoutBatchID,
	})
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	var gw *paypalrepo.GatewayError
	var capErr *paypalrepo.CaptureError
	var cred *paypalrepo.CredentialError

	switch {
	case errors.Is(err, settlement.ErrInvalidAmount):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "amount must be positive"})
	case errors.Is(err, settlement.ErrInsufficientBalance):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "insufficient balance"})
	case errors.Is(err, settlement.ErrInvalidRole):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user type"})
	case errors.Is(err, settlement.ErrUserNotFound), errors.Is(err, settlement.ErrWalletNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "wallet not found"})
	case errors.Is(err, paymentsvc.ErrPayoutNotAccepted):
		h.Log.Error(op+" rejected by gateway", "err", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment failed, please try again"})
	case errors.As(err, &gw), errors.As(err, &capErr), errors.As(err, &cred):
		h.Log.Error(op+" gateway failure", "err", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment service unavailable, please try again later"})
	default:
		h.Log.Error(op+" failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
