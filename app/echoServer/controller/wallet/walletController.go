package wallet

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/emmanueldavidson96/altbucks-server/service/settlement"
	walletsvc "github.com/emmanueldavidson96/altbucks-server/service/wallet"
)

type Controller struct {
	Svc walletsvc.Service
	Log *slog.Logger
}

// GET /v1/wallet
// @Summary Wallet summary shaped by the user's role
// @Success 200 {object} map[string]any
// @Failure 400,404,500
func (h *Controller) Summary(c echo.Context) error {
	userID := c.Get("user_id").(int64)

	s, err := h.Svc.Summary(c.Request().Context(), userID)
	switch {
	case errors.Is(err, settlement.ErrUserNotFound), errors.Is(err, settlement.ErrWalletNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "wallet not found"})
	case errors.Is(err, settlement.ErrInvalidRole):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user type"})
	case err != nil:
		h.Log.Error("Summary failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"data": s})
}

// GET /v1/wallet/ledger
func (h *Controller) Ledger(c echo.Context) error {
	userID := c.Get("user_id").(int64)

	rows, err := h.Svc.Ledger(c.Request().Context(), userID)
	if err != nil {
		h.Log.Error("Ledger failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
