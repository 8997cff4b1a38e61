package task

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/emmanueldavidson96/altbucks-server/model"
	"github.com/emmanueldavidson96/altbucks-server/service/settlement"
)

type CompleteReq struct {
	EarnerID int64   `json:"earner_id" validate:"required,gt=0"`
	TaskID   int64   `json:"task_id" validate:"required,gt=0"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

// Controller is the task-completion hook: task CRUD lives elsewhere, the
// wallet core only needs the compensation amount once a task is approved.
type Controller struct {
	Settle settlement.Service
	V      *validator.Validate
	Log    *slog.Logger
}

// POST /v1/tasks/complete
// @Summary Credit an earner the task compensation
// @Success 200 {object} map[string]any
// @Failure 400,401,404,500
func (h *Controller) Complete(c echo.Context) error {
	var req CompleteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	ref := model.Ref{Table: "tasks", ID: strconv.FormatInt(req.TaskID, 10)}
	w, err := h.Settle.Credit(c.Request().Context(), req.EarnerID, decimal.NewFromFloat(req.Amount), ref)
	switch {
	case errors.Is(err, settlement.ErrUserNotFound), errors.Is(err, settlement.ErrWalletNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "earner wallet not found"})
	case errors.Is(err, settlement.ErrInvalidRole):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user type"})
	case errors.Is(err, settlement.ErrInvalidAmount):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "amount must be positive"})
	case err != nil:
		h.Log.Error("Complete failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "task compensation credited",
		"data":    echo.Map{"available_balance": w.AvailableBalance},
	})
}
