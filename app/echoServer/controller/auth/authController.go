package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/emmanueldavidson96/altbucks-server/model"
	authsvc "github.com/emmanueldavidson96/altbucks-server/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/users/register
// @Summary Register a task creator or task earner
// @Success 201 {object} map[string]any
// @Failure 400,409,500
func (h *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	u, token, err := h.Svc.Register(c.Request().Context(), req)
	switch {
	case errors.Is(err, authsvc.ErrBadInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "pick exactly one of is_task_creator / is_task_earner"})
	case errors.Is(err, authsvc.ErrEmailTaken):
		return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
	case err != nil:
		h.Log.Error("Register failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"user": u, "token": token})
}

// POST /v1/users/login
// @Summary Login
// @Success 200 {object} map[string]any
// @Failure 400,401,500
func (h *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	u, token, err := h.Svc.Login(c.Request().Context(), req)
	switch {
	case errors.Is(err, authsvc.ErrInvalidCreds):
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	case err != nil:
		h.Log.Error("Login failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"user": u, "token": token})
}
