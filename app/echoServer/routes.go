package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	authctrl "github.com/emmanueldavidson96/altbucks-server/app/echoServer/controller/auth"
	paypalctrl "github.com/emmanueldavidson96/altbucks-server/app/echoServer/controller/paypal"
	taskctrl "github.com/emmanueldavidson96/altbucks-server/app/echoServer/controller/task"
	walletctrl "github.com/emmanueldavidson96/altbucks-server/app/echoServer/controller/wallet"
)

type C struct {
	Auth   *authctrl.Controller
	Wallet *walletctrl.Controller
	PayPal *paypalctrl.Controller
	Task   *taskctrl.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// PayPal redirects the payer here after checkout approval; no JWT on this hop.
	pub.GET("/paypal/confirm-deposit", c.PayPal.ConfirmDeposit)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	auth.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			tok, ok := ctx.Get("user").(*jwt.Token)
			if !ok || tok == nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			sub, ok := claims["sub"].(float64)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", int64(sub))
			return next(ctx)
		}
	})

	// Wallet
	auth.GET("/wallet", c.Wallet.Summary)
	auth.GET("/wallet/ledger", c.Wallet.Ledger)

	// Payments
	auth.POST("/paypal/deposit", c.PayPal.Deposit)
	auth.POST("/paypal/withdrawal", c.PayPal.Withdrawal)

	// Task completion hook
	auth.POST("/tasks/complete", c.Task.Complete)
}
