// Package main AltBucks wallet API.
//
// @title           AltBucks Wallet API
// @version         1.0
// @description     Micro-task marketplace wallet: deposits, withdrawals, task earnings.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/emmanueldavidson96/altbucks-server/app/echoServer"
	authctrl "github.com/emmanueldavidson96/altbucks-server/app/echoServer/controller/auth"
	paypalctrl "github.com/emmanueldavidson96/altbucks-server/app/echoServer/controller/paypal"
	taskctrl "github.com/emmanueldavidson96/altbucks-server/app/echoServer/controller/task"
	walletctrl "github.com/emmanueldavidson96/altbucks-server/app/echoServer/controller/wallet"
	"github.com/emmanueldavidson96/altbucks-server/app/echoServer/validation"
	"github.com/emmanueldavidson96/altbucks-server/config"
	paymentrepo "github.com/emmanueldavidson96/altbucks-server/repository/payment"
	paypalrepo "github.com/emmanueldavidson96/altbucks-server/repository/paypal"
	userrepo "github.com/emmanueldavidson96/altbucks-server/repository/user"
	walletrepo "github.com/emmanueldavidson96/altbucks-server/repository/wallet"
	authsvc "github.com/emmanueldavidson96/altbucks-server/service/auth"
	paymentsvc "github.com/emmanueldavidson96/altbucks-server/service/payment"
	"github.com/emmanueldavidson96/altbucks-server/service/reconcile"
	"github.com/emmanueldavidson96/altbucks-server/service/settlement"
	walletsvc "github.com/emmanueldavidson96/altbucks-server/service/wallet"
	"github.com/emmanueldavidson96/altbucks-server/util/database"
	"github.com/emmanueldavidson96/altbucks-server/util/httpx"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	pool, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	// River migrations (job queue tables)
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		log.Error("river migrator init failed", "err", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		log.Error("river migrate up failed", "err", err)
		os.Exit(1)
	}

	// repos
	ur := userrepo.New(pool)
	wr := walletrepo.New(pool)
	pr := paymentrepo.New(pool)
	gw := paypalrepo.NewHTTP(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalClientSecret, httpx.Client())

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	ss := settlement.New(ur, wr)
	ws := walletsvc.New(ur, wr)

	// payout reconciliation worker
	workers := river.NewWorkers()
	river.AddWorker(workers, reconcile.NewPayoutWorker(gw, pr, ss))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		log.Error("river client init failed", "err", err)
		os.Exit(1)
	}
	if err := riverClient.Start(ctx); err != nil {
		log.Error("river client start failed", "err", err)
		os.Exit(1)
	}
	defer riverClient.Stop(ctx)

	enqueue := func(ctx context.Context, args reconcile.PayoutArgs) error {
		_, err := riverClient.Insert(ctx, args, nil)
		return err
	}
	ps := paymentsvc.New(gw, pr, ss, enqueue, cfg.DepositReturnURL, cfg.DepositCancelURL)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	walletC := &walletctrl.Controller{Svc: ws, Log: log}
	paypalC := &paypalctrl.Controller{Svc: ps, V: v, Log: log}
	taskC := &taskctrl.Controller{Settle: ss, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:   authC,
		Wallet: walletC,
		PayPal: paypalC,
		Task:   taskC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port)
	e.Logger.Fatal(e.Start(":" + port))
}
