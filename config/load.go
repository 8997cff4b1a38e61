package config

import (
	"log/slog"
	"os"
)

func Load() App {
	cfg := App{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: must("DATABASE_URL"),
		JWTSecret:   getenv("JWT_SECRET", "local_dev_secret"),
		Env:         getenv("APP_ENV", "dev"),

		PayPalBaseURL:      getenv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		PayPalClientID:     must("PAYPAL_CLIENT_ID"),
		PayPalClientSecret: must("PAYPAL_SECRET"),

		DepositReturnURL: getenv("DEPOSIT_RETURN_URL", "http://localhost:8080/v1/paypal/confirm-deposit"),
		DepositCancelURL: getenv("DEPOSIT_CANCEL_URL", "http://localhost:8080/cancel-deposit"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
