package config

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	PayPalBaseURL      string `env:"PAYPAL_BASE_URL" default:"https://api-m.sandbox.paypal.com"`
	PayPalClientID     string `env:"PAYPAL_CLIENT_ID,required"`
	PayPalClientSecret string `env:"PAYPAL_SECRET,required"`

	DepositReturnURL string `env:"DEPOSIT_RETURN_URL"`
	DepositCancelURL string `env:"DEPOSIT_CANCEL_URL"`
}
