package payment

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tuanngo/coursecart/internal/pkg/env"
)

// Config carries the gateway credentials for the webhook endpoints. It is
// passed in explicitly; nothing in this package reads the environment after
// startup.
type Config struct {
	MerchantID    string `validate:"required"`
	SecretKey     string `validate:"required"`
	SigningSecret string `validate:"required"`
	Environment   string `validate:"required,oneof=dev staging prod"`
	// IPNSecretHeader is the request header carrying the bank gateway secret.
	IPNSecretHeader string `validate:"required"`
	// SignatureTolerance bounds the age of the signed timestamp on card
	// gateway webhooks. Zero disables the check.
	SignatureTolerance time.Duration
	// LedgerRetentionDays bounds how long applied-event rows are kept.
	LedgerRetentionDays int `validate:"min=1"`
}

// LoadConfigFromEnv builds a Config from environment variables.
func LoadConfigFromEnv() Config {
	tolerance := 5 * time.Minute
	if raw := env.GetEnv("PAYMENT_SIGNATURE_TOLERANCE", ""); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			tolerance = d
		}
	}
	retention := 90
	if raw := env.GetEnv("LEDGER_RETENTION_DAYS", ""); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &retention); err != nil {
			retention = 90
		}
	}

	return Config{
		MerchantID:          env.GetEnv("PAYMENT_MERCHANT_ID", ""),
		SecretKey:           env.GetEnv("SEPAY_IPN_SECRET", ""),
		SigningSecret:       env.GetEnv("STRIPE_SIGNING_SECRET", ""),
		Environment:         env.GetEnv("APP_ENV", "prod"),
		IPNSecretHeader:     env.GetEnv("SEPAY_IPN_SECRET_HEADER", "X-Secret-Key"),
		SignatureTolerance:  tolerance,
		LedgerRetentionDays: retention,
	}
}

// Validate checks that all required settings are present.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("payment config invalid: %w", err)
	}
	return nil
}

// RetentionWindow returns the ledger retention as a duration.
func (c Config) RetentionWindow() time.Duration {
	return time.Duration(c.LedgerRetentionDays) * 24 * time.Hour
}
