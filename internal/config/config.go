package config

import (
	"fmt"
	"os"
	"time"
)

type SMTPConfig struct {
	Host          string
	Port          string
	User          string
	Pass          string
	TLSMode       string // "", "tls", "starttls"
	SkipVerifyTLS bool
}

type CashfreeConfig struct {
	BaseURL     string
	CheckoutURL string
	AppID       string
	SecretKey   string
	APIVersion  string

	ReturnURLBase string
	NotifyURLBase string

	Timeout time.Duration
}

type Config struct {
	HTTPAddr string
	DBDSN    string
	Currency string

	Cashfree CashfreeConfig

	SMTP         SMTPConfig
	MailFrom     string
	MailFromName string
}

// Load reads configuration from the environment. Gateway credentials, gateway
// URLs, the store DSN and the callback bases are required; nothing external is
// defaulted.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),
		DBDSN:    os.Getenv("DB_DSN"),
		Currency: envOr("ORDER_CURRENCY", "INR"),
		Cashfree: CashfreeConfig{
			BaseURL:       os.Getenv("CASHFREE_API_URL"),
			CheckoutURL:   os.Getenv("CASHFREE_CHECKOUT_URL"),
			AppID:         os.Getenv("CASHFREE_APP_ID"),
			SecretKey:     os.Getenv("CASHFREE_SECRET_KEY"),
			APIVersion:    envOr("CASHFREE_API_VERSION", "2023-08-01"),
			ReturnURLBase: os.Getenv("RETURN_URL_BASE"),
			NotifyURLBase: os.Getenv("NOTIFY_URL_BASE"),
			Timeout:       durationOr("GATEWAY_TIMEOUT", 10*time.Second),
		},
		SMTP: SMTPConfig{
			Host:          os.Getenv("SMTP_HOST"),
			Port:          envOr("SMTP_PORT", "1025"),
			User:          os.Getenv("SMTP_USER"),
			Pass:          os.Getenv("SMTP_PASS"),
			TLSMode:       os.Getenv("SMTP_TLS_MODE"),
			SkipVerifyTLS: os.Getenv("SMTP_SKIP_VERIFY_TLS") == "true",
		},
		MailFrom:     os.Getenv("MAIL_FROM"),
		MailFromName: envOr("MAIL_FROM_NAME", "Payments"),
	}

	required := map[string]string{
		"DB_DSN":              cfg.DBDSN,
		"CASHFREE_API_URL":    cfg.Cashfree.BaseURL,
		"CASHFREE_APP_ID":     cfg.Cashfree.AppID,
		"CASHFREE_SECRET_KEY": cfg.Cashfree.SecretKey,
		"RETURN_URL_BASE":     cfg.Cashfree.ReturnURLBase,
		"NOTIFY_URL_BASE":     cfg.Cashfree.NotifyURLBase,
	}
	for k, v := range required {
		if v == "" {
			return Config{}, fmt.Errorf("config: %s is required", k)
		}
	}
	if cfg.Cashfree.CheckoutURL == "" {
		cfg.Cashfree.CheckoutURL = cfg.Cashfree.BaseURL + "/checkout"
	}
	return cfg, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func durationOr(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
