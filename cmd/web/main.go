package main

import (
	"context"
	"log"
	"os"

	"log/slog"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/swarupnama50/cf-py/internal/config"
	apphttp "github.com/swarupnama50/cf-py/internal/http"
	"github.com/swarupnama50/cf-py/internal/http/handlers"
	"github.com/swarupnama50/cf-py/internal/mailer"
	"github.com/swarupnama50/cf-py/internal/modules/email"
	"github.com/swarupnama50/cf-py/internal/modules/orders"
	"github.com/swarupnama50/cf-py/internal/modules/payments"
	"github.com/swarupnama50/cf-py/internal/storage"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	repo := orders.NewRepo(db)
	gateway := payments.NewCashfree(payments.CashfreeConfig{
		BaseURL:       cfg.Cashfree.BaseURL,
		CheckoutURL:   cfg.Cashfree.CheckoutURL,
		AppID:         cfg.Cashfree.AppID,
		SecretKey:     cfg.Cashfree.SecretKey,
		APIVersion:    cfg.Cashfree.APIVersion,
		ReturnURLBase: cfg.Cashfree.ReturnURLBase,
		NotifyURLBase: cfg.Cashfree.NotifyURLBase,
		Timeout:       cfg.Cashfree.Timeout,
	})

	svc := payments.NewService(repo, gateway, cfg.Currency)
	svc.SetLogger(logger)

	rec := payments.NewReconcileService(repo, gateway)
	rec.SetLogger(logger)

	if cfg.SMTP.Host != "" && cfg.MailFrom != "" {
		smtpMailer := mailer.NewSMTPMailer(cfg.SMTP)
		rec.SetNotifier(email.NewReceiptService(smtpMailer, cfg.MailFrom, cfg.MailFromName))
	}

	if st, err := storage.FromEnv(context.Background()); err != nil {
		logger.Warn("payload archive disabled", "err", err)
	} else {
		rec.SetArchiver(payments.NewPayloadArchive(st.Storage))
		logger.Info("payload archive enabled", "driver", st.Driver)
	}

	r := apphttp.NewRouter(apphttp.Deps{
		Logger:          logger,
		Orders:          handlers.NewOrdersHandler(logger, svc),
		Webhook:         handlers.NewWebhookHandler(logger, gateway, rec),
		Notification:    handlers.NewNotificationHandler(logger, rec),
		PaymentResponse: handlers.NewPaymentResponseHandler(logger, rec),
	})
	_ = r.Run(cfg.HTTPAddr)
}
