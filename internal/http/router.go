package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/swarupnama50/cf-py/internal/http/handlers"
	"github.com/swarupnama50/cf-py/internal/http/middleware"
)

type Deps struct {
	Logger          *slog.Logger
	Orders          *handlers.OrdersHandler
	Webhook         *handlers.WebhookHandler
	Notification    *handlers.NotificationHandler
	PaymentResponse *handlers.PaymentResponseHandler
}

func NewRouter(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// ErrorHandler wraps Recovery so a recovered panic still gets rendered as
	// a structured 500 on the way back out.
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.ErrorHandler(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/create_order", d.Orders.CreateOrder)
	r.POST("/resume_payment", d.Orders.ResumePayment)
	r.POST("/initiate_payment", d.Orders.InitiatePayment)
	r.GET("/payment_response", d.PaymentResponse.Handle)
	r.POST("/webhook", d.Webhook.Handle)
	r.POST("/payment_notification", d.Notification.Handle)

	return r
}
