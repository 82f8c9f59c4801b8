package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swarupnama50/cf-py/internal/shared/apperr"
)

type PaymentResponseHandler struct {
	Logger *slog.Logger
	Rec    Reconciler
}

func NewPaymentResponseHandler(logger *slog.Logger, rec Reconciler) *PaymentResponseHandler {
	return &PaymentResponseHandler{Logger: logger, Rec: rec}
}

// GET /payment_response?order_id=...
// Redirect-time verification. A failed verification is a legitimate outcome
// reported with status "failed", not an error.
func (h *PaymentResponseHandler) Handle(c *gin.Context) {
	orderID := c.Query("order_id")
	if orderID == "" {
		fail(c, apperr.InvalidErr("Order ID is required.", nil))
		return
	}

	res, err := h.Rec.VerifyPayment(c.Request.Context(), orderID)
	if err != nil {
		fail(c, err)
		return
	}

	payload := gin.H{
		"message":  res.Message,
		"order_id": res.OrderID,
		"status":   res.Status,
	}
	if res.Verified {
		payload["redirect_url"] = "image_screen"
	}
	c.JSON(http.StatusOK, payload)
}
