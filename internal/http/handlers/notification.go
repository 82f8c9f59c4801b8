package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/swarupnama50/cf-py/internal/modules/payments"
	"github.com/swarupnama50/cf-py/internal/shared/apperr"
)

type NotificationHandler struct {
	Logger *slog.Logger
	Rec    Reconciler
}

func NewNotificationHandler(logger *slog.Logger, rec Reconciler) *NotificationHandler {
	return &NotificationHandler{Logger: logger, Rec: rec}
}

type notificationForm struct {
	OrderID       string `form:"order_id" json:"order_id"`
	OrderIDLegacy string `form:"orderId" json:"orderId"`
	Status        string `form:"order_status" json:"order_status"`
	TxStatus      string `form:"txStatus" json:"txStatus"`
	ReferenceID   string `form:"referenceId" json:"referenceId"`
}

// POST /payment_notification
// Legacy best-effort path. It is unauthenticated, so it is low trust: the
// payload goes through the same mapping and the same conditional-update guard
// as the webhook, and can never regress a status the webhook already advanced.
func (h *NotificationHandler) Handle(c *gin.Context) {
	var form notificationForm
	if err := c.ShouldBind(&form); err != nil {
		fail(c, apperr.InvalidErr("Invalid notification payload.", nil))
		return
	}

	orderID := form.OrderID
	if orderID == "" {
		orderID = form.OrderIDLegacy
	}
	status := form.Status
	if status == "" {
		status = form.TxStatus
	}
	if orderID == "" || status == "" {
		fail(c, apperr.InvalidErr("Order ID and status are required.", nil))
		return
	}

	eventID := form.ReferenceID
	if eventID == "" {
		// No reference id to dedupe on; the status guard alone protects us.
		eventID = uuid.NewString()
	}

	ev := payments.WebhookEvent{EventID: eventID, OrderID: orderID, Status: status}
	if _, err := h.Rec.Apply(c.Request.Context(), payments.SourceNotification, ev, nil); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
