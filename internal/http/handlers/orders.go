package handlers

import (
	"context"
	"log/slog"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swarupnama50/cf-py/internal/http/validation"
	"github.com/swarupnama50/cf-py/internal/modules/payments"
	"github.com/swarupnama50/cf-py/internal/shared/apperr"
)

// OrderService is the slice of payments.Service these handlers need.
type OrderService interface {
	CreateOrder(ctx context.Context, in payments.CreateOrderInput) (payments.CreateOrderResult, error)
	ResumePayment(ctx context.Context, in payments.ResumeInput) (payments.ResumeResult, error)
	InitiateCheckout(ctx context.Context, in payments.InitiateCheckoutInput) (payments.InitiateCheckoutResult, error)
}

type OrdersHandler struct {
	Logger *slog.Logger
	Svc    OrderService
}

func NewOrdersHandler(logger *slog.Logger, svc OrderService) *OrdersHandler {
	return &OrdersHandler{Logger: logger, Svc: svc}
}

type createOrderRequest struct {
	OrderID       string  `json:"order_id"`
	OrderAmount   float64 `json:"order_amount" binding:"required,gt=0"`
	CustomerID    string  `json:"customer_id"`
	CustomerName  string  `json:"customer_name" binding:"required"`
	CustomerEmail string  `json:"customer_email" binding:"required,email"`
	CustomerPhone string  `json:"customer_phone" binding:"required"`
}

// POST /create_order
func (h *OrdersHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fields := validation.FromBindError(err, &req)
		fail(c, apperr.InvalidErr("Invalid order request.", fields))
		return
	}

	res, err := h.Svc.CreateOrder(c.Request.Context(), payments.CreateOrderInput{
		OrderID:       req.OrderID,
		AmountPaise:   rupeesToPaise(req.OrderAmount),
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":           res.OrderID,
		"payment_session_id": res.PaymentSessionID,
	})
}

type resumePaymentRequest struct {
	OrderID     string  `json:"order_id" binding:"required"`
	CustomerKey string  `json:"customer_key" binding:"required"`
	OrderAmount float64 `json:"order_amount"`
}

// POST /resume_payment
func (h *OrdersHandler) ResumePayment(c *gin.Context) {
	var req resumePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fields := validation.FromBindError(err, &req)
		fail(c, apperr.InvalidErr("Invalid resume request.", fields))
		return
	}

	res, err := h.Svc.ResumePayment(c.Request.Context(), payments.ResumeInput{
		OrderID:     req.OrderID,
		CustomerKey: req.CustomerKey,
		AmountPaise: rupeesToPaise(req.OrderAmount),
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":           res.OrderID,
		"payment_session_id": res.PaymentSessionID,
	})
}

type initiatePaymentRequest struct {
	OrderID     string  `json:"order_id" binding:"required"`
	OrderAmount float64 `json:"order_amount"`
}

// POST /initiate_payment
func (h *OrdersHandler) InitiatePayment(c *gin.Context) {
	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fields := validation.FromBindError(err, &req)
		fail(c, apperr.InvalidErr("Invalid payment request.", fields))
		return
	}

	res, err := h.Svc.InitiateCheckout(c.Request.Context(), payments.InitiateCheckoutInput{
		OrderID:     req.OrderID,
		AmountPaise: rupeesToPaise(req.OrderAmount),
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_url": res.PaymentURL})
}

func rupeesToPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
