package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/swarupnama50/cf-py/internal/http/middleware"
	"github.com/swarupnama50/cf-py/internal/modules/orders"
	"github.com/swarupnama50/cf-py/internal/modules/payments"
	"github.com/swarupnama50/cf-py/internal/shared/apperr"
)

// fail maps domain errors onto the apperr taxonomy and hands off to the
// error-handler middleware.
func fail(c *gin.Context, err error) {
	middleware.Fail(c, toAppError(err))
}

func toAppError(err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}

	var unmapped *payments.UnmappedStatusError
	var gw *payments.GatewayError

	switch {
	case errors.Is(err, orders.ErrNotFound):
		return apperr.NotFoundErr("Order not found.")
	case errors.Is(err, orders.ErrAlreadyExists):
		return apperr.ConflictErr("Order already exists.")
	case errors.Is(err, payments.ErrAmountNotPositive):
		return apperr.InvalidErr("Order amount must be positive.", nil)
	case errors.Is(err, payments.ErrMissingOrderID):
		return apperr.InvalidErr("Order ID is required.", nil)
	case errors.Is(err, payments.ErrMissingCustomer):
		return apperr.InvalidErr("Customer phone is required.", nil)
	case errors.Is(err, payments.ErrBadSignature):
		return apperr.InvalidErr("Invalid signature or payload.", nil)
	case errors.As(err, &unmapped):
		return apperr.InvalidErr("Unrecognized payment status.", map[string]string{
			"status": unmapped.Status,
		})
	case errors.As(err, &gw):
		return apperr.GatewayErr(gw.StatusCode, gw.Message, gw)
	}
	return apperr.Wrap(err)
}
