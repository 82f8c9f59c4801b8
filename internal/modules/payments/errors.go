package payments

import (
	"errors"
	"fmt"
)

var (
	ErrAmountNotPositive = errors.New("order amount must be positive")
	ErrMissingOrderID    = errors.New("order id is required")
	ErrMissingCustomer   = errors.New("customer contact is required")
	ErrRemoteNotFound    = errors.New("gateway: order not found")
	ErrBadSignature      = errors.New("webhook signature verification failed")
)

// UnmappedStatusError marks a gateway status code outside the fixed mapping
// table. It is a validation failure: storing it would corrupt the state
// machine with unmapped vendor vocabulary.
type UnmappedStatusError struct {
	Status string
}

func (e *UnmappedStatusError) Error() string {
	return fmt.Sprintf("unmapped gateway status %q", e.Status)
}

// GatewayError carries a non-2xx gateway response. Code and Message come from
// the gateway body; StatusCode is passed through to the caller.
type GatewayError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("gateway: %s (http %d)", e.Message, e.StatusCode)
}
