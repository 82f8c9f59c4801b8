package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	OrderID       string  `json:"order_id" validate:"required"`
	OrderAmount   float64 `json:"order_amount" validate:"required,gt=0"`
	CustomerEmail string  `json:"customer_email,omitempty" validate:"required,email"`
	Note          string  `validate:"max=3"`
}

func TestFromBindError(t *testing.T) {
	t.Parallel()

	v := validator.New()

	t.Run("maps validation errors onto json field names", func(t *testing.T) {
		err := v.Struct(sampleRequest{CustomerEmail: "nope", Note: "too long"})
		require.Error(t, err)

		fields := FromBindError(err, &sampleRequest{})
		assert.Equal(t, "This field is required.", fields["order_id"])
		assert.Equal(t, "This field is required.", fields["order_amount"])
		assert.Equal(t, "Enter a valid email address.", fields["customer_email"])
		assert.Equal(t, "Must be at most 3 characters.", fields["note"])
	})

	t.Run("gt carries its bound", func(t *testing.T) {
		err := v.Struct(sampleRequest{
			OrderID: "O1", OrderAmount: -5, CustomerEmail: "a@b.com",
		})
		require.Error(t, err)

		fields := FromBindError(err, &sampleRequest{})
		assert.Equal(t, "Must be greater than 0.", fields["order_amount"])
	})

	t.Run("non-validation bind errors get a catch-all entry", func(t *testing.T) {
		fields := FromBindError(errors.New("unexpected EOF"), &sampleRequest{})
		assert.Equal(t, "Request body is invalid.", fields["_"])
	})
}
