package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, IsTerminal(StatusPending))
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.True(t, IsTerminal(StatusExpired))
	assert.False(t, IsTerminal("PAID"))
	assert.False(t, IsTerminal(""))
}

func TestIsValidStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []string{StatusPending, StatusCompleted, StatusCancelled, StatusExpired} {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("refunded"))
	assert.False(t, IsValidStatus(""))
}

func TestOrderSessionID(t *testing.T) {
	t.Parallel()

	var o Order
	assert.Equal(t, "", o.SessionID())

	sid := "sess_abc"
	o.PaymentSessionID = &sid
	assert.Equal(t, "sess_abc", o.SessionID())
}
