package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusCancellable(t *testing.T) {
	cancellable := map[OrderStatus]bool{
		OrderStatusPending:    true,
		OrderStatusProcessing: true,
		OrderStatusShipped:    false,
		OrderStatusDelivered:  false,
		OrderStatusCancelled:  false,
		OrderStatusReturned:   false,
	}
	for status, want := range cancellable {
		assert.Equal(t, want, status.Cancellable(), status.String())
	}
}

func TestParseReturnReasonKeepsDisplayCasing(t *testing.T) {
	reason, err := ParseReturnReason("Wrong Item")
	require.NoError(t, err)
	assert.Equal(t, ReturnReasonWrongItem, reason)

	_, err = ParseReturnReason("wrong item")
	require.Error(t, err)
}

func TestPaymentStatusIncludesPaid(t *testing.T) {
	assert.True(t, PaymentStatusPaid.IsValid())
	assert.True(t, PaymentStatusCompleted.IsValid())
	assert.False(t, PaymentStatus("settled").IsValid())
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("admin")
	require.NoError(t, err)
	assert.Equal(t, UserRoleAdmin, role)

	_, err = ParseUserRole("owner")
	require.Error(t, err)
}
