package order_test

import (
	"testing"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, status := range order.AllStatuses() {
		t.Run(status.String(), func(t *testing.T) {
			parsed, err := order.ParseStatus(status.String())

			require.NoError(t, err)
			assert.Equal(t, status, parsed)
		})
	}

	t.Run("should reject unknown names", func(t *testing.T) {
		for _, name := range []string{"", "flying", "Pending", "unknown"} {
			_, err := order.ParseStatus(name)

			require.ErrorIs(t, err, errs.ErrValueIsInvalid, name)
		}
	})
}

func TestStatus_Validate(t *testing.T) {
	require.Error(t, order.Unknown.Validate())
	require.Error(t, order.Status(42).Validate())
	assert.Equal(t, "unknown", order.Status(42).String())

	for _, status := range order.AllStatuses() {
		require.NoError(t, status.Validate())
	}
}

func TestStatus_Classification(t *testing.T) {
	testCases := []struct {
		status         order.Status
		terminal       bool
		requiresDriver bool
	}{
		{order.Pending, false, false},
		{order.Assigned, false, true},
		{order.Accepted, false, true},
		{order.PickedUp, false, true},
		{order.InProgress, false, true},
		{order.Completed, true, false},
		{order.Cancelled, true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.status.String(), func(t *testing.T) {
			assert.Equal(t, tc.terminal, tc.status.IsTerminal())
			assert.Equal(t, tc.requiresDriver, tc.status.RequiresDriver())
			assert.Equal(t, tc.requiresDriver, tc.status.IsActive())
		})
	}
}
