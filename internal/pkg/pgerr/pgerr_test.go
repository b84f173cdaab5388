package pgerr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/pgerr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		kind errs.Kind
	}{
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), errs.KindUnavailable},
		{"canceled", context.Canceled, errs.KindUnavailable},
		{"serialization", &pgconn.PgError{Code: pgerr.SerializationFailure}, errs.KindUnavailable},
		{"deadlock", &pgconn.PgError{Code: pgerr.DeadlockDetected}, errs.KindUnavailable},
		{"connection exception", &pgconn.PgError{Code: "08006"}, errs.KindUnavailable},
		{"unique", &pgconn.PgError{Code: pgerr.UniqueViolation, ConstraintName: "orders_booking_id_key"}, errs.KindConflict},
		{"syntax", &pgconn.PgError{Code: "42601"}, errs.KindInternal},
		{"plain", errors.New("boom"), errs.KindInternal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := pgerr.Translate("update order", tc.err)

			require.Error(t, err)
			assert.Equal(t, tc.kind, errs.KindOf(err))
			require.ErrorIs(t, err, tc.err)
			assert.Contains(t, err.Error(), "update order")
		})
	}
}

func TestTranslate_PassThrough(t *testing.T) {
	require.NoError(t, pgerr.Translate("get", nil))
	assert.Equal(t, gorm.ErrRecordNotFound, pgerr.Translate("get", gorm.ErrRecordNotFound))
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerr.UniqueViolation, ConstraintName: "orders_booking_id_key"})

	assert.True(t, pgerr.IsUniqueViolation(err, ""))
	assert.True(t, pgerr.IsUniqueViolation(err, "orders_booking_id_key"))
	assert.False(t, pgerr.IsUniqueViolation(err, "drivers_phone_key"))
	assert.False(t, pgerr.IsUniqueViolation(errors.New("other"), ""))
}
