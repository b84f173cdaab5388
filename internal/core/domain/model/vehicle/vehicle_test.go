package vehicle_test

import (
	"testing"

	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestoreVehicleType(t *testing.T) {
	v, err := vehicle.RestoreVehicleType(" sedan ", "Sedan", 50, 12, 4, true)

	require.NoError(t, err)
	require.NoError(t, v.Validate())
	assert.Equal(t, "sedan", v.Key())
	assert.Equal(t, 4, v.Capacity())
	assert.True(t, v.IsActive())

	_, err = vehicle.RestoreVehicleType("", "Nothing", 0, 0, 0, true)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	var zero vehicle.VehicleType
	require.ErrorIs(t, zero.Validate(), vehicle.ErrVehicleTypeIsNotConstructed)
}
