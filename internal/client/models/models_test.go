package models

import (
	"testing"

	"github.com/dmitrijs2005/maintkeeper/internal/common"
	"github.com/stretchr/testify/require"
)

func TestEnums(t *testing.T) {
	require.True(t, StatusOffline.Valid())
	require.False(t, DeviceStatus("broken").Valid())
	require.True(t, StatusMaintenance.Down())
	require.False(t, StatusOperational.Down())

	for _, p := range []InspectionPeriod{1, 2, 3, 4, 5, 10} {
		require.True(t, p.Valid(), "period %d", p)
	}
	require.False(t, InspectionPeriod(6).Valid())

	require.True(t, MaintenancePeriod("").Valid())
	require.False(t, MaintenancePeriod("weekly").Valid())
	require.True(t, ChangeSet.Valid())
	require.False(t, Role("root").Valid())
}

func TestMaintenanceLog_Validate(t *testing.T) {
	l := MaintenanceLog{DeviceID: "cnc-001", Type: LogScheduled, DurationMinutes: 15}
	require.NoError(t, l.Validate())

	l.DurationMinutes = 14
	require.ErrorIs(t, l.Validate(), common.ErrValidation)

	l.DurationMinutes = 30
	l.Type = "routine"
	require.ErrorIs(t, l.Validate(), common.ErrValidation)
}

func TestSparePart_ValidateAndLowStock(t *testing.T) {
	p := SparePart{Name: "Servo Motor", SKU: "MOT-S-850", Quantity: 8, MinQuantity: 10}
	require.NoError(t, p.Validate())
	require.True(t, p.LowStock())

	p.Quantity = -1
	require.ErrorIs(t, p.Validate(), common.ErrValidation)
}

func TestDevice_CloneIsolatesSpecifications(t *testing.T) {
	d := Device{ID: "cnc-001", Specifications: map[string]any{"weight": 1200}}
	c := d.Clone()
	c.Specifications["weight"] = 1
	require.Equal(t, 1200, d.Specifications["weight"])
}

func TestSparePart_CloneIsolatesLastChange(t *testing.T) {
	p := SparePart{ID: "sp-001", LastChange: &PartChange{QuantityAfter: 5}}
	c := p.Clone()
	c.LastChange.QuantityAfter = 1
	require.Equal(t, 5, p.LastChange.QuantityAfter)
}

func TestTokenBundle_ExpiryTime(t *testing.T) {
	require.True(t, TokenBundle{}.ExpiryTime().IsZero())
	require.Equal(t, int64(1700000000), TokenBundle{ExpiresAt: 1700000000}.ExpiryTime().Unix())
}
