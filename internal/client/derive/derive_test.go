package derive

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return v
}

func TestApplyStatusChange_MaintenanceToOperational(t *testing.T) {
	d := models.Device{
		ID:               "cnc-001",
		Status:           models.StatusMaintenance,
		Downtime:         10.5,
		LastStatusChange: mustTime(t, "2024-07-20T10:00:00Z"),
	}
	now := mustTime(t, "2024-07-22T10:00:00Z")

	got := ApplyStatusChange(d, models.StatusOperational, now)

	assert.InDelta(t, 58.5, got.Downtime, 1e-9)
	assert.Equal(t, models.StatusOperational, got.Status)
	assert.True(t, got.LastStatusChange.Equal(now))
}

func TestApplyStatusChange_DowntimeUnchanged(t *testing.T) {
	last := mustTime(t, "2024-07-20T10:00:00Z")
	now := last.Add(5 * time.Hour)

	tests := []struct {
		name     string
		from, to models.DeviceStatus
	}{
		{"operational to maintenance", models.StatusOperational, models.StatusMaintenance},
		{"operational to offline", models.StatusOperational, models.StatusOffline},
		{"maintenance to offline", models.StatusMaintenance, models.StatusOffline},
		{"offline to maintenance", models.StatusOffline, models.StatusMaintenance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := models.Device{Status: tt.from, Downtime: 3.25, LastStatusChange: last}
			got := ApplyStatusChange(d, tt.to, now)
			assert.Equal(t, 3.25, got.Downtime)
			assert.Equal(t, tt.to, got.Status)
			assert.True(t, got.LastStatusChange.Equal(now))
		})
	}
}

func TestApplyStatusChange_SameStatusIsNoop(t *testing.T) {
	last := mustTime(t, "2024-07-20T10:00:00Z")
	d := models.Device{Status: models.StatusOffline, Downtime: 1, LastStatusChange: last}
	got := ApplyStatusChange(d, models.StatusOffline, last.Add(time.Hour))
	assert.Equal(t, d, got)
}

func TestAccumulatedDowntime_OfflineRoundsToTwoDecimals(t *testing.T) {
	last := mustTime(t, "2024-07-15T16:45:00Z")
	now := last.Add(20 * time.Minute)
	got := AccumulatedDowntime(120.7, models.StatusOffline, models.StatusOperational, last, now)
	assert.Equal(t, 121.03, got)
}

func TestAccumulatedDowntime_ClockSkewNeverDecreases(t *testing.T) {
	last := mustTime(t, "2024-07-15T16:45:00Z")
	got := AccumulatedDowntime(4, models.StatusOffline, models.StatusOperational, last, last.Add(-time.Hour))
	assert.Equal(t, 4.0, got)
}

func TestInspectionExpiry(t *testing.T) {
	for _, p := range []models.InspectionPeriod{1, 2, 3, 4, 5, 10} {
		got, err := InspectionExpiry("2024-03-15", p)
		require.NoError(t, err)
		exp, _ := time.Parse(models.DateLayout, got)
		assert.Equal(t, 2024+int(p), exp.Year())
		assert.Equal(t, time.March, exp.Month())
		assert.Equal(t, 15, exp.Day())
	}
}

func TestInspectionExpiry_LeapDay(t *testing.T) {
	got, err := InspectionExpiry("2024-02-29", 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", got)

	got, err = InspectionExpiry("2024-02-29", 4)
	require.NoError(t, err)
	assert.Equal(t, "2028-02-29", got)
}

func TestApplyInspection(t *testing.T) {
	d, err := ApplyInspection(models.Device{ID: "press-003"}, "2024-06-01", 5)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", d.ElectricalInspectionDate)
	assert.Equal(t, models.InspectionPeriod(5), d.ElectricalInspectionPeriod)
	assert.Equal(t, "2029-06-01", d.ElectricalInspectionExpiry)

	_, err = ApplyInspection(d, "01/06/2024", 5)
	require.Error(t, err)
}
