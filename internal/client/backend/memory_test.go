package backend

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/client/mirror"
	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transitionAt = time.Date(2024, 7, 22, 10, 0, 0, 0, time.UTC)

func newMemory(t *testing.T) (*Memory, *mirror.Store) {
	t.Helper()
	store := mirror.NewStore()
	seq := 0
	m := NewMemory(store, Options{
		Seed:  true,
		Now:   func() time.Time { return transitionAt },
		Actor: func(context.Context) string { return "admin@example.com" },
		NewID: func() string {
			seq++
			return "id-" + string(rune('0'+seq))
		},
	})
	return m, store
}

func TestMemory_SeedData(t *testing.T) {
	m, _ := newMemory(t)
	ctx := context.Background()

	devices, err := m.LoadDevices(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 4)
	assert.Equal(t, "cnc-001", devices[0].ID)

	parts, err := m.LoadParts(ctx)
	require.NoError(t, err)
	require.Len(t, parts, 4)

	logs, err := m.LoadMaintenanceLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 3)
}

func TestMemory_UpdateDeviceStatus(t *testing.T) {
	m, store := newMemory(t)
	ctx := context.Background()

	// lathe-002 is in maintenance since 2024-07-22T08:30:00Z.
	d, err := m.UpdateDeviceStatus(ctx, "lathe-002", models.StatusOperational)
	require.NoError(t, err)
	assert.InDelta(t, 26.7, d.Downtime, 1e-9)
	assert.True(t, d.LastStatusChange.Equal(transitionAt))

	mirrored, _ := store.Devices.Get("lathe-002")
	assert.Equal(t, d, mirrored)

	_, err = m.UpdateDeviceStatus(ctx, "nope", models.StatusOffline)
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = m.UpdateDeviceStatus(ctx, "cnc-001", "broken")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestMemory_UpdateElectricalInspection(t *testing.T) {
	m, _ := newMemory(t)
	ctx := context.Background()

	d, err := m.UpdateElectricalInspection(ctx, "press-003", "2024-06-01", 3)
	require.NoError(t, err)
	assert.Equal(t, "2027-06-01", d.ElectricalInspectionExpiry)

	_, err = m.UpdateElectricalInspection(ctx, "press-003", "2024-06-01", 7)
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = m.UpdateElectricalInspection(ctx, "press-003", "June 1st", 3)
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestMemory_CreateDevice(t *testing.T) {
	m, store := newMemory(t)

	d, err := m.CreateDevice(context.Background(), models.Device{
		Name: "Laser Cutter", Type: "Fabrication", Location: "Shop Floor B",
		ElectricalInspectionDate: "2024-02-29", ElectricalInspectionPeriod: 1,
		ElectricalInspectionExpiry: "1999-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", d.ID)
	assert.Equal(t, models.StatusOperational, d.Status)
	assert.Equal(t, "2025-03-01", d.ElectricalInspectionExpiry)
	assert.True(t, d.LastStatusChange.Equal(transitionAt))
	assert.Equal(t, "id-1", store.Devices.Snapshot()[0].ID)

	_, err = m.CreateDevice(context.Background(), models.Device{})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestMemory_Parts(t *testing.T) {
	m, store := newMemory(t)
	ctx := context.Background()

	_, err := m.CreatePart(ctx, models.SparePart{Name: "Dup", SKU: "BRG-5021"})
	require.ErrorIs(t, err, common.ErrSKUExists)
	require.ErrorIs(t, err, common.ErrConflict)

	p, err := m.CreatePart(ctx, models.SparePart{Name: "Drive Belt", SKU: "BLT-100", Quantity: 3, MinQuantity: 0, Location: "Bin D-02"})
	require.NoError(t, err)
	assert.Equal(t, 0, p.MinQuantity)

	p, err = m.UpdatePartQuantity(ctx, "sp-001", 5, models.ChangeDecrease, "used on cnc-001")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Quantity)
	require.NotNil(t, p.LastChange)
	assert.Equal(t, 15, p.LastChange.QuantityBefore)
	assert.Equal(t, 5, p.LastChange.QuantityAfter)
	assert.Equal(t, "admin@example.com", p.LastChange.ChangedBy)

	c, err := m.PartLastChange(ctx, "sp-001")
	require.NoError(t, err)
	assert.Equal(t, p.LastChange, c)

	_, err = m.UpdatePartQuantity(ctx, "sp-001", -1, models.ChangeSet, "")
	require.ErrorIs(t, err, common.ErrValidation)

	require.NoError(t, m.DeletePart(ctx, "sp-001"))
	_, ok := store.Parts.Get("sp-001")
	assert.False(t, ok)
}

func TestMemory_Logs(t *testing.T) {
	m, store := newMemory(t)
	ctx := context.Background()

	_, err := m.CreateMaintenanceLog(ctx, models.MaintenanceLog{DeviceID: "cnc-001", Type: models.LogScheduled, DurationMinutes: 10})
	require.ErrorIs(t, err, common.ErrValidation)

	l, err := m.CreateMaintenanceLog(ctx, models.MaintenanceLog{
		DeviceID: "cnc-001", DeviceName: "CNC Mill", Date: "2024-07-22",
		Technician: "admin@example.com", Type: models.LogScheduled, DurationMinutes: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, l.ID, store.Logs.Snapshot()[0].ID)

	d, _ := store.Devices.Get("cnc-001")
	assert.Equal(t, transitionAt.Format(models.DateLayout), d.LastMaintenance)

	require.NoError(t, m.DeleteMaintenanceLog(ctx, l.ID))
	assert.Equal(t, 3, store.Logs.Len())
}

func TestMemory_Uploads(t *testing.T) {
	m, store := newMemory(t)
	ctx := context.Background()

	u, err := m.UploadDeviceManual(ctx, "cnc-001", File{Name: "manual.pdf"})
	require.NoError(t, err)
	assert.Equal(t, MockManualURL, u)

	u, err = m.UploadDeviceImage(ctx, "cnc-001", File{Name: "cnc.png"})
	require.NoError(t, err)
	assert.Equal(t, MockImageURL, u)

	d, _ := store.Devices.Get("cnc-001")
	assert.Equal(t, MockManualURL, d.ManualURL)
	assert.Equal(t, MockImageURL, d.ImageURL)

	_, err = m.UploadDeviceImage(ctx, "ghost", File{})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestImageExtension(t *testing.T) {
	assert.Equal(t, "jpg", imageExtension(File{Name: "Photo.JPG"}))
	assert.Equal(t, "png", imageExtension(File{ContentType: "image/png"}))
	assert.Equal(t, "bin", imageExtension(File{}))
}
