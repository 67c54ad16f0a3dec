package backend

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/client/derive"
	"github.com/dmitrijs2005/maintkeeper/internal/client/mirror"
	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
)

// Placeholder URLs returned by offline uploads.
const (
	MockManualURL = "mock-manual-url"
	MockImageURL  = "mock-image-url"
)

// Memory applies every operation to the mirror without network I/O.
type Memory struct {
	store *mirror.Store
	opts  Options
}

var _ DataBackend = (*Memory)(nil)

// NewMemory returns a backend over store. With opts.Seed set, empty
// collections are filled with the demo data.
func NewMemory(store *mirror.Store, opts Options) *Memory {
	opts = opts.withDefaults()
	if opts.Seed {
		Seed(store)
	}
	return &Memory{store: store, opts: opts}
}

// LoadDevices returns the mirrored devices.
func (m *Memory) LoadDevices(context.Context) ([]models.Device, error) {
	return m.store.Devices.Snapshot(), nil
}

func (m *Memory) GetDevice(_ context.Context, id string) (models.Device, error) {
	d, ok := m.store.Devices.Get(id)
	if !ok {
		return models.Device{}, fmt.Errorf("device %s: %w", id, common.ErrNotFound)
	}
	return d, nil
}

// CreateDevice assigns an id when d has none and prepends the device.
func (m *Memory) CreateDevice(_ context.Context, d models.Device) (models.Device, error) {
	d, err := m.prepareDevice(d)
	if err != nil {
		return models.Device{}, err
	}
	if d.ID == "" {
		d.ID = m.opts.NewID()
	}
	m.store.Devices.Prepend(d)
	return d, nil
}

// prepareDevice validates d and fills the fields derived from others.
func (m *Memory) prepareDevice(d models.Device) (models.Device, error) {
	if d.Status == "" {
		d.Status = models.StatusOperational
	}
	if err := d.Validate(); err != nil {
		return d, err
	}
	if d.LastStatusChange.IsZero() {
		d.LastStatusChange = m.opts.Now().UTC()
	}
	if d.ElectricalInspectionDate != "" && d.ElectricalInspectionPeriod != 0 {
		var err error
		if d, err = derive.ApplyInspection(d, d.ElectricalInspectionDate, d.ElectricalInspectionPeriod); err != nil {
			return d, fmt.Errorf("%w: inspection date: %w", common.ErrValidation, err)
		}
	} else {
		d.ElectricalInspectionExpiry = ""
	}
	return d, nil
}

// UpdateDeviceStatus applies the status change at Options.Now.
func (m *Memory) UpdateDeviceStatus(_ context.Context, id string, status models.DeviceStatus) (models.Device, error) {
	if !status.Valid() {
		return models.Device{}, fmt.Errorf("%w: unknown device status %q", common.ErrValidation, status)
	}
	return m.applyStatus(id, status, m.opts.Now().UTC())
}

func (m *Memory) applyStatus(id string, status models.DeviceStatus, at time.Time) (models.Device, error) {
	d, ok := m.store.Devices.Update(id, func(d models.Device) models.Device {
		return derive.ApplyStatusChange(d, status, at)
	})
	if !ok {
		return models.Device{}, fmt.Errorf("device %s: %w", id, common.ErrNotFound)
	}
	return d, nil
}

// UpdateElectricalInspection stores the inspection and its derived expiry.
func (m *Memory) UpdateElectricalInspection(_ context.Context, id, date string, period models.InspectionPeriod) (models.Device, error) {
	if !period.Valid() {
		return models.Device{}, fmt.Errorf("%w: inspection period must be 1, 2, 3, 4, 5 or 10 years", common.ErrValidation)
	}
	if _, err := derive.InspectionExpiry(date, period); err != nil {
		return models.Device{}, fmt.Errorf("%w: inspection date: %w", common.ErrValidation, err)
	}
	return m.applyInspection(id, date, period)
}

func (m *Memory) applyInspection(id, date string, period models.InspectionPeriod) (models.Device, error) {
	d, ok := m.store.Devices.Update(id, func(d models.Device) models.Device {
		out, err := derive.ApplyInspection(d, date, period)
		if err != nil {
			return d
		}
		return out
	})
	if !ok {
		return models.Device{}, fmt.Errorf("device %s: %w", id, common.ErrNotFound)
	}
	return d, nil
}

func (m *Memory) DeleteDevice(_ context.Context, id string) error {
	m.store.Devices.Remove(id)
	return nil
}

// UploadDeviceManual keeps no file; the device points at a placeholder.
func (m *Memory) UploadDeviceManual(_ context.Context, id string, _ File) (string, error) {
	return MockManualURL, m.setDeviceURL(id, func(d *models.Device) { d.ManualURL = MockManualURL })
}

func (m *Memory) UploadDeviceImage(_ context.Context, id string, _ File) (string, error) {
	return MockImageURL, m.setDeviceURL(id, func(d *models.Device) { d.ImageURL = MockImageURL })
}

func (m *Memory) setDeviceURL(id string, set func(*models.Device)) error {
	_, ok := m.store.Devices.Update(id, func(d models.Device) models.Device {
		set(&d)
		return d
	})
	if !ok {
		return fmt.Errorf("device %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (m *Memory) LoadParts(context.Context) ([]models.SparePart, error) {
	return m.store.Parts.Snapshot(), nil
}

// CreatePart rejects a SKU that is already in the mirror.
func (m *Memory) CreatePart(_ context.Context, p models.SparePart) (models.SparePart, error) {
	if err := p.Validate(); err != nil {
		return models.SparePart{}, err
	}
	for _, existing := range m.store.Parts.Snapshot() {
		if existing.SKU == p.SKU {
			return models.SparePart{}, fmt.Errorf("%w: %s", common.ErrSKUExists, p.SKU)
		}
	}
	if p.ID == "" {
		p.ID = m.opts.NewID()
	}
	m.store.Parts.Prepend(p)
	return p, nil
}

// UpdatePartQuantity sets the stock and attributes the change to the actor.
func (m *Memory) UpdatePartQuantity(ctx context.Context, id string, quantity int, change models.ChangeType, notes string) (models.SparePart, error) {
	if err := validateQuantityChange(quantity, change); err != nil {
		return models.SparePart{}, err
	}
	return m.applyQuantity(id, quantity, change, notes, m.opts.Actor(ctx), m.opts.Now().UTC())
}

func validateQuantityChange(quantity int, change models.ChangeType) error {
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", common.ErrValidation)
	}
	if !change.Valid() {
		return fmt.Errorf("%w: unknown change type %q", common.ErrValidation, change)
	}
	return nil
}

func (m *Memory) applyQuantity(id string, quantity int, change models.ChangeType, notes, actor string, at time.Time) (models.SparePart, error) {
	p, ok := m.store.Parts.Update(id, func(p models.SparePart) models.SparePart {
		p.LastChange = &models.PartChange{
			Date:           at,
			ChangedBy:      actor,
			Notes:          notes,
			ChangeType:     change,
			QuantityBefore: p.Quantity,
			QuantityAfter:  quantity,
		}
		p.Quantity = quantity
		return p
	})
	if !ok {
		return models.SparePart{}, fmt.Errorf("part %s: %w", id, common.ErrNotFound)
	}
	return p, nil
}

// PartLastChange returns the change recorded on the mirrored part.
func (m *Memory) PartLastChange(_ context.Context, id string) (*models.PartChange, error) {
	p, ok := m.store.Parts.Get(id)
	if !ok {
		return nil, fmt.Errorf("part %s: %w", id, common.ErrNotFound)
	}
	return p.LastChange, nil
}

func (m *Memory) DeletePart(_ context.Context, id string) error {
	m.store.Parts.Remove(id)
	return nil
}

func (m *Memory) LoadMaintenanceLogs(context.Context) ([]models.MaintenanceLog, error) {
	return m.store.Logs.Snapshot(), nil
}

// CreateMaintenanceLog prepends l under a new id.
func (m *Memory) CreateMaintenanceLog(_ context.Context, l models.MaintenanceLog) (models.MaintenanceLog, error) {
	if err := l.Validate(); err != nil {
		return models.MaintenanceLog{}, err
	}
	return m.recordLog(l, m.opts.Now()), nil
}

// recordLog stores l and moves the device's last maintenance to the day of at.
func (m *Memory) recordLog(l models.MaintenanceLog, at time.Time) models.MaintenanceLog {
	if l.ID == "" {
		l.ID = m.opts.NewID()
	}
	m.store.Logs.Prepend(l)
	m.touchLastMaintenance(l.DeviceID, today(at))
	return l
}

func (m *Memory) touchLastMaintenance(deviceID, date string) {
	m.store.Devices.Update(deviceID, func(d models.Device) models.Device {
		d.LastMaintenance = date
		return d
	})
}

func (m *Memory) DeleteMaintenanceLog(_ context.Context, id string) error {
	m.store.Logs.Remove(id)
	return nil
}

// imageExtension picks the object extension from the file name, then the
// content type.
func imageExtension(f File) string {
	if ext := strings.TrimPrefix(filepath.Ext(f.Name), "."); ext != "" {
		return strings.ToLower(ext)
	}
	if exts, err := mime.ExtensionsByType(f.ContentType); err == nil && len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	return "bin"
}
