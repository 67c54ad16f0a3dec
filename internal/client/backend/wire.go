package backend

import (
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
)

// isoMillis matches the timestamps written by the web client.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Row types mirror the snake_case columns of the remote tables. Nullable
// columns are pointers.

type deviceRow struct {
	ID                         string         `json:"id,omitempty"`
	Name                       string         `json:"name"`
	Type                       string         `json:"type"`
	Manufacturer               *string        `json:"manufacturer"`
	Location                   string         `json:"location"`
	Status                     string         `json:"status"`
	ImageURL                   *string        `json:"image_url"`
	ManualURL                  *string        `json:"manual_url"`
	LastMaintenance            *string        `json:"last_maintenance"`
	NextMaintenance            *string        `json:"next_maintenance"`
	MaintenancePeriod          *string        `json:"maintenance_period"`
	Specifications             map[string]any `json:"specifications"`
	Downtime                   float64        `json:"downtime"`
	LastStatusChange           *string        `json:"last_status_change"`
	ElectricalInspectionDate   *string        `json:"electrical_inspection_date"`
	ElectricalInspectionPeriod *int           `json:"electrical_inspection_period"`
	ElectricalInspectionExpiry *string        `json:"electrical_inspection_expiry"`
}

type embeddedDevice struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type partRow struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	MinQuantity *int            `json:"min_quantity"`
	Location    string          `json:"location"`
	DeviceID    *string         `json:"device_id"`
	DeviceName  *string         `json:"device_name"`
	Devices     *embeddedDevice `json:"devices,omitempty"`
}

type logRow struct {
	ID              string `json:"id,omitempty"`
	DeviceID        string `json:"device_id"`
	DeviceName      string `json:"device_name"`
	Date            string `json:"date"`
	Technician      string `json:"technician"`
	Notes           string `json:"notes"`
	Type            string `json:"type"`
	DurationMinutes *int   `json:"duration_minutes"`
}

type historyRow struct {
	ID             string  `json:"id,omitempty"`
	PartID         string  `json:"part_id"`
	PartName       string  `json:"part_name"`
	QuantityBefore int     `json:"quantity_before"`
	QuantityAfter  int     `json:"quantity_after"`
	ChangeType     string  `json:"change_type"`
	Notes          *string `json:"notes"`
	ChangedBy      string  `json:"changed_by"`
	CreatedAt      string  `json:"created_at,omitempty"`
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// nullable maps the zero value to JSON null.
func nullable[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

// instantLayouts are tried in order. Postgres timestamp columns without a
// zone come back without an offset and are read as UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
}

// parseInstant returns the zero time for an empty or unreadable value.
func parseInstant(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

func (r deviceRow) toModel() models.Device {
	return models.Device{
		ID:                         r.ID,
		Name:                       r.Name,
		Type:                       r.Type,
		Manufacturer:               deref(r.Manufacturer),
		Location:                   r.Location,
		Status:                     models.DeviceStatus(r.Status),
		ImageURL:                   deref(r.ImageURL),
		ManualURL:                  deref(r.ManualURL),
		LastMaintenance:            deref(r.LastMaintenance),
		NextMaintenance:            deref(r.NextMaintenance),
		MaintenancePeriod:          models.MaintenancePeriod(deref(r.MaintenancePeriod)),
		Specifications:             r.Specifications,
		Downtime:                   r.Downtime,
		LastStatusChange:           parseInstant(deref(r.LastStatusChange)),
		ElectricalInspectionDate:   deref(r.ElectricalInspectionDate),
		ElectricalInspectionPeriod: models.InspectionPeriod(deref(r.ElectricalInspectionPeriod)),
		ElectricalInspectionExpiry: deref(r.ElectricalInspectionExpiry),
	}
}

func deviceToRow(d models.Device) deviceRow {
	var lsc *string
	if !d.LastStatusChange.IsZero() {
		lsc = nullable(formatInstant(d.LastStatusChange))
	}
	return deviceRow{
		ID:                         d.ID,
		Name:                       d.Name,
		Type:                       d.Type,
		Manufacturer:               nullable(d.Manufacturer),
		Location:                   d.Location,
		Status:                     string(d.Status),
		ImageURL:                   nullable(d.ImageURL),
		ManualURL:                  nullable(d.ManualURL),
		LastMaintenance:            nullable(d.LastMaintenance),
		NextMaintenance:            nullable(d.NextMaintenance),
		MaintenancePeriod:          nullable(string(d.MaintenancePeriod)),
		Specifications:             d.Specifications,
		Downtime:                   d.Downtime,
		LastStatusChange:           lsc,
		ElectricalInspectionDate:   nullable(d.ElectricalInspectionDate),
		ElectricalInspectionPeriod: nullable(int(d.ElectricalInspectionPeriod)),
		ElectricalInspectionExpiry: nullable(d.ElectricalInspectionExpiry),
	}
}

func (r partRow) toModel() models.SparePart {
	p := models.SparePart{
		ID:          r.ID,
		Name:        r.Name,
		SKU:         r.SKU,
		Quantity:    r.Quantity,
		MinQuantity: models.DefaultMinQuantity,
		Location:    r.Location,
		DeviceID:    deref(r.DeviceID),
		DeviceName:  deref(r.DeviceName),
	}
	if r.MinQuantity != nil {
		p.MinQuantity = *r.MinQuantity
	}
	if r.Devices != nil {
		if r.Devices.Name != "" {
			p.DeviceName = r.Devices.Name
		}
		p.DeviceType = r.Devices.Type
	}
	return p
}

func partToRow(p models.SparePart) partRow {
	minQty := p.MinQuantity
	return partRow{
		Name:        p.Name,
		SKU:         p.SKU,
		Quantity:    p.Quantity,
		MinQuantity: &minQty,
		Location:    p.Location,
		DeviceID:    nullable(p.DeviceID),
		DeviceName:  nullable(p.DeviceName),
	}
}

func (r logRow) toModel() models.MaintenanceLog {
	return models.MaintenanceLog{
		ID:              r.ID,
		DeviceID:        r.DeviceID,
		DeviceName:      r.DeviceName,
		Date:            r.Date,
		Technician:      r.Technician,
		Notes:           r.Notes,
		Type:            models.LogType(r.Type),
		DurationMinutes: deref(r.DurationMinutes),
	}
}

func logToRow(l models.MaintenanceLog) logRow {
	dur := l.DurationMinutes
	return logRow{
		DeviceID:        l.DeviceID,
		DeviceName:      l.DeviceName,
		Date:            l.Date,
		Technician:      l.Technician,
		Notes:           l.Notes,
		Type:            string(l.Type),
		DurationMinutes: &dur,
	}
}

func (r historyRow) toModel() models.SparePartHistory {
	return models.SparePartHistory{
		ID:             r.ID,
		PartID:         r.PartID,
		PartName:       r.PartName,
		QuantityBefore: r.QuantityBefore,
		QuantityAfter:  r.QuantityAfter,
		ChangeType:     models.ChangeType(r.ChangeType),
		Notes:          deref(r.Notes),
		ChangedBy:      r.ChangedBy,
		CreatedAt:      parseInstant(r.CreatedAt),
	}
}

func historyToRow(h models.SparePartHistory) historyRow {
	return historyRow{
		PartID:         h.PartID,
		PartName:       h.PartName,
		QuantityBefore: h.QuantityBefore,
		QuantityAfter:  h.QuantityAfter,
		ChangeType:     string(h.ChangeType),
		Notes:          nullable(h.Notes),
		ChangedBy:      h.ChangedBy,
	}
}
