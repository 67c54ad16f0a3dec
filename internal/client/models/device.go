// Package models defines the client-side domain types of MaintKeeper.
package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/common"
)

// DateLayout is the calendar-date format used for maintenance and inspection dates.
const DateLayout = "2006-01-02"

// DeviceStatus is the operating state of a device.
type DeviceStatus string

const (
	StatusOperational DeviceStatus = "operational"
	StatusMaintenance DeviceStatus = "maintenance"
	StatusOffline     DeviceStatus = "offline"
)

func (s DeviceStatus) Valid() bool {
	switch s {
	case StatusOperational, StatusMaintenance, StatusOffline:
		return true
	}
	return false
}

// Down reports whether time spent in this status counts as downtime.
func (s DeviceStatus) Down() bool {
	return s == StatusMaintenance || s == StatusOffline
}

// MaintenancePeriod is the cadence of scheduled maintenance.
type MaintenancePeriod string

const (
	PeriodMonthly      MaintenancePeriod = "monthly"
	PeriodQuarterly    MaintenancePeriod = "quarterly"
	PeriodSemiAnnually MaintenancePeriod = "semi-annually"
	PeriodAnnually     MaintenancePeriod = "annually"
)

func (p MaintenancePeriod) Valid() bool {
	switch p {
	case "", PeriodMonthly, PeriodQuarterly, PeriodSemiAnnually, PeriodAnnually:
		return true
	}
	return false
}

// InspectionPeriod is the validity of an electrical inspection in years.
type InspectionPeriod int

func (p InspectionPeriod) Valid() bool {
	switch p {
	case 1, 2, 3, 4, 5, 10:
		return true
	}
	return false
}

// Device is a piece of maintained equipment.
type Device struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Type              string            `json:"type"`
	Manufacturer      string            `json:"manufacturer,omitempty"`
	Location          string            `json:"location"`
	Status            DeviceStatus      `json:"status"`
	ImageURL          string            `json:"imageUrl,omitempty"`
	ManualURL         string            `json:"manualUrl,omitempty"`
	LastMaintenance   string            `json:"lastMaintenance"`
	NextMaintenance   string            `json:"nextMaintenance"`
	MaintenancePeriod MaintenancePeriod `json:"maintenancePeriod,omitempty"`
	// Specifications values are strings or numbers.
	Specifications map[string]any `json:"specifications,omitempty"`
	// Downtime is the accumulated time outside operational status, in hours.
	Downtime         float64   `json:"downtime"`
	LastStatusChange time.Time `json:"lastStatusChange"`

	ElectricalInspectionDate   string           `json:"electricalInspectionDate,omitempty"`
	ElectricalInspectionPeriod InspectionPeriod `json:"electricalInspectionPeriod,omitempty"`
	ElectricalInspectionExpiry string           `json:"electricalInspectionExpiry,omitempty"`
}

// Key implements mirror.Keyed.
func (d Device) Key() string { return d.ID }

// Clone returns a copy that shares no mutable state with d.
func (d Device) Clone() Device {
	if d.Specifications != nil {
		specs := make(map[string]any, len(d.Specifications))
		for k, v := range d.Specifications {
			specs[k] = v
		}
		d.Specifications = specs
	}
	return d
}

// Validate checks the fields a new device must carry.
func (d Device) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: device name is required", common.ErrValidation)
	}
	if !d.Status.Valid() {
		return fmt.Errorf("%w: unknown device status %q", common.ErrValidation, d.Status)
	}
	if !d.MaintenancePeriod.Valid() {
		return fmt.Errorf("%w: unknown maintenance period %q", common.ErrValidation, d.MaintenancePeriod)
	}
	if d.ElectricalInspectionPeriod != 0 && !d.ElectricalInspectionPeriod.Valid() {
		return fmt.Errorf("%w: inspection period must be 1, 2, 3, 4, 5 or 10 years", common.ErrValidation)
	}
	if d.Downtime < 0 {
		return fmt.Errorf("%w: downtime must not be negative", common.ErrValidation)
	}
	return nil
}
