package models

import (
	"fmt"

	"github.com/dmitrijs2005/maintkeeper/internal/common"
)

// MinLogDurationMinutes is the shortest maintenance that may be recorded.
const MinLogDurationMinutes = 15

type LogType string

const (
	LogScheduled LogType = "scheduled"
	LogEmergency LogType = "emergency"
)

func (t LogType) Valid() bool {
	return t == LogScheduled || t == LogEmergency
}

// MaintenanceLog records a maintenance intervention on a device.
type MaintenanceLog struct {
	ID              string  `json:"id"`
	DeviceID        string  `json:"deviceId"`
	DeviceName      string  `json:"deviceName"`
	Date            string  `json:"date"`
	Technician      string  `json:"technician"`
	Notes           string  `json:"notes"`
	Type            LogType `json:"type"`
	DurationMinutes int     `json:"durationMinutes"`
}

func (l MaintenanceLog) Key() string { return l.ID }

func (l MaintenanceLog) Clone() MaintenanceLog { return l }

func (l MaintenanceLog) Validate() error {
	if l.DeviceID == "" {
		return fmt.Errorf("%w: device is required", common.ErrValidation)
	}
	if !l.Type.Valid() {
		return fmt.Errorf("%w: unknown log type %q", common.ErrValidation, l.Type)
	}
	if l.DurationMinutes < MinLogDurationMinutes {
		return fmt.Errorf("%w: duration must be at least %d minutes", common.ErrValidation, MinLogDurationMinutes)
	}
	return nil
}
