package backend

import (
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
	"github.com/dmitrijs2005/maintkeeper/internal/client/mirror"
)

func mustParse(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// DemoDevices returns the devices shown in offline mode.
func DemoDevices() []models.Device {
	return []models.Device{
		{ID: "cnc-001", Name: "CNC Mill", Type: "Machining", Location: "Shop Floor A", Status: models.StatusOperational,
			LastMaintenance: "2024-06-15", NextMaintenance: "2024-09-15", ManualURL: "#", Downtime: 10.5,
			LastStatusChange: mustParse("2024-07-20T10:00:00Z")},
		{ID: "lathe-002", Name: "Industrial Lathe", Type: "Machining", Location: "Shop Floor A", Status: models.StatusMaintenance,
			LastMaintenance: "2024-07-20", NextMaintenance: "2024-07-28", ManualURL: "#", Downtime: 25.2,
			LastStatusChange: mustParse("2024-07-22T08:30:00Z")},
		{ID: "press-003", Name: "Hydraulic Press", Type: "Fabrication", Location: "Shop Floor B", Status: models.StatusOperational,
			LastMaintenance: "2024-05-10", NextMaintenance: "2024-11-10", ManualURL: "#", Downtime: 5.0,
			LastStatusChange: mustParse("2024-06-01T14:00:00Z")},
		{ID: "robot-004", Name: "Welding Robot Arm", Type: "Automation", Location: "Assembly Line 1", Status: models.StatusOffline,
			LastMaintenance: "2024-01-05", NextMaintenance: "2025-01-05", ManualURL: "#", Downtime: 120.7,
			LastStatusChange: mustParse("2024-07-15T16:45:00Z")},
	}
}

func DemoParts() []models.SparePart {
	return []models.SparePart{
		{ID: "sp-001", Name: "Spindle Bearing", SKU: "BRG-5021", Quantity: 15, MinQuantity: 10, Location: "Bin A-12"},
		{ID: "sp-002", Name: "Motor Coolant Pump", SKU: "PMP-C-34", Quantity: 4, MinQuantity: 5, Location: "Bin B-05"},
		{ID: "sp-003", Name: "Hydraulic Fluid Filter", SKU: "FIL-H-99", Quantity: 45, MinQuantity: 20, Location: "Bin A-15"},
		{ID: "sp-004", Name: "Servo Motor", SKU: "MOT-S-850", Quantity: 8, MinQuantity: 10, Location: "Bin C-01"},
	}
}

func DemoLogs() []models.MaintenanceLog {
	return []models.MaintenanceLog{
		{ID: "log-001", DeviceID: "cnc-001", DeviceName: "CNC Mill", Date: "2024-06-15", Technician: "admin@example.com",
			Notes: "Replaced spindle bearing, checked coolant levels.", Type: models.LogScheduled, DurationMinutes: 120},
		{ID: "log-002", DeviceID: "press-003", DeviceName: "Hydraulic Press", Date: "2024-05-10", Technician: "technician@example.com",
			Notes: "Annual fluid change and filter replacement.", Type: models.LogScheduled, DurationMinutes: 90},
		{ID: "log-003", DeviceID: "lathe-002", DeviceName: "Industrial Lathe", Date: "2024-07-20", Technician: "admin@example.com",
			Notes: "Emergency repair on the drive belt.", Type: models.LogEmergency, DurationMinutes: 45},
	}
}

// Seed loads the demo data into every empty collection of store.
func Seed(store *mirror.Store) {
	if store.Devices.Len() == 0 {
		store.Devices.ReplaceAll(DemoDevices())
	}
	if store.Parts.Len() == 0 {
		store.Parts.ReplaceAll(DemoParts())
	}
	if store.Logs.Len() == 0 {
		store.Logs.ReplaceAll(DemoLogs())
	}
}
