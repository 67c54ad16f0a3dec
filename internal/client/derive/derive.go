// Package derive computes the device fields that follow from other fields:
// accumulated downtime and electrical inspection expiry.
package derive

import (
	"math"
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
)

// AccumulatedDowntime returns the downtime after a transition from -> to at now.
// Downtime grows only when a device returns to operational from a down status,
// by the hours elapsed since lastChange. The result is rounded to two decimals.
func AccumulatedDowntime(prev float64, from, to models.DeviceStatus, lastChange, now time.Time) float64 {
	if to != models.StatusOperational || !from.Down() || lastChange.IsZero() {
		return prev
	}
	hours := now.Sub(lastChange).Hours()
	if hours < 0 {
		hours = 0
	}
	return round2(prev + hours)
}

// ApplyStatusChange returns d moved to status at now. A transition to the
// current status returns d unchanged.
func ApplyStatusChange(d models.Device, status models.DeviceStatus, now time.Time) models.Device {
	if d.Status == status {
		return d
	}
	d.Downtime = AccumulatedDowntime(d.Downtime, d.Status, status, d.LastStatusChange, now)
	d.Status = status
	d.LastStatusChange = now
	return d
}

// InspectionExpiry returns date plus period years, both as YYYY-MM-DD.
// February 29 of a leap year rolls over to March 1 in non-leap target years.
func InspectionExpiry(date string, period models.InspectionPeriod) (string, error) {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return "", err
	}
	return t.AddDate(int(period), 0, 0).Format(models.DateLayout), nil
}

// ApplyInspection sets the inspection date, period and the derived expiry.
func ApplyInspection(d models.Device, date string, period models.InspectionPeriod) (models.Device, error) {
	expiry, err := InspectionExpiry(date, period)
	if err != nil {
		return d, err
	}
	d.ElectricalInspectionDate = date
	d.ElectricalInspectionPeriod = period
	d.ElectricalInspectionExpiry = expiry
	return d, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
