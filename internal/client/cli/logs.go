package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
)

// now is a test seam for the default log date.
var now = time.Now

func (a *App) Logs(context.Context, []string) error {
	logs := a.store.Logs.Snapshot()
	if len(logs) == 0 {
		fmt.Fprintln(a.out, "No maintenance logs")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tDEVICE\tTYPE\tMIN\tTECHNICIAN\tNOTES")
	for _, l := range logs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			l.ID, l.Date, l.DeviceName, l.Type, l.DurationMinutes, l.Technician, l.Notes)
	}
	return tw.Flush()
}

func (a *App) AddLog(ctx context.Context, _ []string) error {
	deviceID, err := getSimpleText(a.reader, "Device id", a.out)
	if err != nil {
		return err
	}
	d, ok := a.store.Devices.Get(deviceID)
	if !ok {
		return fmt.Errorf("device %s: %w", deviceID, common.ErrNotFound)
	}

	typ, err := getSimpleText(a.reader, "Type (scheduled|emergency) [scheduled]", a.out)
	if err != nil {
		return err
	}
	if typ == "" {
		typ = string(models.LogScheduled)
	}
	date, err := getSimpleText(a.reader, "Date YYYY-MM-DD [today]", a.out)
	if err != nil {
		return err
	}
	if date == "" {
		date = now().Format(models.DateLayout)
	}
	minutes, err := GetInt(a.reader, "Duration in minutes", 60, a.out)
	if err != nil {
		return err
	}
	notes, err := GetMultiline(a.reader, "Notes", a.out)
	if err != nil {
		return err
	}

	technician := common.UnknownActor
	if u := a.session.CurrentUser(); u != nil {
		technician = u.Email
	}

	l, err := a.backend.CreateMaintenanceLog(ctx, models.MaintenanceLog{
		DeviceID:        d.ID,
		DeviceName:      d.Name,
		Date:            date,
		Technician:      technician,
		Notes:           notes,
		Type:            models.LogType(typ),
		DurationMinutes: minutes,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged %s for %s\n", l.ID, d.Name)
	return nil
}

func (a *App) DeleteLog(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("dellog <id>")
	}
	if err := a.backend.DeleteMaintenanceLog(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted", args[0])
	return nil
}
