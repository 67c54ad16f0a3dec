package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/maintkeeper/internal/client/backend"
	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
	"github.com/dmitrijs2005/maintkeeper/internal/filex"
)

func usage(format string) error {
	return fmt.Errorf("%w: usage: %s", common.ErrValidation, format)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (a *App) Devices(context.Context, []string) error {
	devices := a.store.Devices.Snapshot()
	if len(devices) == 0 {
		fmt.Fprintln(a.out, "No devices")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tLOCATION\tDOWNTIME(h)\tNEXT MAINT.\tINSPECTION EXPIRY")
	for _, d := range devices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
			d.ID, d.Name, d.Status, d.Location, d.Downtime, dash(d.NextMaintenance), dash(d.ElectricalInspectionExpiry))
	}
	return tw.Flush()
}

func (a *App) ShowDevice(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("device <id>")
	}
	d, err := a.backend.GetDevice(ctx, args[0])
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", d.ID)
	fmt.Fprintf(tw, "Name\t%s\n", d.Name)
	fmt.Fprintf(tw, "Type\t%s\n", d.Type)
	fmt.Fprintf(tw, "Manufacturer\t%s\n", dash(d.Manufacturer))
	fmt.Fprintf(tw, "Location\t%s\n", d.Location)
	fmt.Fprintf(tw, "Status\t%s (since %s)\n", d.Status, d.LastStatusChange.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(tw, "Downtime\t%.2f h\n", d.Downtime)
	fmt.Fprintf(tw, "Maintenance\tlast %s, next %s, %s\n", dash(d.LastMaintenance), dash(d.NextMaintenance), dash(string(d.MaintenancePeriod)))
	if d.ElectricalInspectionDate != "" {
		fmt.Fprintf(tw, "Electrical inspection\t%s, every %d years, expires %s\n",
			d.ElectricalInspectionDate, d.ElectricalInspectionPeriod, d.ElectricalInspectionExpiry)
	}
	fmt.Fprintf(tw, "Manual\t%s\n", dash(d.ManualURL))
	fmt.Fprintf(tw, "Image\t%s\n", dash(d.ImageURL))

	keys := make([]string, 0, len(d.Specifications))
	for k := range d.Specifications {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(tw, "  %s\t%v\n", k, d.Specifications[k])
	}
	return tw.Flush()
}

func (a *App) AddDevice(ctx context.Context, _ []string) error {
	var d models.Device
	prompts := []struct {
		label string
		dst   *string
	}{
		{"Name", &d.Name},
		{"Type", &d.Type},
		{"Manufacturer (optional)", &d.Manufacturer},
		{"Location", &d.Location},
		{"Last maintenance YYYY-MM-DD (optional)", &d.LastMaintenance},
		{"Next maintenance YYYY-MM-DD (optional)", &d.NextMaintenance},
		{"Electrical inspection date YYYY-MM-DD (optional)", &d.ElectricalInspectionDate},
	}
	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.label, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	status, err := getSimpleText(a.reader, "Status (operational|maintenance|offline) [operational]", a.out)
	if err != nil {
		return err
	}
	d.Status = models.DeviceStatus(status)

	period, err := getSimpleText(a.reader, "Maintenance period (monthly|quarterly|semi-annually|annually, optional)", a.out)
	if err != nil {
		return err
	}
	d.MaintenancePeriod = models.MaintenancePeriod(period)

	if d.ElectricalInspectionDate != "" {
		years, err := GetInt(a.reader, "Inspection validity in years (1,2,3,4,5,10)", 1, a.out)
		if err != nil {
			return err
		}
		d.ElectricalInspectionPeriod = models.InspectionPeriod(years)
	}

	if d.Specifications, err = GetSpecifications(a.reader, a.out); err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	created, err := a.backend.CreateDevice(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created device %s\n", created.ID)
	return nil
}

func (a *App) SetStatus(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("status <id> <operational|maintenance|offline>")
	}
	d, err := a.backend.UpdateDeviceStatus(ctx, args[0], models.DeviceStatus(args[1]))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s is %s, downtime %.2f h\n", d.Name, d.Status, d.Downtime)
	return nil
}

func (a *App) Inspect(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usage("inspect <id> <YYYY-MM-DD> <years>")
	}
	years, err := strconv.Atoi(args[2])
	if err != nil {
		return usage("inspect <id> <YYYY-MM-DD> <years>")
	}
	d, err := a.backend.UpdateElectricalInspection(ctx, args[0], args[1], models.InspectionPeriod(years))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s inspection valid until %s\n", d.Name, d.ElectricalInspectionExpiry)
	return nil
}

func (a *App) DeleteDevice(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("deldevice <id>")
	}
	if err := a.backend.DeleteDevice(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted", args[0])
	return nil
}

func (a *App) UploadManual(ctx context.Context, args []string) error {
	return a.upload(ctx, args, "manual", a.backend.UploadDeviceManual)
}

func (a *App) UploadImage(ctx context.Context, args []string) error {
	return a.upload(ctx, args, "image", a.backend.UploadDeviceImage)
}

func (a *App) upload(ctx context.Context, args []string, what string,
	fn func(context.Context, string, backend.File) (string, error)) error {
	if len(args) != 2 {
		return usage(what + " <device id> <file>")
	}
	f, err := filex.ReadUpload(args[1])
	if err != nil {
		return err
	}
	u, err := fn(ctx, args[0], backend.File{Name: f.Name, ContentType: f.ContentType, Data: f.Data})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %s: %s\n", what, u)
	return nil
}
