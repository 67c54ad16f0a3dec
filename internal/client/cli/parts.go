package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
)

func (a *App) Parts(context.Context, []string) error {
	parts := a.store.Parts.Snapshot()
	if len(parts) == 0 {
		fmt.Fprintln(a.out, "No spare parts")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSKU\tQTY\tMIN\tLOCATION\tDEVICE\t")
	for _, p := range parts {
		low := ""
		if p.LowStock() {
			low = "LOW"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			p.ID, p.Name, p.SKU, p.Quantity, p.MinQuantity, p.Location, dash(p.DeviceName), low)
	}
	return tw.Flush()
}

func (a *App) AddPart(ctx context.Context, _ []string) error {
	var p models.SparePart
	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"Name", &p.Name},
		{"SKU", &p.SKU},
		{"Location", &p.Location},
		{"Device id (optional)", &p.DeviceID},
	} {
		v, err := getSimpleText(a.reader, f.label, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	var err error
	if p.Quantity, err = GetInt(a.reader, "Quantity", 0, a.out); err != nil {
		return err
	}
	if p.MinQuantity, err = GetInt(a.reader, "Minimum quantity", models.DefaultMinQuantity, a.out); err != nil {
		return err
	}
	if p.DeviceID != "" {
		d, ok := a.store.Devices.Get(p.DeviceID)
		if !ok {
			return fmt.Errorf("device %s: %w", p.DeviceID, common.ErrNotFound)
		}
		p.DeviceName, p.DeviceType = d.Name, d.Type
	}

	created, err := a.backend.CreatePart(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created part %s\n", created.ID)
	return nil
}

// parseQuantityChange turns "+n", "-n" or "n" into the new quantity.
func parseQuantityChange(current int, arg string) (int, models.ChangeType, error) {
	digits, sign := arg, byte(0)
	if arg != "" && (arg[0] == '+' || arg[0] == '-') {
		digits, sign = arg[1:], arg[0]
	}
	n, err := strconv.ParseUint(digits, 10, 31)
	if err != nil {
		return 0, "", fmt.Errorf("%w: invalid quantity %q", common.ErrValidation, arg)
	}
	switch sign {
	case '+':
		return current + int(n), models.ChangeIncrease, nil
	case '-':
		if int(n) > current {
			return 0, "", fmt.Errorf("%w: only %d in stock", common.ErrValidation, current)
		}
		return current - int(n), models.ChangeDecrease, nil
	default:
		return int(n), models.ChangeSet, nil
	}
}

func (a *App) Quantity(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("qty <id> <+n|-n|n> [notes]")
	}
	current, ok := a.store.Parts.Get(args[0])
	if !ok {
		return fmt.Errorf("part %s: %w", args[0], common.ErrNotFound)
	}
	qty, change, err := parseQuantityChange(current.Quantity, args[1])
	if err != nil {
		return err
	}

	p, err := a.backend.UpdatePartQuantity(ctx, args[0], qty, change, strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %d -> %d\n", p.Name, current.Quantity, p.Quantity)
	if p.LowStock() {
		fmt.Fprintf(a.out, "Stock is below the minimum of %d\n", p.MinQuantity)
	}
	return nil
}

func (a *App) LastChange(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("lastchange <id>")
	}
	c, err := a.backend.PartLastChange(ctx, args[0])
	if err != nil {
		return err
	}
	if c == nil {
		fmt.Fprintln(a.out, "No stock changes recorded")
		return nil
	}
	fmt.Fprintf(a.out, "%s %s %d -> %d by %s",
		c.Date.Local().Format("2006-01-02 15:04"), c.ChangeType, c.QuantityBefore, c.QuantityAfter, c.ChangedBy)
	if c.Notes != "" {
		fmt.Fprintf(a.out, " (%s)", c.Notes)
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *App) DeletePart(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delpart <id>")
	}
	if err := a.backend.DeletePart(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted", args[0])
	return nil
}
