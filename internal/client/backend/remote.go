package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/maintkeeper/internal/client/client"
	"github.com/dmitrijs2005/maintkeeper/internal/client/derive"
	"github.com/dmitrijs2005/maintkeeper/internal/client/mirror"
	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
	"github.com/dmitrijs2005/maintkeeper/internal/logging"
	"github.com/dmitrijs2005/maintkeeper/internal/metrics"
	gocache "github.com/patrickmn/go-cache"
)

const skuConstraint = "spare_parts_sku_key"

// Entity labels for logs and metrics.
const (
	entityDevices = "devices"
	entityParts   = "parts"
	entityLogs    = "logs"
)

// TokenSource yields the bearer credential for a request.
type TokenSource interface {
	GetValidToken(ctx context.Context) (string, error)
}

// Doer sends one request to the remote store.
type Doer interface {
	Do(ctx context.Context, req client.Request) error
}

// RemoteDeps are the collaborators of a Remote backend.
type RemoteDeps struct {
	REST       Doer
	Storage    client.ObjectStorage
	Tokens     TokenSource
	BestEffort *BestEffort
	Metrics    *metrics.Metrics
}

// Remote performs every operation against the remote store and mirrors the
// result. Operations that may degrade are applied to the mirror through an
// in-process Memory backend when the store cannot be reached.
type Remote struct {
	local   *Memory
	store   *mirror.Store
	rest    Doer
	storage client.ObjectStorage
	tokens  TokenSource
	be      *BestEffort
	metrics *metrics.Metrics
	changes *gocache.Cache
	opts    Options
	log     logging.Logger
}

var _ DataBackend = (*Remote)(nil)

// NewRemote returns a backend that talks to the store through deps.REST and
// falls back to store when a request fails. A nil deps.BestEffort gets a
// single-worker dispatcher.
func NewRemote(store *mirror.Store, deps RemoteDeps, opts Options) *Remote {
	opts = opts.withDefaults()
	be := deps.BestEffort
	if be == nil {
		be = NewBestEffort(1, opts.Logger, deps.Metrics)
	}
	return &Remote{
		local:   NewMemory(store, opts),
		store:   store,
		rest:    deps.REST,
		storage: deps.Storage,
		tokens:  deps.Tokens,
		be:      be,
		metrics: deps.Metrics,
		changes: gocache.New(opts.HistoryCacheTTL, 2*opts.HistoryCacheTTL),
		opts:    opts,
		log:     opts.Logger.With("backend", "remote"),
	}
}

// readToken returns "" when reads should be served locally.
func (r *Remote) readToken(ctx context.Context, entity string) string {
	tok, err := r.tokens.GetValidToken(ctx)
	if err != nil || tok == "" {
		r.log.Info(ctx, "no valid session, serving local state", "entity", entity, "error", err)
		return ""
	}
	return tok
}

// writeToken fails with common.ErrAuthenticationRequired when there is no
// usable credential.
func (r *Remote) writeToken(ctx context.Context) (string, error) {
	tok, err := r.tokens.GetValidToken(ctx)
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", common.ErrAuthenticationRequired
	}
	return tok, nil
}

func (r *Remote) do(ctx context.Context, entity, op string, req client.Request) error {
	err := r.rest.Do(ctx, req)
	switch {
	case err == nil:
		r.metrics.Request(entity, op, metrics.OutcomeOK)
	case errors.Is(err, common.ErrConflict):
		r.metrics.Request(entity, op, metrics.OutcomeConflict)
	default:
		r.metrics.Request(entity, op, metrics.OutcomeFailed)
	}
	return err
}

func (r *Remote) fallback(ctx context.Context, entity, op string, err error) {
	r.log.Warn(ctx, "remote operation failed, applying locally", "entity", entity, "op", op, "error", err)
	r.metrics.Fallback(entity, op)
}

func byID(id string) url.Values {
	return url.Values{"id": {client.EqFilter(id)}}
}

// ---- devices ----

// LoadDevices replaces the mirrored devices with the remote list, newest
// first. Without a credential, or when the request fails, the mirror is
// returned as is.
func (r *Remote) LoadDevices(ctx context.Context) ([]models.Device, error) {
	tok := r.readToken(ctx, entityDevices)
	if tok == "" {
		return r.local.LoadDevices(ctx)
	}

	var rows []deviceRow
	err := r.do(ctx, entityDevices, "load", client.Request{
		Path:   client.TablePath(common.TableDevices),
		Query:  url.Values{"order": {"created_at.desc"}},
		Token:  tok,
		Result: &rows,
	})
	if err != nil {
		r.fallback(ctx, entityDevices, "load", err)
		return r.local.LoadDevices(ctx)
	}

	devices := make([]models.Device, len(rows))
	for i, row := range rows {
		devices[i] = row.toModel()
	}
	r.store.Devices.ReplaceAll(devices)
	return devices, nil
}

// GetDevice reads one device and refreshes its mirror entry.
func (r *Remote) GetDevice(ctx context.Context, id string) (models.Device, error) {
	tok := r.readToken(ctx, entityDevices)
	if tok == "" {
		return r.local.GetDevice(ctx, id)
	}

	q := byID(id)
	q.Set("limit", "1")
	var rows []deviceRow
	err := r.do(ctx, entityDevices, "get", client.Request{
		Path:   client.TablePath(common.TableDevices),
		Query:  q,
		Token:  tok,
		Result: &rows,
	})
	if err != nil {
		r.fallback(ctx, entityDevices, "get", err)
		return r.local.GetDevice(ctx, id)
	}
	if len(rows) == 0 {
		return models.Device{}, fmt.Errorf("device %s: %w", id, common.ErrNotFound)
	}
	d := rows[0].toModel()
	r.store.Devices.Upsert(d)
	return d, nil
}

// CreateDevice inserts d. There is no local fallback; a failed insert is
// returned to the caller.
func (r *Remote) CreateDevice(ctx context.Context, d models.Device) (models.Device, error) {
	d, err := r.local.prepareDevice(d)
	if err != nil {
		return models.Device{}, err
	}
	tok, err := r.writeToken(ctx)
	if err != nil {
		return models.Device{}, err
	}

	var rows []deviceRow
	err = r.do(ctx, entityDevices, "create", client.Request{
		Method:               http.MethodPost,
		Path:                 client.TablePath(common.TableDevices),
		Token:                tok,
		Body:                 deviceToRow(d),
		ReturnRepresentation: true,
		Result:               &rows,
	})
	if err != nil {
		return models.Device{}, fmt.Errorf("create device: %w", err)
	}
	if len(rows) == 0 {
		return models.Device{}, fmt.Errorf("create device: %w", common.ErrEmptyResponse)
	}
	created := rows[0].toModel()
	r.store.Devices.Prepend(created)
	return created, nil
}

// priorDevice returns the mirrored device, fetching it when it is not mirrored.
func (r *Remote) priorDevice(ctx context.Context, id string) (models.Device, error) {
	if d, ok := r.store.Devices.Get(id); ok {
		return d, nil
	}
	return r.GetDevice(ctx, id)
}

// UpdateDeviceStatus moves a device to status and sends the accumulated
// downtime along with it. Setting the current status is a no-op.
func (r *Remote) UpdateDeviceStatus(ctx context.Context, id string, status models.DeviceStatus) (models.Device, error) {
	if !status.Valid() {
		return models.Device{}, fmt.Errorf("%w: unknown device status %q", common.ErrValidation, status)
	}
	tok, err := r.writeToken(ctx)
	if err != nil {
		return models.Device{}, err
	}
	prior, err := r.priorDevice(ctx, id)
	if err != nil {
		return models.Device{}, err
	}
	if prior.Status == status {
		return prior, nil
	}

	if prior.Status.Down() && prior.LastStatusChange.IsZero() {
		r.log.Warn(ctx, "device has no readable last status change, downtime not accumulated", "device_id", id)
	}

	now := r.opts.Now().UTC()
	next := derive.ApplyStatusChange(prior, status, now)

	var rows []deviceRow
	err = r.do(ctx, entityDevices, "update_status", client.Request{
		Method: http.MethodPatch,
		Path:   client.TablePath(common.TableDevices),
		Query:  byID(id),
		Token:  tok,
		Body: map[string]any{
			"status":             next.Status,
			"downtime":           next.Downtime,
			"last_status_change": formatInstant(next.LastStatusChange),
		},
		ReturnRepresentation: true,
		Result:               &rows,
	})
	switch {
	case err == nil:
	case recoverable(err):
		r.fallback(ctx, entityDevices, "update_status", err)
		return r.local.applyStatus(id, status, now)
	default:
		return models.Device{}, err
	}

	if len(rows) > 0 {
		next = rows[0].toModel()
	}
	r.store.Devices.Upsert(next)
	return next, nil
}

// UpdateElectricalInspection records an inspection performed on date and
// stores the derived expiry.
func (r *Remote) UpdateElectricalInspection(ctx context.Context, id, date string, period models.InspectionPeriod) (models.Device, error) {
	if !period.Valid() {
		return models.Device{}, fmt.Errorf("%w: inspection period must be 1, 2, 3, 4, 5 or 10 years", common.ErrValidation)
	}
	expiry, err := derive.InspectionExpiry(date, period)
	if err != nil {
		return models.Device{}, fmt.Errorf("%w: inspection date: %w", common.ErrValidation, err)
	}
	tok, err := r.writeToken(ctx)
	if err != nil {
		return models.Device{}, err
	}

	var rows []deviceRow
	err = r.do(ctx, entityDevices, "update_inspection", client.Request{
		Method: http.MethodPatch,
		Path:   client.TablePath(common.TableDevices),
		Query:  byID(id),
		Token:  tok,
		Body: map[string]any{
			"electrical_inspection_date":   date,
			"electrical_inspection_period": int(period),
			"electrical_inspection_expiry": expiry,
		},
		ReturnRepresentation: true,
		Result:               &rows,
	})
	switch {
	case err == nil && len(rows) > 0:
		d := rows[0].toModel()
		r.store.Devices.Upsert(d)
		return d, nil
	case err == nil:
		return r.local.applyInspection(id, date, period)
	case recoverable(err):
		r.fallback(ctx, entityDevices, "update_inspection", err)
		return r.local.applyInspection(id, date, period)
	default:
		return models.Device{}, err
	}
}

// DeleteDevice removes the device remotely, then from the mirror.
func (r *Remote) DeleteDevice(ctx context.Context, id string) error {
	tok, err := r.writeToken(ctx)
	if err != nil {
		return err
	}
	err = r.do(ctx, entityDevices, "delete", client.Request{
		Method: http.MethodDelete,
		Path:   client.TablePath(common.TableDevices),
		Query:  byID(id),
		Token:  tok,
	})
	if err != nil {
		return fmt.Errorf("delete device %s: %w", id, err)
	}
	r.store.Devices.Remove(id)
	return nil
}

// UploadDeviceManual stores f as the device manual and returns its public URL.
func (r *Remote) UploadDeviceManual(ctx context.Context, id string, f File) (string, error) {
	path := fmt.Sprintf("manuals/%s_%d.pdf", id, r.opts.Now().UnixMilli())
	return r.upload(ctx, id, path, "manual_url", f, func(d *models.Device, u string) { d.ManualURL = u })
}

// UploadDeviceImage is UploadDeviceManual for the device photo.
func (r *Remote) UploadDeviceImage(ctx context.Context, id string, f File) (string, error) {
	path := fmt.Sprintf("images/%s_%d.%s", id, r.opts.Now().UnixMilli(), imageExtension(f))
	return r.upload(ctx, id, path, "image_url", f, func(d *models.Device, u string) { d.ImageURL = u })
}

// upload stores the object, records its URL in the mirror and patches the
// device row in the background. The stored object stays if the patch fails.
func (r *Remote) upload(ctx context.Context, id, path, column string, f File, set func(*models.Device, string)) (string, error) {
	tok, err := r.writeToken(ctx)
	if err != nil {
		return "", err
	}
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	publicURL, err := r.storage.Upload(ctx, tok, path, ct, f.Data)
	r.recordStorage(err)
	if err != nil {
		return "", err
	}

	r.store.Devices.Update(id, func(d models.Device) models.Device {
		set(&d, publicURL)
		return d
	})

	r.be.Go(ctx, "device_"+column, func(ctx context.Context) error {
		var rows []deviceRow
		err := r.do(ctx, entityDevices, "patch_"+column, client.Request{
			Method:               http.MethodPatch,
			Path:                 client.TablePath(common.TableDevices),
			Query:                byID(id),
			Token:                tok,
			Body:                 map[string]string{column: publicURL},
			ReturnRepresentation: true,
			Result:               &rows,
		})
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			r.store.Devices.Upsert(rows[0].toModel())
		}
		return nil
	})
	return publicURL, nil
}

func (r *Remote) recordStorage(err error) {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeFailed
	}
	r.metrics.Request("storage", "upload", outcome)
}

// ---- spare parts ----

// LoadParts replaces the mirrored parts with the remote inventory.
func (r *Remote) LoadParts(ctx context.Context) ([]models.SparePart, error) {
	tok := r.readToken(ctx, entityParts)
	if tok == "" {
		return r.local.LoadParts(ctx)
	}

	var rows []partRow
	err := r.do(ctx, entityParts, "load", client.Request{
		Path: client.TablePath(common.TableSpareParts),
		Query: url.Values{
			"select": {"*,devices:device_id(name,type)"},
			"order":  {"created_at.desc"},
		},
		Token:  tok,
		Result: &rows,
	})
	if err != nil {
		r.fallback(ctx, entityParts, "load", err)
		return r.local.LoadParts(ctx)
	}

	parts := make([]models.SparePart, len(rows))
	for i, row := range rows {
		parts[i] = row.toModel()
		if c, ok := r.cachedChange(parts[i].ID); ok {
			parts[i].LastChange = c
		}
	}
	r.store.Parts.ReplaceAll(parts)
	return parts, nil
}

// CreatePart inserts p. A duplicate SKU is reported as common.ErrSKUExists.
func (r *Remote) CreatePart(ctx context.Context, p models.SparePart) (models.SparePart, error) {
	if err := p.Validate(); err != nil {
		return models.SparePart{}, err
	}
	tok, err := r.writeToken(ctx)
	if err != nil {
		return models.SparePart{}, err
	}

	var rows []partRow
	err = r.do(ctx, entityParts, "create", client.Request{
		Method:               http.MethodPost,
		Path:                 client.TablePath(common.TableSpareParts),
		Token:                tok,
		Body:                 partToRow(p),
		ReturnRepresentation: true,
		Result:               &rows,
	})
	if err != nil {
		if apiErr, ok := client.AsAPIError(err); ok && errors.Is(err, common.ErrConflict) && violatesSKU(apiErr) {
			return models.SparePart{}, fmt.Errorf("%w: %s: %w", common.ErrSKUExists, p.SKU, err)
		}
		return models.SparePart{}, fmt.Errorf("create part: %w", err)
	}
	if len(rows) == 0 {
		return models.SparePart{}, fmt.Errorf("create part: %w", common.ErrEmptyResponse)
	}
	created := rows[0].toModel()
	if created.DeviceName == "" {
		created.DeviceName = p.DeviceName
	}
	if created.DeviceType == "" {
		created.DeviceType = p.DeviceType
	}
	r.store.Parts.Prepend(created)
	return created, nil
}

// violatesSKU reports whether a conflict was raised by the SKU constraint.
// A conflict that names no constraint at all is attributed to the SKU, the
// only unique column a client can collide on.
func violatesSKU(e *client.APIError) bool {
	if e.Mentions(skuConstraint) || e.Mentions("(sku)") {
		return true
	}
	return !e.Mentions("constraint") && !e.Mentions("Key (")
}

// UpdatePartQuantity sets the stock of a part. The history entry is
// appended in the background and its failure does not undo the update.
func (r *Remote) UpdatePartQuantity(ctx context.Context, id string, quantity int, change models.ChangeType, notes string) (models.SparePart, error) {
	if err := validateQuantityChange(quantity, change); err != nil {
		return models.SparePart{}, err
	}
	tok, err := r.writeToken(ctx)
	if err != nil {
		return models.SparePart{}, err
	}
	prior, ok := r.store.Parts.Get(id)
	if !ok {
		return models.SparePart{}, fmt.Errorf("part %s: %w", id, common.ErrNotFound)
	}

	now := r.opts.Now().UTC()
	actor := r.opts.Actor(ctx)

	var rows []partRow
	err = r.do(ctx, entityParts, "update_quantity", client.Request{
		Method:               http.MethodPatch,
		Path:                 client.TablePath(common.TableSpareParts),
		Query:                byID(id),
		Token:                tok,
		Body:                 map[string]int{"quantity": quantity},
		ReturnRepresentation: true,
		Result:               &rows,
	})
	switch {
	case err == nil:
	case recoverable(err):
		r.fallback(ctx, entityParts, "update_quantity", err)
		p, lerr := r.local.applyQuantity(id, quantity, change, notes, actor, now)
		if lerr == nil {
			r.changes.SetDefault(id, p.LastChange)
		}
		return p, lerr
	default:
		return models.SparePart{}, err
	}

	updated := prior
	updated.Quantity = quantity
	if len(rows) > 0 {
		updated = rows[0].toModel()
		if updated.DeviceName == "" {
			updated.DeviceName = prior.DeviceName
		}
		if updated.DeviceType == "" {
			updated.DeviceType = prior.DeviceType
		}
	}

	entry := models.SparePartHistory{
		PartID:         id,
		PartName:       prior.Name,
		QuantityBefore: prior.Quantity,
		QuantityAfter:  quantity,
		ChangeType:     change,
		Notes:          notes,
		ChangedBy:      actor,
		CreatedAt:      now,
	}
	updated.LastChange = entry.Summary()
	r.changes.SetDefault(id, updated.LastChange)
	r.store.Parts.Upsert(updated)

	r.be.Go(ctx, "part_history", func(ctx context.Context) error {
		return r.do(ctx, entityParts, "append_history", client.Request{
			Method: http.MethodPost,
			Path:   client.TablePath(common.TableSparePartsHist),
			Token:  tok,
			Body:   historyToRow(entry),
		})
	})
	return updated, nil
}

func (r *Remote) cachedChange(id string) (*models.PartChange, bool) {
	v, ok := r.changes.Get(id)
	if !ok {
		return nil, false
	}
	c, ok := v.(*models.PartChange)
	return c, ok
}

// PartLastChange returns the latest history entry of a part, or nil when it
// has none. Results are cached for Options.HistoryCacheTTL.
func (r *Remote) PartLastChange(ctx context.Context, id string) (*models.PartChange, error) {
	if c, ok := r.cachedChange(id); ok {
		return c, nil
	}
	tok := r.readToken(ctx, entityParts)
	if tok == "" {
		return r.local.PartLastChange(ctx, id)
	}

	var rows []historyRow
	err := r.do(ctx, entityParts, "last_change", client.Request{
		Path: client.TablePath(common.TableSparePartsHist),
		Query: url.Values{
			"part_id": {client.EqFilter(id)},
			"order":   {"created_at.desc"},
			"limit":   {"1"},
		},
		Token:  tok,
		Result: &rows,
	})
	if err != nil {
		r.fallback(ctx, entityParts, "last_change", err)
		return r.local.PartLastChange(ctx, id)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	c := rows[0].toModel().Summary()
	r.changes.SetDefault(id, c)
	r.store.Parts.Update(id, func(p models.SparePart) models.SparePart {
		p.LastChange = c
		return p
	})
	return c, nil
}

// DeletePart removes the part remotely, then from the mirror.
func (r *Remote) DeletePart(ctx context.Context, id string) error {
	tok, err := r.writeToken(ctx)
	if err != nil {
		return err
	}
	err = r.do(ctx, entityParts, "delete", client.Request{
		Method: http.MethodDelete,
		Path:   client.TablePath(common.TableSpareParts),
		Query:  byID(id),
		Token:  tok,
	})
	if err != nil {
		return fmt.Errorf("delete part %s: %w", id, err)
	}
	r.changes.Delete(id)
	r.store.Parts.Remove(id)
	return nil
}

// ---- maintenance logs ----

// LoadMaintenanceLogs replaces the mirrored logs with the remote journal.
func (r *Remote) LoadMaintenanceLogs(ctx context.Context) ([]models.MaintenanceLog, error) {
	tok := r.readToken(ctx, entityLogs)
	if tok == "" {
		return r.local.LoadMaintenanceLogs(ctx)
	}

	var rows []logRow
	err := r.do(ctx, entityLogs, "load", client.Request{
		Path:   client.TablePath(common.TableMaintenanceLogs),
		Query:  url.Values{"order": {"created_at.desc"}},
		Token:  tok,
		Result: &rows,
	})
	if err != nil {
		r.fallback(ctx, entityLogs, "load", err)
		return r.local.LoadMaintenanceLogs(ctx)
	}

	logs := make([]models.MaintenanceLog, len(rows))
	for i, row := range rows {
		logs[i] = row.toModel()
	}
	r.store.Logs.ReplaceAll(logs)
	return logs, nil
}

// CreateMaintenanceLog records l and stamps the device's last maintenance
// date with today.
func (r *Remote) CreateMaintenanceLog(ctx context.Context, l models.MaintenanceLog) (models.MaintenanceLog, error) {
	if err := l.Validate(); err != nil {
		return models.MaintenanceLog{}, err
	}
	tok, err := r.writeToken(ctx)
	if err != nil {
		return models.MaintenanceLog{}, err
	}
	now := r.opts.Now()

	var rows []logRow
	err = r.do(ctx, entityLogs, "create", client.Request{
		Method:               http.MethodPost,
		Path:                 client.TablePath(common.TableMaintenanceLogs),
		Token:                tok,
		Body:                 logToRow(l),
		ReturnRepresentation: true,
		Result:               &rows,
	})
	switch {
	case err == nil || errors.Is(err, common.ErrEmptyResponse):
	case recoverable(err):
		r.fallback(ctx, entityLogs, "create", err)
		return r.local.recordLog(l, now), nil
	default:
		return models.MaintenanceLog{}, err
	}

	created := l
	if len(rows) > 0 {
		created = rows[0].toModel()
		r.store.Logs.Prepend(created)
	} else {
		// The row exists remotely but its id is unknown; reload instead of
		// mirroring it under a local id.
		r.log.Warn(ctx, "log created without representation, reloading", "device_id", l.DeviceID)
		if logs, _ := r.LoadMaintenanceLogs(ctx); len(logs) > 0 && logs[0].DeviceID == l.DeviceID {
			created = logs[0]
		}
	}

	date := today(now)
	r.local.touchLastMaintenance(l.DeviceID, date)
	r.be.Go(ctx, "device_last_maintenance", func(ctx context.Context) error {
		return r.do(ctx, entityDevices, "touch_last_maintenance", client.Request{
			Method: http.MethodPatch,
			Path:   client.TablePath(common.TableDevices),
			Query:  byID(l.DeviceID),
			Token:  tok,
			Body:   map[string]string{"last_maintenance": date},
		})
	})
	return created, nil
}

// DeleteMaintenanceLog removes one log entry.
func (r *Remote) DeleteMaintenanceLog(ctx context.Context, id string) error {
	tok, err := r.writeToken(ctx)
	if err != nil {
		return err
	}
	err = r.do(ctx, entityLogs, "delete", client.Request{
		Method: http.MethodDelete,
		Path:   client.TablePath(common.TableMaintenanceLogs),
		Query:  byID(id),
		Token:  tok,
	})
	if err != nil {
		return fmt.Errorf("delete log %s: %w", id, err)
	}
	r.store.Logs.Remove(id)
	return nil
}

// Close waits for pending secondary writes.
func (r *Remote) Close() {
	r.be.Close()
}
