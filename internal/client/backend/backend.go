// Package backend implements the data operations of MaintKeeper behind one
// interface. Memory applies every operation to the local mirror only; Remote
// talks to the remote store and falls back to Memory when it cannot.
package backend

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
	"github.com/dmitrijs2005/maintkeeper/internal/logging"
	"github.com/google/uuid"
)

// DataBackend is the operation set consumed by the UI layer. Every method
// leaves the mirror reflecting its outcome.
type DataBackend interface {
	LoadDevices(ctx context.Context) ([]models.Device, error)
	GetDevice(ctx context.Context, id string) (models.Device, error)
	CreateDevice(ctx context.Context, d models.Device) (models.Device, error)
	UpdateDeviceStatus(ctx context.Context, id string, status models.DeviceStatus) (models.Device, error)
	UpdateElectricalInspection(ctx context.Context, id, date string, period models.InspectionPeriod) (models.Device, error)
	DeleteDevice(ctx context.Context, id string) error
	UploadDeviceManual(ctx context.Context, id string, f File) (string, error)
	UploadDeviceImage(ctx context.Context, id string, f File) (string, error)

	LoadParts(ctx context.Context) ([]models.SparePart, error)
	CreatePart(ctx context.Context, p models.SparePart) (models.SparePart, error)
	UpdatePartQuantity(ctx context.Context, id string, quantity int, change models.ChangeType, notes string) (models.SparePart, error)
	PartLastChange(ctx context.Context, id string) (*models.PartChange, error)
	DeletePart(ctx context.Context, id string) error

	LoadMaintenanceLogs(ctx context.Context) ([]models.MaintenanceLog, error)
	CreateMaintenanceLog(ctx context.Context, l models.MaintenanceLog) (models.MaintenanceLog, error)
	DeleteMaintenanceLog(ctx context.Context, id string) error
}

// File is an upload payload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Options are shared by both implementations.
type Options struct {
	Logger logging.Logger
	// Now replaces time.Now.
	Now func() time.Time
	// Actor names the author of quantity changes.
	Actor func(ctx context.Context) string
	// NewID generates ids for locally created entities.
	NewID func() string
	// Seed fills an empty mirror with demo data.
	Seed bool
	// HistoryCacheTTL bounds how long a part's last change is served from cache.
	HistoryCacheTTL time.Duration
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Actor == nil {
		o.Actor = func(context.Context) string { return common.UnknownActor }
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.HistoryCacheTTL <= 0 {
		o.HistoryCacheTTL = 5 * time.Minute
	}
	return o
}

// recoverable reports whether a failed primary write may be applied locally.
// Rejections the caller has to resolve, such as an expired session or a
// conflict, are not.
func recoverable(err error) bool {
	if errors.Is(err, common.ErrAuthenticationRequired) ||
		errors.Is(err, common.ErrConflict) ||
		errors.Is(err, common.ErrValidation) {
		return false
	}
	return errors.Is(err, common.ErrRemoteRequestFailed) ||
		errors.Is(err, common.ErrUnavailable) ||
		errors.Is(err, common.ErrEmptyResponse)
}

// today returns the local calendar date of t.
func today(t time.Time) string {
	return t.Format(models.DateLayout)
}
