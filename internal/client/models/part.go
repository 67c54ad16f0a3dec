package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/common"
)

// DefaultMinQuantity is the reorder threshold assumed when none is stored.
const DefaultMinQuantity = 10

// ChangeType classifies a spare part quantity change.
type ChangeType string

const (
	ChangeIncrease ChangeType = "increase"
	ChangeDecrease ChangeType = "decrease"
	ChangeSet      ChangeType = "set"
)

func (c ChangeType) Valid() bool {
	switch c {
	case ChangeIncrease, ChangeDecrease, ChangeSet:
		return true
	}
	return false
}

// PartChange is the denormalized summary of the newest history entry of a part.
type PartChange struct {
	Date           time.Time  `json:"date"`
	ChangedBy      string     `json:"changedBy"`
	Notes          string     `json:"notes,omitempty"`
	ChangeType     ChangeType `json:"changeType"`
	QuantityBefore int        `json:"quantityBefore"`
	QuantityAfter  int        `json:"quantityAfter"`
}

// SparePart is a stocked replacement part.
type SparePart struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	SKU         string      `json:"sku"`
	Quantity    int         `json:"quantity"`
	MinQuantity int         `json:"minQuantity"`
	Location    string      `json:"location"`
	DeviceID    string      `json:"deviceId,omitempty"`
	DeviceName  string      `json:"deviceName,omitempty"`
	DeviceType  string      `json:"deviceType,omitempty"`
	LastChange  *PartChange `json:"lastChange,omitempty"`
}

func (p SparePart) Key() string { return p.ID }

func (p SparePart) Clone() SparePart {
	if p.LastChange != nil {
		lc := *p.LastChange
		p.LastChange = &lc
	}
	return p
}

// LowStock reports whether the part is below its reorder threshold.
func (p SparePart) LowStock() bool {
	return p.Quantity < p.MinQuantity
}

func (p SparePart) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: part name is required", common.ErrValidation)
	}
	if p.SKU == "" {
		return fmt.Errorf("%w: sku is required", common.ErrValidation)
	}
	if p.Quantity < 0 || p.MinQuantity < 0 {
		return fmt.Errorf("%w: quantities must not be negative", common.ErrValidation)
	}
	return nil
}

// SparePartHistory is an append-only audit entry for a quantity change.
type SparePartHistory struct {
	ID             string     `json:"id"`
	PartID         string     `json:"partId"`
	PartName       string     `json:"partName"`
	QuantityBefore int        `json:"quantityBefore"`
	QuantityAfter  int        `json:"quantityAfter"`
	ChangeType     ChangeType `json:"changeType"`
	Notes          string     `json:"notes,omitempty"`
	ChangedBy      string     `json:"changedBy"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Summary converts the entry into the denormalized form stored on the part.
func (h SparePartHistory) Summary() *PartChange {
	return &PartChange{
		Date:           h.CreatedAt,
		ChangedBy:      h.ChangedBy,
		Notes:          h.Notes,
		ChangeType:     h.ChangeType,
		QuantityBefore: h.QuantityBefore,
		QuantityAfter:  h.QuantityAfter,
	}
}
