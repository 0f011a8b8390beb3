package models

import (
	"errors"
	"fmt"
	"time"
)

// ProviderType identifies which kind of provider owns a bookable slot.
type ProviderType string

const (
	ProviderTypeArtist ProviderType = "artist"
	ProviderTypeStudio ProviderType = "studio"
)

// Valid reports whether the provider type is one of the known kinds.
func (pt ProviderType) Valid() bool {
	return pt == ProviderTypeArtist || pt == ProviderTypeStudio
}

// SlotKey canonically identifies one bookable unit: a provider plus a
// half-open [start, end) interval. It is a lookup/lock key only and is
// never persisted as its own record.
type SlotKey struct {
	ProviderID   string       `json:"providerId"`
	ProviderType ProviderType `json:"providerType"`
	Start        time.Time    `json:"start"`
	End          time.Time    `json:"end"`
}

// Validate rejects keys with unknown provider types or degenerate intervals.
func (k SlotKey) Validate() error {
	if k.ProviderID == "" {
		return errors.New("slot key missing provider id")
	}
	if !k.ProviderType.Valid() {
		return fmt.Errorf("unknown provider type %q", k.ProviderType)
	}
	if k.Start.IsZero() || k.End.IsZero() {
		return errors.New("slot key missing start or end")
	}
	if !k.End.After(k.Start) {
		return errors.New("slot key end must be after start")
	}
	return nil
}

// Canonical returns the stable string form of the key, used for the
// per-slot lock.
func (k SlotKey) Canonical() string {
	return fmt.Sprintf("%s:%s:%d:%d", k.ProviderType, k.ProviderID, k.Start.Unix(), k.End.Unix())
}

// Room returns the calendar room this slot's events are broadcast to.
func (k SlotKey) Room() string {
	return fmt.Sprintf("%s:%s", k.ProviderType, k.ProviderID)
}
