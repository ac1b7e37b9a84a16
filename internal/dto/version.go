package dto

import (
	"errors"
	"fmt"

	"github.com/MikhailWahib/kvwire/internal/wire"
)

var (
	// ErrTypeMismatch means the stream header names another record type.
	ErrTypeMismatch = errors.New("dto: type mismatch")
	// ErrVersionIncompatible means the record is older than the stream's minimum compatible version.
	ErrVersionIncompatible = errors.New("dto: incompatible version")
	// ErrReservedKey is returned when an application field uses the header key.
	ErrReservedKey = errors.New("dto: reserved key")
)

// Version identifies a record type and the shape of its wire form.
type Version struct {
	// TypeID is unique per record type; wire.UntypedID marks generic records.
	TypeID int16
	// SerialVersion is bumped whenever the type's wire shape changes.
	SerialVersion uint8
	// MinCompatVersion is the oldest SerialVersion that can still parse this type's output.
	MinCompatVersion uint8
}

// Untyped is the version of generic records.
var Untyped = Version{TypeID: wire.UntypedID}

// Typed reports whether v carries a real type id.
func (v Version) Typed() bool {
	return v.TypeID != wire.UntypedID
}

// Meta returns the header sent ahead of records of this version.
func (v Version) Meta() wire.Meta {
	return wire.Meta{TypeID: v.TypeID, MinCompatVersion: v.MinCompatVersion}
}

// CheckCompatible reports whether a record of version v may load a stream
// with header m: the type ids must match and v.SerialVersion must be at
// least m.MinCompatVersion.
func (v Version) CheckCompatible(m wire.Meta) error {
	if m.TypeID != v.TypeID {
		return fmt.Errorf("%w: cannot load type %d into type %d", ErrTypeMismatch, m.TypeID, v.TypeID)
	}
	if v.SerialVersion < m.MinCompatVersion {
		return fmt.Errorf("%w: type %d is v%d but stream requires >=v%d",
			ErrVersionIncompatible, v.TypeID, v.SerialVersion, m.MinCompatVersion)
	}
	return nil
}
