package stream

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/MikhailWahib/kvwire/internal/dto"
	"github.com/MikhailWahib/kvwire/internal/wire"
)

var (
	ErrTypeExists     = errors.New("stream: type already registered")
	ErrInvalidTypeID  = errors.New("stream: invalid type id")
	ErrNilConstructor = errors.New("stream: nil constructor")
)

// TypeMapper resolves a header's type id to a fresh, empty record.
type TypeMapper interface {
	New(typeID int16) (dto.Record, bool)
}

// MapperFunc adapts a plain function to TypeMapper. A nil result, including a
// nil pointer of a record type, means the type is unknown.
type MapperFunc func(typeID int16) dto.Record

func (f MapperFunc) New(typeID int16) (dto.Record, bool) {
	rec := f(typeID)
	if isNilRecord(rec) {
		return nil, false
	}
	return rec, true
}

// isNilRecord reports whether rec is nil or wraps a nil pointer.
func isNilRecord(rec dto.Record) bool {
	if rec == nil {
		return true
	}
	v := reflect.ValueOf(rec)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Constructor builds an empty record of one type.
type Constructor func() dto.Record

// Registry maps type ids to constructors. Populate it at startup; it is not
// safe for concurrent registration.
type Registry struct {
	ctors map[int16]Constructor
}

var _ TypeMapper = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{ctors: make(map[int16]Constructor)}
}

// Register adds ctor under typeID. The untyped id is refused, and ctor must
// build records that report typeID.
func (r *Registry) Register(typeID int16, ctor Constructor) error {
	if ctor == nil {
		return ErrNilConstructor
	}
	if typeID == wire.UntypedID {
		return fmt.Errorf("%w: %d is the untyped id", ErrInvalidTypeID, typeID)
	}
	if _, ok := r.ctors[typeID]; ok {
		return fmt.Errorf("%w: %d", ErrTypeExists, typeID)
	}
	rec := ctor()
	if isNilRecord(rec) {
		return fmt.Errorf("%w: constructor for %d returned nil", ErrNilConstructor, typeID)
	}
	if got := rec.Version().TypeID; got != typeID {
		return fmt.Errorf("%w: constructor for %d builds type %d", ErrInvalidTypeID, typeID, got)
	}
	r.ctors[typeID] = ctor
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(typeID int16, ctor Constructor) {
	if err := r.Register(typeID, ctor); err != nil {
		panic(err)
	}
}

// New builds a record for typeID.
func (r *Registry) New(typeID int16) (dto.Record, bool) {
	ctor, ok := r.ctors[typeID]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// Types returns the registered ids in ascending order.
func (r *Registry) Types() []int16 {
	return slices.Sorted(maps.Keys(r.ctors))
}
