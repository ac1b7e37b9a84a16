package dto

import (
	"slices"
	"strconv"
	"strings"

	"github.com/MikhailWahib/kvwire/internal/table"
	"github.com/MikhailWahib/kvwire/internal/wire"
)

// emptyValue is the shared placeholder stored by PutEmpty.
var emptyValue = table.Static("")

// Object is the generic record. Its zero value is ready to use and creates
// its table with default options on first access. Typed records embed it.
type Object struct {
	store *table.Table
	opts  table.Options
}

var _ Record = (*Object)(nil)

// NewObject returns an Object whose table uses opts.
func NewObject(opts table.Options) *Object {
	return &Object{opts: opts}
}

// Store returns the backing table.
func (o *Object) Store() *table.Table {
	if o.store == nil {
		o.store = table.New(o.opts)
	}
	return o.store
}

// Version reports Untyped. Typed records shadow it.
func (o *Object) Version() Version {
	return Untyped
}

// Len returns the number of fields.
func (o *Object) Len() int {
	if o.store == nil {
		return 0
	}
	return o.store.Len()
}

func checkKey(key string) error {
	if key == wire.HeaderKey {
		return ErrReservedKey
	}
	return nil
}

// SetField stores key and value as owned copies.
func (o *Object) SetField(key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return o.Store().Put(table.OwnedString(key), table.OwnedString(value))
}

// SetStatic stores value under a static key, so repeated updates copy only
// the value.
func (o *Object) SetStatic(key table.StaticRef, value string) error {
	if err := checkKey(key.String()); err != nil {
		return err
	}
	return o.Store().Put(key, table.OwnedString(value))
}

// Put stores an arbitrary key/value pair with the tiers given.
func (o *Object) Put(key, value table.Field) error {
	if key != nil {
		if err := checkKey(key.String()); err != nil {
			return err
		}
	}
	return o.Store().Put(key, value)
}

// PutEmpty registers key with an empty static value. Renderers use such
// placeholders to emit fields that live outside the table.
func (o *Object) PutEmpty(key table.Field) error {
	return o.Put(key, emptyValue)
}

// Get returns the value stored under key. Owned values are returned as
// copies; use Store().Get to reach the stored bytes.
func (o *Object) Get(key table.Field) (table.Field, bool) {
	v, ok := o.lookup(key)
	if owned, isOwned := v.(table.Owned); isOwned {
		return append(table.Owned{}, owned...), true
	}
	return v, ok
}

func (o *Object) lookup(key table.Field) (table.Field, bool) {
	if o.store == nil {
		return nil, false
	}
	return o.store.Get(key)
}

// GetField returns the value of key, or def when absent.
func (o *Object) GetField(key, def string) string {
	v, ok := o.lookup(table.OwnedString(key))
	if !ok {
		return def
	}
	return v.String()
}

// HasField reports whether key is set.
func (o *Object) HasField(key string) bool {
	_, ok := o.lookup(table.OwnedString(key))
	return ok
}

// RemoveField deletes key and reports whether it was present.
func (o *Object) RemoveField(key string) bool {
	if o.store == nil {
		return false
	}
	return o.store.Remove(table.OwnedString(key))
}

// GetInt parses key as a base-10 integer, returning def when absent or malformed.
func (o *Object) GetInt(key string, def int) int {
	v, ok := o.lookup(table.OwnedString(key))
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.String()))
	if err != nil {
		return def
	}
	return n
}

func (o *Object) SetInt(key string, v int) error {
	return o.SetField(key, strconv.Itoa(v))
}

// GetBool reads key with ParseBool, returning def when absent.
func (o *Object) GetBool(key string, def bool) bool {
	v, ok := o.lookup(table.OwnedString(key))
	if !ok {
		return def
	}
	return ParseBool(v.String())
}

func (o *Object) SetBool(key string, v bool) error {
	if v {
		return o.SetField(key, "1")
	}
	return o.SetField(key, "0")
}

// ParseBool accepts 1, true, yes and on in any case. Everything else is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Keys returns the field names in sorted order.
func (o *Object) Keys() []string {
	if o.store == nil {
		return nil
	}
	keys := make([]string, 0, o.store.Len())
	for k := range o.store.All() {
		keys = append(keys, k.String())
	}
	slices.Sort(keys)
	return keys
}

// Fields returns a snapshot of the table as plain strings.
func (o *Object) Fields() map[string]string {
	out := make(map[string]string, o.Len())
	if o.store == nil {
		return out
	}
	for k, v := range o.store.All() {
		out[k.String()] = v.String()
	}
	return out
}

// Release drops every field and shrinks the table back to its initial capacity.
func (o *Object) Release() {
	if o.store != nil {
		o.store.Clear()
	}
}
