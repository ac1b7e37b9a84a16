// Package kvwire moves small key/value records over byte channels as text.
//
// A record is a hash table of fields plus an optional type identity. Sending
// a record writes one "key=value" line per field, preceded by a
// "__tvid=<typeId>|<minCompatVersion>" header when the record is typed.
// Loading reverses this, refusing streams written for another type or for a
// newer version than the receiving code understands. Unknown fields are kept,
// so older and newer record versions can exchange data.
//
// Example usage:
//
//	codec := kvwire.New(nil, nil)
//
//	obj := codec.NewObject()
//	_ = obj.SetField("name", "Dune")
//	_ = obj.SetInt("pages", 412)
//
//	data, err := codec.Marshal(ctx, obj)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	loaded := codec.NewObject()
//	if err := codec.Unmarshal(data, loaded); err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(loaded.GetField("name", "?"))
package kvwire

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/MikhailWahib/kvwire/internal/channel"
	"github.com/MikhailWahib/kvwire/internal/config"
	"github.com/MikhailWahib/kvwire/internal/dto"
	"github.com/MikhailWahib/kvwire/internal/iochan"
	"github.com/MikhailWahib/kvwire/internal/memstream"
	"github.com/MikhailWahib/kvwire/internal/stream"
	"github.com/MikhailWahib/kvwire/internal/table"
)

// Config is an alias for config.Config, re-exported for user convenience.
type Config = config.Config

// DefaultConfig returns a Config populated with default values.
var DefaultConfig = config.DefaultConfig

// LoadConfig reads a TOML or YAML config file.
var LoadConfig = config.LoadFile

// Records and their fields.
type (
	Record    = dto.Record
	Object    = dto.Object
	Version   = dto.Version
	Field     = table.Field
	Owned     = table.Owned
	StaticRef = table.StaticRef
)

// Static returns a handle to an immutable string for use as a field key or
// value. Create static handles once, normally as package-level variables.
var Static = table.Static

// Channels and streaming.
type (
	Reader      = channel.Reader
	Writer      = channel.Writer
	Filter      = stream.Filter
	Destination = stream.Destination
	TypeMapper  = stream.TypeMapper
	MapperFunc  = stream.MapperFunc
	Registry    = stream.Registry
	Constructor = stream.Constructor
)

var (
	NewRegistry = stream.NewRegistry
	DropKeys    = stream.DropKeys
	StopAt      = stream.StopAt

	// NewSource and NewSink build in-memory channels.
	NewSource = memstream.NewSource
	NewSink   = memstream.NewSink
	// NewIO adapts an io.Reader and io.Writer to a channel.
	NewIO = iochan.New
)

var (
	ErrTypeMismatch        = dto.ErrTypeMismatch
	ErrVersionIncompatible = dto.ErrVersionIncompatible
	ErrReservedKey         = dto.ErrReservedKey
	ErrUnknownType         = stream.ErrUnknownType
	ErrMalformedHeader     = stream.ErrMalformedHeader
	ErrAllocation          = table.ErrAllocation
)

// Codec loads and sends records. It holds one line buffer and is not safe
// for concurrent use; create one per goroutine.
type Codec struct {
	m *stream.Manager
}

// New returns a Codec. A nil cfg uses DefaultConfig and a nil logger
// discards.
func New(cfg *Config, logger *slog.Logger) *Codec {
	return &Codec{m: stream.NewManager(cfg, logger)}
}

// NewObject returns an empty generic record sized by the codec's config.
func (c *Codec) NewObject() *Object {
	return c.m.NewObject()
}

// NewSink returns an empty in-memory sink sized by the codec's config.
func (c *Codec) NewSink() *memstream.Buffer {
	return c.m.NewSink()
}

// Load reads src into rec. A header line, if present, must match rec's type
// and version; otherwise nothing is stored and ErrTypeMismatch or
// ErrVersionIncompatible is returned.
func (c *Codec) Load(src Reader, rec Record) error {
	return c.m.Load(src, rec)
}

// LoadAs reads a stream that must start with a header and returns a record of
// the type it names, built by mapper.
func (c *Codec) LoadAs(src Reader, mapper TypeMapper) (Record, error) {
	return c.m.LoadAs(src, mapper)
}

// Send writes rec to dest, blocking on every byte until dest has room or ctx
// is done.
func (c *Codec) Send(ctx context.Context, dest Writer, rec Record) error {
	return c.m.Send(ctx, dest, rec)
}

// Pipe copies src to dest line by line through filter. A nil filter forwards
// everything; a nil dest discards.
func (c *Codec) Pipe(ctx context.Context, src Reader, dest Writer, filter Filter) error {
	return c.m.Pipe(ctx, src, dest, filter)
}

// Marshal returns the wire form of rec.
func (c *Codec) Marshal(ctx context.Context, rec Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.m.Send(ctx, iochan.NewWriter(&buf), rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal loads the wire form in data into rec.
func (c *Codec) Unmarshal(data []byte, rec Record) error {
	return c.m.Load(iochan.NewReader(bytes.NewReader(data)), rec)
}

// Marshal returns the wire form of rec using the default config.
func Marshal(ctx context.Context, rec Record) ([]byte, error) {
	return New(nil, nil).Marshal(ctx, rec)
}

// Unmarshal loads data into rec using the default config.
func Unmarshal(data []byte, rec Record) error {
	return New(nil, nil).Unmarshal(data, rec)
}
