// Package stream loads records from and sends records to byte channels using
// the kvwire line protocol.
//
// A stream is a sequence of terminator-separated lines. The first line may be
// a header ("__tvid=<typeId>|<minCompatVersion>") naming the record type and
// the oldest serial version able to parse it; every other line is
// "key=value". A Manager is single-owner: it reuses one line buffer and must
// not be shared between goroutines.
package stream

import (
	"errors"
	"log/slog"

	"github.com/MikhailWahib/kvwire/internal/config"
	"github.com/MikhailWahib/kvwire/internal/dto"
	"github.com/MikhailWahib/kvwire/internal/logging"
	"github.com/MikhailWahib/kvwire/internal/memstream"
)

var (
	// ErrMalformedHeader is returned by LoadAs when the first line is not a header.
	ErrMalformedHeader = errors.New("stream: malformed header")
	// ErrUnknownType is returned by LoadAs when the mapper has no record for the header's type id.
	ErrUnknownType = errors.New("stream: unknown type")
)

// Manager reads and writes lines over channels.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger
	buf    []byte
}

// NewManager returns a Manager working on a default-filled copy of cfg. A nil
// cfg uses the defaults and a nil logger discards everything. Zero or
// negative sizes in cfg fall back to their defaults.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if cfg == nil {
		cfg = config.DefaultConfig()
	} else {
		c := *cfg
		cfg = &c
	}
	cfg.FillDefaults()
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{
		cfg:    cfg,
		logger: logger.With("component", "stream"),
		buf:    make([]byte, 0, cfg.BufferBytes),
	}
}

func (m *Manager) Config() *config.Config {
	return m.cfg
}

// NewObject returns a generic record whose table follows the manager's config.
func (m *Manager) NewObject() *dto.Object {
	return dto.NewObject(m.cfg.TableOptions())
}

// NewSink returns an empty in-memory sink holding up to SinkCapacity bytes.
func (m *Manager) NewSink() *memstream.Buffer {
	return memstream.NewSink(m.cfg.SinkCapacity)
}

func release(rec dto.Record) {
	if r, ok := rec.(interface{ Release() }); ok {
		r.Release()
	}
}
