// Package dto defines the records that streams load into and send from.
//
// A record owns one table.Table and reports a Version. Generic records embed
// Object and use it as is. Typed records embed Object, override Version, and
// may implement any of the optional capability interfaces below; the stream
// manager falls back to the default behaviour whenever a record does not
// implement one or declines to handle a field.
package dto

import (
	"github.com/MikhailWahib/kvwire/internal/table"
	"github.com/MikhailWahib/kvwire/internal/wire"
)

// Record is anything a stream can be loaded into or sent from.
type Record interface {
	Store() *table.Table
	Version() Version
}

// FieldParser special-cases data lines. ParseField returns handled=false to
// let the default parser store the pair verbatim, so unknown fields survive
// a load/send cycle.
type FieldParser interface {
	ParseField(lineNumber uint16, key, value string) (handled bool, err error)
}

// FieldRenderer special-cases entries on send. RenderField returns
// handled=false to fall back to "key=value".
type FieldRenderer interface {
	RenderField(key, value table.Field) (line string, handled bool)
}

// LineReader hands trimmed lines to a custom loader.
type LineReader interface {
	// ReadLine returns the next line, or ok=false once the input is exhausted.
	ReadLine() (line string, ok bool)
}

// LineWriter accepts lines from a custom sender. The terminator is added by
// the writer.
type LineWriter interface {
	WriteLine(line string) error
}

// CustomLoader replaces the key=value parser for records whose wire shape is
// not flat. The header line, if any, has already been consumed and checked.
type CustomLoader interface {
	CustomLoad(src LineReader) error
}

// CustomSender replaces the key=value renderer. The header line, if any, has
// already been written.
type CustomSender interface {
	CustomSend(dest LineWriter) error
}

// Compatible checks a stream header against rec.
func Compatible(rec Record, m wire.Meta) error {
	return rec.Version().CheckCompatible(m)
}

// ParseLine splits a data line and hands it to ParseValue.
func ParseLine(rec Record, lineNumber uint16, line string) error {
	key, value := wire.SplitLine(line)
	return ParseValue(rec, lineNumber, key, value)
}

// ParseValue offers the pair to rec's FieldParser, then stores it verbatim
// as owned bytes. The reserved header key is never stored.
func ParseValue(rec Record, lineNumber uint16, key, value string) error {
	if p, ok := rec.(FieldParser); ok {
		handled, err := p.ParseField(lineNumber, key, value)
		if err != nil {
			return err
		}
		if handled {
			return nil
		}
	}
	if key == wire.HeaderKey {
		return nil
	}
	return rec.Store().Put(table.OwnedString(key), table.OwnedString(value))
}

// RenderLine offers the entry to rec's FieldRenderer, then falls back to "key=value".
func RenderLine(rec Record, key, value table.Field) string {
	if r, ok := rec.(FieldRenderer); ok {
		if line, handled := r.RenderField(key, value); handled {
			return line
		}
	}
	return wire.FormatLine(key.String(), value.String())
}
