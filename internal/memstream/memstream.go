// Package memstream provides an in-memory byte channel, mainly for tests and
// loopback. A Buffer is either a read-only source or a fixed-capacity sink.
package memstream

import (
	"io"

	"github.com/MikhailWahib/kvwire/internal/channel"
)

// DefaultSinkCapacity is the capacity of sinks created without one.
const DefaultSinkCapacity = 128

// Mode fixes what a Buffer may be used for.
type Mode uint8

const (
	// Source buffers are pre-loaded and read-only.
	Source Mode = iota
	// Sink buffers start empty and accept writes up to their capacity.
	Sink
)

// Buffer implements channel.Channel over a byte slice.
type Buffer struct {
	data     []byte
	pos      int
	capacity int
	mode     Mode
}

var _ channel.Channel = (*Buffer)(nil)

// NewSource returns a read-only buffer holding a copy of data.
func NewSource(data []byte) *Buffer {
	return &Buffer{
		data:     append([]byte(nil), data...),
		capacity: len(data),
		mode:     Source,
	}
}

// NewSourceString returns a read-only buffer holding s.
func NewSourceString(s string) *Buffer {
	return NewSource([]byte(s))
}

// NewSink returns an empty buffer that accepts up to capacity bytes.
// A capacity <= 0 selects DefaultSinkCapacity.
func NewSink(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultSinkCapacity
	}
	return &Buffer{
		data:     make([]byte, 0, capacity),
		capacity: capacity,
		mode:     Sink,
	}
}

// Mode returns the buffer's mode.
func (b *Buffer) Mode() Mode {
	return b.mode
}

// ReadByte returns the next unread byte, or io.EOF once the source is exhausted.
func (b *Buffer) ReadByte() (byte, error) {
	if b.mode != Source {
		return 0, channel.ErrWriteOnly
	}
	if b.pos >= len(b.data) {
		return 0, io.EOF
	}
	c := b.data[b.pos]
	b.pos++
	return c, nil
}

// Peek returns the next unread byte without consuming it.
func (b *Buffer) Peek() (byte, error) {
	if b.mode != Source {
		return 0, channel.ErrWriteOnly
	}
	if b.pos >= len(b.data) {
		return 0, io.EOF
	}
	return b.data[b.pos], nil
}

// Available returns the number of unread bytes. Sinks always report zero.
func (b *Buffer) Available() int {
	if b.mode != Source {
		return 0
	}
	return len(b.data) - b.pos
}

// WriteByte appends c to a sink. It never grows the buffer.
func (b *Buffer) WriteByte(c byte) error {
	if b.mode != Sink {
		return channel.ErrReadOnly
	}
	if len(b.data) >= b.capacity {
		return channel.ErrFull
	}
	b.data = append(b.data, c)
	return nil
}

// AvailableForWrite returns the remaining sink capacity. Sources always report zero.
func (b *Buffer) AvailableForWrite() int {
	if b.mode != Sink {
		return 0
	}
	return b.capacity - len(b.data)
}

// Discard skips all unread input.
func (b *Buffer) Discard() {
	b.pos = len(b.data)
}

// Reset rewinds a source to its start, or empties a sink.
func (b *Buffer) Reset() {
	b.pos = 0
	if b.mode == Sink {
		b.data = b.data[:0]
	}
}

// ResetCapacity empties a sink and gives it a new capacity. This is the only
// way a sink grows. It is a no-op on sources.
func (b *Buffer) ResetCapacity(capacity int) {
	if b.mode != Sink {
		return
	}
	if capacity <= 0 {
		capacity = DefaultSinkCapacity
	}
	b.data = make([]byte, 0, capacity)
	b.capacity = capacity
	b.pos = 0
}

// ToSource turns a sink into a source positioned at the start of what was
// written. It is a no-op on sources.
func (b *Buffer) ToSource() {
	if b.mode != Sink {
		return
	}
	b.mode = Source
	b.capacity = len(b.data)
	b.pos = 0
}

// Len returns the number of bytes held.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return b.capacity
}

// Bytes returns the buffer contents. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// String returns the buffer contents.
func (b *Buffer) String() string {
	return string(b.data)
}
