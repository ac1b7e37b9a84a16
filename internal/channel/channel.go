// Package channel defines the byte channel boundary that streams are read
// from and written to. Concrete transports live elsewhere.
package channel

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrFull is returned by WriteByte when the channel has no write capacity.
	ErrFull = errors.New("channel: no write capacity")
	// ErrReadOnly is returned when writing to a source-only channel.
	ErrReadOnly = errors.New("channel: read-only")
	// ErrWriteOnly is returned when reading from a sink-only channel.
	ErrWriteOnly = errors.New("channel: write-only")
)

// Reader is the read half of a channel.
type Reader interface {
	io.ByteReader
	// Available returns the number of bytes that can be read without blocking.
	// Zero means the channel is exhausted for now.
	Available() int
}

// Writer is the write half of a channel.
type Writer interface {
	io.ByteWriter
	// AvailableForWrite returns how many bytes can be written right now.
	AvailableForWrite() int
}

// Channel is a bidirectional byte channel.
type Channel interface {
	Reader
	Writer
}

// WriteWaiter is implemented by writers that can block until write capacity
// frees up, instead of being polled.
type WriteWaiter interface {
	WaitWritable(ctx context.Context) error
}

// Flusher is implemented by buffered writers. The stream manager flushes
// after every complete line.
type Flusher interface {
	Flush() error
}

// ErrReporter is implemented by readers whose input can end with a failure
// rather than plain exhaustion. Err returns nil after a clean end.
type ErrReporter interface {
	Err() error
}
