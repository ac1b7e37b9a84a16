// Package iochan adapts ordinary readers and writers (files, pipes, sockets,
// serial devices) to the channel boundary.
package iochan

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"

	"golang.org/x/time/rate"

	"github.com/MikhailWahib/kvwire/internal/channel"
)

const (
	defaultBufferSize = 64
	// bitsPerByte assumes 8N1 framing: start bit, 8 data bits, stop bit.
	bitsPerByte = 10
)

// Option configures a Conn.
type Option func(*options)

type options struct {
	bufferSize int
	baud       int
}

// WithBufferSize sets the size of the read and write buffers.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithBaud throttles writes to the byte rate of a serial link at the given
// baud. Zero disables throttling.
func WithBaud(baud int) Option {
	return func(o *options) {
		if baud > 0 {
			o.baud = baud
		}
	}
}

// Conn implements channel.Channel over an io.Reader and an io.Writer.
// Either side may be nil.
type Conn struct {
	r       *bufio.Reader
	w       *bufio.Writer
	limiter *rate.Limiter
	readErr error
}

var (
	_ channel.Channel     = (*Conn)(nil)
	_ channel.WriteWaiter = (*Conn)(nil)
	_ channel.Flusher     = (*Conn)(nil)
)

// New wraps r and w.
func New(r io.Reader, w io.Writer, opts ...Option) *Conn {
	o := options{bufferSize: defaultBufferSize}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Conn{}
	if r != nil {
		c.r = bufio.NewReaderSize(r, o.bufferSize)
	}
	if w != nil {
		c.w = bufio.NewWriterSize(w, o.bufferSize)
	}
	if o.baud > 0 {
		bytesPerSec := max(o.baud/bitsPerByte, 1)
		c.limiter = rate.NewLimiter(rate.Limit(bytesPerSec), 1)
	}
	return c
}

// NewReader wraps a read-only source.
func NewReader(r io.Reader, opts ...Option) *Conn {
	return New(r, nil, opts...)
}

// NewWriter wraps a write-only destination.
func NewWriter(w io.Writer, opts ...Option) *Conn {
	return New(nil, w, opts...)
}

// Available returns the number of buffered bytes. When the buffer is empty it
// waits for the underlying reader to produce data or report its end, the same
// way a read on the device would.
func (c *Conn) Available() int {
	if c.r == nil {
		return 0
	}
	if n := c.r.Buffered(); n > 0 {
		return n
	}
	if c.readErr != nil {
		return 0
	}
	if _, err := c.r.Peek(1); err != nil {
		c.readErr = err
		return 0
	}
	return c.r.Buffered()
}

// ReadByte reads one byte.
func (c *Conn) ReadByte() (byte, error) {
	if c.r == nil {
		return 0, channel.ErrWriteOnly
	}
	return c.r.ReadByte()
}

// Err returns the error that ended the read side, if it was not io.EOF.
func (c *Conn) Err() error {
	if c.readErr == nil || errors.Is(c.readErr, io.EOF) {
		return nil
	}
	return c.readErr
}

// AvailableForWrite returns the free space in the write buffer, or zero while
// the rate limiter has no byte to spend.
func (c *Conn) AvailableForWrite() int {
	if c.w == nil {
		return 0
	}
	if c.limiter != nil && c.limiter.Tokens() < 1 {
		return 0
	}
	return c.w.Available()
}

// WriteByte buffers one byte.
func (c *Conn) WriteByte(b byte) error {
	if c.w == nil {
		return channel.ErrReadOnly
	}
	if c.limiter != nil && !c.limiter.Allow() {
		return channel.ErrFull
	}
	return c.w.WriteByte(b)
}

// WaitWritable blocks until at least one byte can be written: it drains a
// full buffer and sleeps until the rate limiter allows the next byte.
func (c *Conn) WaitWritable(ctx context.Context) error {
	if c.w == nil {
		return channel.ErrReadOnly
	}
	if c.w.Available() == 0 {
		if err := c.w.Flush(); err != nil {
			return err
		}
	}
	if c.limiter == nil {
		return nil
	}

	res := c.limiter.Reserve()
	delay := res.Delay()
	res.Cancel()
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Flush writes any buffered bytes to the underlying writer.
func (c *Conn) Flush() error {
	if c.w == nil {
		return nil
	}
	return c.w.Flush()
}
