package stream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MikhailWahib/kvwire/internal/channel"
	"github.com/MikhailWahib/kvwire/internal/dto"
	"github.com/MikhailWahib/kvwire/internal/table"
	"github.com/MikhailWahib/kvwire/internal/wire"
)

// Destination is the write side handed to pipe filters and custom senders.
// A Destination without a channel discards every line. After the first
// failed write it keeps returning that error.
type Destination struct {
	ctx context.Context
	m   *Manager
	w   channel.Writer
	err error
}

var _ dto.LineWriter = (*Destination)(nil)

func (m *Manager) destination(ctx context.Context, w channel.Writer) *Destination {
	return &Destination{ctx: ctx, m: m, w: w}
}

// WriteLine writes line and the terminator with flow control.
func (d *Destination) WriteLine(line string) error {
	if d == nil || d.w == nil {
		return nil
	}
	if d.err != nil {
		return d.err
	}
	d.err = d.m.writeLine(d.ctx, d.w, line)
	return d.err
}

// Discarding reports whether lines written to d go nowhere.
func (d *Destination) Discarding() bool {
	return d == nil || d.w == nil
}

// Err returns the first write error.
func (d *Destination) Err() error {
	if d == nil {
		return nil
	}
	return d.err
}

// Send writes rec to dest: a header line first when rec is typed, then one
// line per entry. Entries with a blank key are skipped.
func (m *Manager) Send(ctx context.Context, dest channel.Writer, rec dto.Record) error {
	d := m.destination(ctx, dest)
	if v := rec.Version(); v.Typed() {
		if err := d.WriteLine(wire.FormatHeader(v.Meta())); err != nil {
			return err
		}
	}
	if c, ok := rec.(dto.CustomSender); ok {
		if err := c.CustomSend(d); err != nil {
			return err
		}
		return d.Err()
	}

	rec.Store().Range(func(key, value table.Field) bool {
		if strings.TrimSpace(key.String()) == "" {
			return true
		}
		return d.WriteLine(dto.RenderLine(rec, key, value)) == nil
	})
	return d.Err()
}

// writeLine writes line byte by byte, waiting before each byte until dest has
// room, then the terminator, then flushes dest if it buffers.
func (m *Manager) writeLine(ctx context.Context, dest channel.Writer, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for i := 0; i < len(line); i++ {
		if err := m.writeByte(ctx, dest, line[i]); err != nil {
			return err
		}
	}
	if err := m.writeByte(ctx, dest, m.cfg.Terminator()); err != nil {
		return err
	}
	if f, ok := dest.(channel.Flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("stream: flush: %w", err)
		}
	}
	return nil
}

func (m *Manager) writeByte(ctx context.Context, dest channel.Writer, c byte) error {
	if err := m.waitWritable(ctx, dest); err != nil {
		return err
	}
	if err := dest.WriteByte(c); err != nil {
		return fmt.Errorf("stream: write: %w", err)
	}
	return nil
}

// waitWritable blocks until dest reports write capacity. Channels that can
// wait for themselves are asked to; others are polled with exponential
// backoff. Only ctx bounds the wait.
func (m *Manager) waitWritable(ctx context.Context, dest channel.Writer) error {
	if dest.AvailableForWrite() > 0 {
		return nil
	}
	waiter, canWait := dest.(channel.WriteWaiter)
	backoff := m.cfg.WritePollInterval

	for dest.AvailableForWrite() == 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if canWait {
			if err := waiter.WaitWritable(ctx); err != nil {
				return fmt.Errorf("stream: wait writable: %w", err)
			}
			continue
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, m.cfg.MaxWritePollInterval)
	}
	return nil
}
