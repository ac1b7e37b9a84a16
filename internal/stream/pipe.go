package stream

import (
	"context"
	"errors"
	"io"

	"github.com/MikhailWahib/kvwire/internal/channel"
	"github.com/MikhailWahib/kvwire/internal/wire"
)

// Filter sees each piped line. It forwards, rewrites or drops the line by
// writing to dest as it sees fit, and returns false to stop the pipe.
type Filter func(line string, dest *Destination) bool

// Pipe copies src to dest one line at a time. Without a filter every line is
// forwarded as read. A nil dest discards.
func (m *Manager) Pipe(ctx context.Context, src channel.Reader, dest channel.Writer, filter Filter) error {
	d := m.destination(ctx, dest)
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, _, err := m.ReadLine(src)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if filter == nil {
			if err := d.WriteLine(line); err != nil {
				return err
			}
			continue
		}
		if !filter(line, d) {
			m.logger.Debug("pipe stopped by filter", "lines", n)
			return d.Err()
		}
		if err := d.Err(); err != nil {
			return err
		}
	}
}

// DropKeys returns a filter forwarding every line except data lines whose key
// is one of keys.
func DropKeys(keys ...string) Filter {
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}
	return func(line string, dest *Destination) bool {
		if _, ok := drop[lineKey(line)]; ok {
			return true
		}
		return dest.WriteLine(line) == nil
	}
}

// StopAt returns a filter forwarding lines until one equals marker. The
// marker itself is not forwarded.
func StopAt(marker string) Filter {
	return func(line string, dest *Destination) bool {
		if line == marker {
			return false
		}
		return dest.WriteLine(line) == nil
	}
}

func lineKey(line string) string {
	key, _ := wire.SplitLine(line)
	return key
}
