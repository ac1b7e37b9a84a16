package stream_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/MikhailWahib/kvwire/internal/channel"
	"github.com/MikhailWahib/kvwire/internal/config"
	"github.com/MikhailWahib/kvwire/internal/dto"
	"github.com/MikhailWahib/kvwire/internal/dto/dtotest"
	"github.com/MikhailWahib/kvwire/internal/stream"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, mutate func(*config.Config)) *stream.Manager {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.WritePollInterval = 10 * time.Microsecond
	cfg.MaxWritePollInterval = 200 * time.Microsecond
	if mutate != nil {
		mutate(cfg)
	}
	return stream.NewManager(cfg, nil)
}

// outputLines splits captured output into lines, dropping the final empty
// element left by the trailing terminator.
func outputLines(t *testing.T, out string) []string {
	t.Helper()
	require.True(t, strings.HasSuffix(out, "\n"), "output must end with a terminator: %q", out)
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
}

// slowSink accepts one byte only after stall polls of AvailableForWrite, like
// a UART draining its transmit buffer.
type slowSink struct {
	out     bytes.Buffer
	stall   int
	waiting int
	polls   int
}

var _ channel.Writer = (*slowSink)(nil)

func (s *slowSink) AvailableForWrite() int {
	s.polls++
	if s.waiting < s.stall {
		s.waiting++
		return 0
	}
	return 1
}

func (s *slowSink) WriteByte(c byte) error {
	if s.waiting < s.stall {
		return channel.ErrFull
	}
	s.waiting = 0
	return s.out.WriteByte(c)
}

// lineRecorder notes the line number of every parsed field and then lets
// the default parser store it.
type lineRecorder struct {
	dto.Object
	numbers []uint16
}

func (r *lineRecorder) ParseField(lineNumber uint16, _, _ string) (bool, error) {
	r.numbers = append(r.numbers, lineNumber)
	return false, nil
}

func newRegistry(t *testing.T) *stream.Registry {
	t.Helper()
	reg := stream.NewRegistry()
	for id, ctor := range dtotest.Constructors() {
		require.NoError(t, reg.Register(id, ctor))
	}
	return reg
}
