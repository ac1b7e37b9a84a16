package stream_test

import (
	"testing"

	"github.com/MikhailWahib/kvwire/internal/config"
	"github.com/MikhailWahib/kvwire/internal/memstream"
	"github.com/MikhailWahib/kvwire/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_NegativeSizesUseDefaults(t *testing.T) {
	cfg := &config.Config{BufferBytes: -1, SinkCapacity: -5, InitialCapacity: -1, LoadFactor: -0.5}

	var m *stream.Manager
	require.NotPanics(t, func() { m = stream.NewManager(cfg, nil) })
	assert.Equal(t, -1, cfg.BufferBytes, "caller's config must not be modified")

	def := config.DefaultConfig()
	assert.Equal(t, def.BufferBytes, m.Config().BufferBytes)
	assert.Equal(t, def.SinkCapacity, m.Config().SinkCapacity)
	require.NoError(t, m.Config().Validate())

	line, truncated, err := m.ReadLine(memstream.NewSourceString("name=Dune\n"))
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Equal(t, "name=Dune", line)
	assert.Equal(t, 8, m.NewObject().Store().Capacity())
}

func TestManager_NewSink(t *testing.T) {
	m := newManager(t, func(c *config.Config) { c.SinkCapacity = 12 })
	sink := m.NewSink()
	assert.Equal(t, memstream.Sink, sink.Mode())
	assert.Equal(t, 12, sink.Cap())
	assert.Equal(t, 0, sink.Len())

	obj := m.NewObject()
	require.NoError(t, obj.SetField("a", "1"))
	require.NoError(t, m.Send(t.Context(), sink, obj))
	assert.Equal(t, "a=1\n", sink.String())
	assert.Equal(t, 8, sink.AvailableForWrite())
}
