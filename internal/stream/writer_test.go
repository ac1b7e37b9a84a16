package stream_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/MikhailWahib/kvwire/internal/dto/dtotest"
	"github.com/MikhailWahib/kvwire/internal/iochan"
	"github.com/MikhailWahib/kvwire/internal/memstream"
	"github.com/MikhailWahib/kvwire/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_Untyped(t *testing.T) {
	m := newManager(t, nil)
	obj := m.NewObject()
	require.NoError(t, obj.SetField("name", "Dune"))
	require.NoError(t, obj.SetField("pages", "412"))

	sink := memstream.NewSink(0)
	require.NoError(t, m.Send(t.Context(), sink, obj))
	assert.ElementsMatch(t, []string{"name=Dune", "pages=412"}, outputLines(t, sink.String()))
}

func TestSend_TypedHeaderFirst(t *testing.T) {
	m := newManager(t, nil)
	b := dtotest.NewBook("Dune", 412)
	require.NoError(t, b.SetMeta("Chilton", 1965))

	sink := memstream.NewSink(0)
	require.NoError(t, m.Send(t.Context(), sink, b))

	lines := outputLines(t, sink.String())
	require.NotEmpty(t, lines)
	assert.Equal(t, "__tvid=1|0", lines[0])
	assert.ElementsMatch(t, []string{"name=Dune", "pages=412", "meta=Chilton|1965"}, lines[1:])
}

func TestSend_SkipsBlankKeys(t *testing.T) {
	m := newManager(t, nil)
	obj := m.NewObject()
	require.NoError(t, obj.Put(table.OwnedString("   "), table.OwnedString("ghost")))
	require.NoError(t, obj.SetField("a", "1"))

	sink := memstream.NewSink(0)
	require.NoError(t, m.Send(t.Context(), sink, obj))
	assert.Equal(t, "a=1\n", sink.String())
}

func TestSend_CustomSender(t *testing.T) {
	m := newManager(t, nil)
	j := &dtotest.Journal{Entries: []string{"boot ok", "sensor=21.5"}}

	sink := memstream.NewSink(0)
	require.NoError(t, m.Send(t.Context(), sink, j))
	assert.Equal(t, "__tvid=3|1\nboot ok\nsensor=21.5\n", sink.String())
}

func TestRoundTrip(t *testing.T) {
	m := newManager(t, nil)
	src := m.NewObject()
	for i := range 40 {
		require.NoError(t, src.SetField(fmt.Sprintf("key%02d", i), fmt.Sprintf("value %d", i*i)))
	}

	sink := memstream.NewSink(4096)
	require.NoError(t, m.Send(t.Context(), sink, src))
	sink.ToSource()

	dst := m.NewObject()
	require.NoError(t, m.Load(sink, dst))
	assert.Equal(t, src.Fields(), dst.Fields())
}

func TestRoundTrip_UnknownFieldPreserved(t *testing.T) {
	m := newManager(t, nil)
	first := &dtotest.Book{}
	require.NoError(t, m.Load(memstream.NewSourceString("__tvid=1|0\nname=Dune\npages=412\ncustom=xyz\n"), first))

	sink := memstream.NewSink(0)
	require.NoError(t, m.Send(t.Context(), sink, first))
	sink.ToSource()

	second := &dtotest.Book{}
	require.NoError(t, m.Load(sink, second))
	assert.Equal(t, "xyz", second.GetField("custom", ""))
	assert.Equal(t, "Dune", second.Name())
}

func TestRoundTrip_LoadAs(t *testing.T) {
	m := newManager(t, nil)
	reg := newRegistry(t)

	sink := memstream.NewSink(0)
	require.NoError(t, m.Send(t.Context(), sink, dtotest.NewMagazine("Wired", 7)))
	sink.ToSource()

	rec, err := m.LoadAs(sink, reg)
	require.NoError(t, err)
	mag, ok := rec.(*dtotest.Magazine)
	require.True(t, ok)
	assert.Equal(t, 7, mag.GetInt("issue", 0))
}

func TestSend_BlocksUntilContextDone(t *testing.T) {
	m := newManager(t, nil)
	obj := m.NewObject()
	require.NoError(t, obj.SetField("name", "Dune"))

	sink := memstream.NewSink(4)
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	err := m.Send(ctx, sink, obj)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "name", sink.String(), "bytes written before the stall stay written")
}

func TestSend_SlowChannel(t *testing.T) {
	m := newManager(t, nil)
	obj := m.NewObject()
	require.NoError(t, obj.SetField("k", "v"))

	sink := &slowSink{stall: 3}
	require.NoError(t, m.Send(t.Context(), sink, obj))
	assert.Equal(t, "k=v\n", sink.out.String())
	assert.GreaterOrEqual(t, sink.polls, 4*4, "every byte waited for capacity")
}

func TestSend_WriteWaiter(t *testing.T) {
	m := newManager(t, nil)
	obj := m.NewObject()
	require.NoError(t, obj.SetField("description", "a line longer than the sixteen byte write buffer"))

	var out bytes.Buffer
	conn := iochan.NewWriter(&out, iochan.WithBufferSize(16))
	require.NoError(t, m.Send(t.Context(), conn, obj))
	assert.Equal(t, "description=a line longer than the sixteen byte write buffer\n", out.String())
}

func TestSend_Throttled(t *testing.T) {
	m := newManager(t, nil)
	obj := m.NewObject()
	require.NoError(t, obj.SetField("k", "v"))

	var out bytes.Buffer
	// 10 bits per byte at 2000 baud is 5ms per byte.
	conn := iochan.NewWriter(&out, iochan.WithBaud(2000))

	start := time.Now()
	require.NoError(t, m.Send(t.Context(), conn, obj))
	assert.Equal(t, "k=v\n", out.String())
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}
