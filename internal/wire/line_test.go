package wire_test

import (
	"testing"

	"github.com/MikhailWahib/kvwire/internal/wire"
	"github.com/stretchr/testify/assert"
)

func TestFormatHeader(t *testing.T) {
	assert.Equal(t, "__tvid=1|0", wire.FormatHeader(wire.Meta{TypeID: 1}))
	assert.Equal(t, "__tvid=32767|255", wire.FormatHeader(wire.Meta{TypeID: 32767, MinCompatVersion: 255}))
	assert.Equal(t, "__tvid=-2|3", wire.FormatHeader(wire.Meta{TypeID: -2, MinCompatVersion: 3}))
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		line string
		want wire.Meta
		ok   bool
	}{
		{"__tvid=1|2", wire.Meta{TypeID: 1, MinCompatVersion: 2}, true},
		{"  __tvid=7|0  ", wire.Meta{TypeID: 7}, true},
		{"__tvid= 12 | 4", wire.Meta{TypeID: 12, MinCompatVersion: 4}, true},
		{"__tvid=-1|0", wire.Meta{TypeID: -1}, true},
		{"__tvid=1", wire.Meta{}, false},
		{"__tvid=x|1", wire.Meta{}, false},
		{"__tvid=1|256", wire.Meta{}, false},
		{"__tvid=40000|1", wire.Meta{}, false},
		{"name=__tvid=1|2", wire.Meta{}, false},
		{"name=Moby Dick", wire.Meta{}, false},
		{"", wire.Meta{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := wire.ParseHeader(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, wire.IsHeader(tt.line))
		})
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	m := wire.Meta{TypeID: 513, MinCompatVersion: 9}
	got, ok := wire.ParseHeader(wire.FormatHeader(m))
	assert.True(t, ok)
	assert.Equal(t, m, got)
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		line, key, value string
	}{
		{"name=Moby Dick", "name", "Moby Dick"},
		{"  pages =  635 ", "pages", "635"},
		{"meta=Harper|1851", "meta", "Harper|1851"},
		{"expr=a=b", "expr", "a=b"},
		{"flag", "flag", ""},
		{"  flag  ", "flag", ""},
		{"empty=", "empty", ""},
		{"=orphan", "", "orphan"},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			k, v := wire.SplitLine(tt.line)
			assert.Equal(t, tt.key, k)
			assert.Equal(t, tt.value, v)
		})
	}
}

func TestFormatLine(t *testing.T) {
	assert.Equal(t, "name=Moby Dick", wire.FormatLine("name", "Moby Dick"))
	assert.Equal(t, "flag=", wire.FormatLine("flag", ""))
}
