package wire

import (
	"strconv"
	"strings"
)

// Meta is the decoded header line: the sender's type id and the oldest
// serial version able to parse the stream.
type Meta struct {
	TypeID           int16
	MinCompatVersion uint8
}

// FormatHeader renders a header line without terminator.
// Format: __tvid=<typeId>|<minCompatVersion>
func FormatHeader(m Meta) string {
	var b strings.Builder
	b.Grow(len(HeaderPrefix) + 10)
	b.WriteString(HeaderPrefix)
	b.WriteString(strconv.FormatInt(int64(m.TypeID), 10))
	b.WriteByte(VersionSeparator)
	b.WriteString(strconv.FormatUint(uint64(m.MinCompatVersion), 10))
	return b.String()
}

// IsHeader reports whether line is shaped like a header line.
func IsHeader(line string) bool {
	_, ok := ParseHeader(line)
	return ok
}

// ParseHeader decodes a header line. It returns false when the line does not
// start with the reserved key or either number fails to parse.
func ParseHeader(line string) (Meta, bool) {
	line = strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(line, HeaderPrefix)
	if !ok {
		return Meta{}, false
	}
	typeStr, verStr, ok := strings.Cut(rest, string(VersionSeparator))
	if !ok {
		return Meta{}, false
	}
	typeID, err := strconv.ParseInt(strings.TrimSpace(typeStr), 10, 16)
	if err != nil {
		return Meta{}, false
	}
	ver, err := strconv.ParseUint(strings.TrimSpace(verStr), 10, 8)
	if err != nil {
		return Meta{}, false
	}
	return Meta{TypeID: int16(typeID), MinCompatVersion: uint8(ver)}, true
}

// SplitLine splits a data line at the first separator and trims both sides.
// A line without a separator is a bare key with an empty value.
func SplitLine(line string) (key, value string) {
	k, v, found := strings.Cut(line, string(KeyValueSeparator))
	if !found {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(k), strings.TrimSpace(v)
}

// FormatLine renders a data line without terminator.
func FormatLine(key, value string) string {
	var b strings.Builder
	b.Grow(len(key) + 1 + len(value))
	b.WriteString(key)
	b.WriteByte(KeyValueSeparator)
	b.WriteString(value)
	return b.String()
}
