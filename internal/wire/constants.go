// Package wire defines the textual line format: an optional header line
// followed by key=value data lines.
package wire

// HeaderKey is the reserved key of the header line. Application fields must not use it.
const HeaderKey = "__tvid"

// HeaderPrefix starts every header line.
const HeaderPrefix = HeaderKey + string(KeyValueSeparator)

// KeyValueSeparator splits a data line into key and value at its first occurrence.
const KeyValueSeparator = '='

// VersionSeparator splits the header value into type id and version.
const VersionSeparator = '|'

// Terminator ends every line on the wire.
const Terminator = '\n'

// UntypedID marks a generic record that carries no header.
const UntypedID int16 = -1
