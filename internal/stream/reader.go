package stream

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MikhailWahib/kvwire/internal/channel"
	"github.com/MikhailWahib/kvwire/internal/dto"
	"github.com/MikhailWahib/kvwire/internal/wire"
)

// ReadLine reads bytes from src up to the terminator or the end of input and
// returns them trimmed. Bytes past the configured buffer size are consumed
// but dropped, and truncated reports that this happened. It returns io.EOF
// only when src was already exhausted; a failing reader's error is returned
// in its place.
func (m *Manager) ReadLine(src channel.Reader) (line string, truncated bool, err error) {
	term := m.cfg.Terminator()
	limit := m.cfg.BufferBytes
	buf := m.buf[:0]
	read := false

	for src.Available() > 0 {
		c, err := src.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", false, fmt.Errorf("stream: read: %w", err)
		}
		read = true
		if c == term {
			break
		}
		if len(buf) < limit {
			buf = append(buf, c)
		} else {
			truncated = true
		}
	}
	m.buf = buf

	if !read {
		if r, ok := src.(channel.ErrReporter); ok && r.Err() != nil {
			return "", false, fmt.Errorf("stream: read: %w", r.Err())
		}
		return "", false, io.EOF
	}
	if truncated {
		m.logger.Debug("line truncated", "limit", limit)
	}
	return strings.TrimSpace(string(buf)), truncated, nil
}

// lineSource feeds non-blank lines to the loaders. It implements
// dto.LineReader for custom loaders.
type lineSource struct {
	m       *Manager
	src     channel.Reader
	pending string
	unread  bool
	done    bool
	err     error
}

func (m *Manager) lines(src channel.Reader) *lineSource {
	return &lineSource{m: m, src: src}
}

func (s *lineSource) ReadLine() (string, bool) {
	if s.unread {
		s.unread = false
		return s.pending, true
	}
	for !s.done {
		line, _, err := s.m.ReadLine(s.src)
		if err != nil {
			s.done = true
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			break
		}
		if line != "" {
			return line, true
		}
	}
	return "", false
}

func (s *lineSource) push(line string) {
	s.pending, s.unread = line, true
}

// Load reads src into rec. A leading header line is checked against rec's
// version and consumed; any other first line is parsed as data. Blank lines
// are skipped. On a type or version mismatch nothing is stored.
func (m *Manager) Load(src channel.Reader, rec dto.Record) error {
	lines := m.lines(src)
	first, ok := lines.ReadLine()
	if !ok {
		return lines.err
	}
	if meta, isHeader := wire.ParseHeader(first); isHeader {
		if err := m.accept(rec, meta); err != nil {
			return err
		}
		return m.loadBody(lines, rec, 1)
	}
	lines.push(first)
	return m.loadBody(lines, rec, 0)
}

// LoadAs reads a header line, builds the record it names through mapper and
// loads the rest of src into it. The record is released and nil returned on
// any failure.
func (m *Manager) LoadAs(src channel.Reader, mapper TypeMapper) (dto.Record, error) {
	lines := m.lines(src)
	first, ok := lines.ReadLine()
	if !ok {
		if lines.err != nil {
			return nil, lines.err
		}
		return nil, fmt.Errorf("%w: empty stream", ErrMalformedHeader)
	}
	meta, ok := wire.ParseHeader(first)
	if !ok {
		m.logger.Debug("header expected", "line", first)
		return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, first)
	}

	rec, ok := mapper.New(meta.TypeID)
	if !ok || isNilRecord(rec) {
		m.logger.Debug("unknown type", "type", meta.TypeID)
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, meta.TypeID)
	}
	if err := m.accept(rec, meta); err != nil {
		release(rec)
		return nil, err
	}
	if err := m.loadBody(lines, rec, 1); err != nil {
		release(rec)
		return nil, err
	}
	return rec, nil
}

func (m *Manager) accept(rec dto.Record, meta wire.Meta) error {
	v := rec.Version()
	if err := v.CheckCompatible(meta); err != nil {
		m.logger.Debug("header rejected",
			"stream_type", meta.TypeID,
			"stream_min_version", meta.MinCompatVersion,
			"type", v.TypeID,
			"version", v.SerialVersion,
		)
		return err
	}
	m.logger.Debug("header accepted", "type", meta.TypeID, "min_version", meta.MinCompatVersion)
	return nil
}

func (m *Manager) loadBody(lines *lineSource, rec dto.Record, lineNumber uint16) error {
	if c, ok := rec.(dto.CustomLoader); ok {
		if err := c.CustomLoad(lines); err != nil {
			return err
		}
		return lines.err
	}
	for {
		line, ok := lines.ReadLine()
		if !ok {
			return lines.err
		}
		if err := dto.ParseLine(rec, lineNumber, line); err != nil {
			return fmt.Errorf("stream: line %d: %w", lineNumber, err)
		}
		lineNumber++
	}
}
