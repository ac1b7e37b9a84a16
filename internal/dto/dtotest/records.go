// Package dtotest provides typed records for tests across kvwire packages.
package dtotest

import (
	"strconv"
	"strings"

	"github.com/MikhailWahib/kvwire/internal/dto"
	"github.com/MikhailWahib/kvwire/internal/table"
)

const (
	BookTypeID     int16 = 1
	MagazineTypeID int16 = 2
	JournalTypeID  int16 = 3
)

var (
	KeyName  = table.Static("name")
	KeyPages = table.Static("pages")
	KeyMeta  = table.Static("meta")
	KeyIssue = table.Static("issue")
)

// Book stores name and pages in its table and keeps publisher/year outside
// it, sending them as one composite "meta=publisher|year" line.
type Book struct {
	dto.Object
	Publisher string
	Year      int
}

func NewBook(name string, pages int) *Book {
	b := &Book{}
	_ = b.SetStatic(KeyName, name)
	_ = b.SetStatic(KeyPages, strconv.Itoa(pages))
	return b
}

func (b *Book) Version() dto.Version {
	return dto.Version{TypeID: BookTypeID, SerialVersion: 1, MinCompatVersion: 0}
}

func (b *Book) Name() string {
	v, _ := b.Get(KeyName)
	if v == nil {
		return ""
	}
	return v.String()
}

func (b *Book) Pages() int {
	return b.GetInt("pages", 0)
}

// SetMeta fills the composite field and registers its placeholder.
func (b *Book) SetMeta(publisher string, year int) error {
	b.Publisher, b.Year = publisher, year
	return b.PutEmpty(KeyMeta)
}

func (b *Book) ParseField(_ uint16, key, value string) (bool, error) {
	switch key {
	case "name":
		return true, b.SetStatic(KeyName, value)
	case "pages":
		return true, b.SetStatic(KeyPages, value)
	case "meta":
		publisher, year, _ := strings.Cut(value, "|")
		y, _ := strconv.Atoi(year)
		return true, b.SetMeta(publisher, y)
	}
	return false, nil
}

func (b *Book) RenderField(key, _ table.Field) (string, bool) {
	if !table.Equal(key, KeyMeta) {
		return "", false
	}
	return "meta=" + b.Publisher + "|" + strconv.Itoa(b.Year), true
}

// Magazine is a second typed record with the plain key=value shape.
type Magazine struct {
	dto.Object
}

func NewMagazine(name string, issue int) *Magazine {
	m := &Magazine{}
	_ = m.SetStatic(KeyName, name)
	_ = m.SetStatic(KeyIssue, strconv.Itoa(issue))
	return m
}

func (m *Magazine) Version() dto.Version {
	return dto.Version{TypeID: MagazineTypeID, SerialVersion: 1}
}

// Typed is a plain record with a configurable version, for exercising the
// compatibility gate.
type Typed struct {
	dto.Object
	V dto.Version
}

func NewTyped(typeID int16, serial, minCompat uint8) *Typed {
	return &Typed{V: dto.Version{TypeID: typeID, SerialVersion: serial, MinCompatVersion: minCompat}}
}

func (t *Typed) Version() dto.Version { return t.V }

// Journal has a non-flat wire shape: every line is one entry, in order.
type Journal struct {
	dto.Object
	Entries []string
}

func (j *Journal) Version() dto.Version {
	return dto.Version{TypeID: JournalTypeID, SerialVersion: 2, MinCompatVersion: 1}
}

func (j *Journal) CustomLoad(src dto.LineReader) error {
	j.Entries = j.Entries[:0]
	for {
		line, ok := src.ReadLine()
		if !ok {
			break
		}
		j.Entries = append(j.Entries, line)
	}
	return j.SetInt("count", len(j.Entries))
}

func (j *Journal) CustomSend(dest dto.LineWriter) error {
	for _, e := range j.Entries {
		if err := dest.WriteLine(e); err != nil {
			return err
		}
	}
	return nil
}

// Constructors maps each fixture's type id to a constructor.
func Constructors() map[int16]func() dto.Record {
	return map[int16]func() dto.Record{
		BookTypeID:     func() dto.Record { return &Book{} },
		MagazineTypeID: func() dto.Record { return &Magazine{} },
		JournalTypeID:  func() dto.Record { return &Journal{} },
	}
}
