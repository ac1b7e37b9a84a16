package table

import "bytes"

// Tier says where a field's bytes live.
type Tier uint8

const (
	// TierOwned fields are private copies held by the table.
	TierOwned Tier = iota
	// TierStatic fields reference immutable, address-stable strings and are never copied.
	TierStatic
)

func (t Tier) String() string {
	switch t {
	case TierOwned:
		return "owned"
	case TierStatic:
		return "static"
	default:
		return "unknown"
	}
}

// Field is a key or value stored in a Table. It is either Owned or StaticRef.
type Field interface {
	Tier() Tier
	Len() int
	String() string
	isField()
}

// Owned is a heap-owned byte string. Put stores a private copy.
type Owned []byte

// OwnedString returns an Owned field holding a copy of s.
func OwnedString(s string) Owned { return Owned(s) }

func (o Owned) Tier() Tier { return TierOwned }

func (o Owned) Len() int { return len(o) }

func (o Owned) String() string { return string(o) }

func (o Owned) isField() {}

func (o Owned) clone() Owned { return append(Owned(make([]byte, 0, len(o))), o...) }

// StaticRef is a handle to an immutable string. Create refs once, typically
// as package-level variables; two refs from the same call are identical and
// compare without touching their bytes.
type StaticRef struct {
	s *string
}

// Static returns a new handle for s.
func Static(s string) StaticRef {
	return StaticRef{s: &s}
}

func (r StaticRef) Tier() Tier { return TierStatic }

func (r StaticRef) Len() int {
	if r.s == nil {
		return 0
	}
	return len(*r.s)
}

func (r StaticRef) String() string {
	if r.s == nil {
		return ""
	}
	return *r.s
}

func (r StaticRef) isField() {}

// Same reports whether r and other are the same handle.
func (r StaticRef) Same(other StaticRef) bool {
	return r.s == other.s
}

// Equal reports whether a and b hold the same content, whatever their tiers.
// Two identical static handles match without a byte comparison.
func Equal(a, b Field) bool {
	switch x := a.(type) {
	case StaticRef:
		switch y := b.(type) {
		case StaticRef:
			if x.s == y.s {
				return true
			}
			return x.String() == y.String()
		case Owned:
			return string(y) == x.String()
		}
	case Owned:
		switch y := b.(type) {
		case StaticRef:
			return string(x) == y.String()
		case Owned:
			return bytes.Equal(x, y)
		}
	}
	return false
}

// hash is the polynomial rolling hash h = 31*h + b over the field's content.
func hash(f Field) uint32 {
	var h uint32
	switch x := f.(type) {
	case Owned:
		for _, c := range x {
			h = 31*h + uint32(c)
		}
	case StaticRef:
		s := x.String()
		for i := 0; i < len(s); i++ {
			h = 31*h + uint32(s[i])
		}
	}
	return h
}

// store returns the representation kept in the table: a private copy for
// Owned fields, the handle itself for static ones.
func store(f Field) Field {
	if o, ok := f.(Owned); ok {
		return o.clone()
	}
	return f
}
