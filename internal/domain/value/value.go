// Package value holds the tagged document value shared by query synthesis and
// result projection. Mappings keep member order so that stage keys such as
// $sort survive the trip from model reply to the database.
package value

import (
	"encoding/hex"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
	KindSequence
	KindMapping
	KindObjectID
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindNumber:   "number",
	KindText:     "text",
	KindSequence: "sequence",
	KindMapping:  "mapping",
	KindObjectID: "object_id",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Member is a single key/value pair of a Mapping.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable tagged variant. The zero Value is Null.
type Value struct {
	kind    Kind
	b       bool
	s       string // text, or the literal of a number
	items   []Value
	members []Member
	oid     [12]byte
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a numeric literal as written (e.g. "95", "98.5", "1e3").
func Number(literal string) Value { return Value{kind: KindNumber, s: literal} }

// Int wraps an integer.
func Int(i int64) Value { return Number(strconv.FormatInt(i, 10)) }

// Float wraps a float using the shortest representation that round-trips.
func Float(f float64) Value { return Number(strconv.FormatFloat(f, 'f', -1, 64)) }

// Text wraps a string.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Sequence wraps an ordered list of values.
func Sequence(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindSequence, items: items}
}

// Mapping builds an ordered mapping. A repeated key keeps its first position and
// takes the last value.
func Mapping(members ...Member) Value {
	ms := memberSet{members: make([]Member, 0, len(members))}
	for _, m := range members {
		ms.set(m)
	}
	return Value{kind: KindMapping, members: ms.members}
}

// ObjectID wraps a 12-byte store identifier.
func ObjectID(id [12]byte) Value { return Value{kind: KindObjectID, oid: id} }

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload (false for other kinds).
func (v Value) Bool() bool { return v.b }

// Text returns the string payload of a Text value, or "" for other kinds.
func (v Value) Text() string {
	if v.kind != KindText {
		return ""
	}
	return v.s
}

// NumberLiteral returns the literal of a Number value, or "" for other kinds.
func (v Value) NumberLiteral() string {
	if v.kind != KindNumber {
		return ""
	}
	return v.s
}

// Items returns the elements of a Sequence. The slice must not be modified.
func (v Value) Items() []Value { return v.items }

// Members returns the members of a Mapping. The slice must not be modified.
func (v Value) Members() []Member { return v.members }

// Len returns the element count of a Sequence or member count of a Mapping.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.items)
	case KindMapping:
		return len(v.members)
	default:
		return 0
	}
}

// Get looks up a key in a Mapping.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether a Mapping contains key.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// ObjectIDBytes returns the raw identifier of an ObjectID value.
func (v Value) ObjectIDBytes() [12]byte { return v.oid }

// ObjectIDHex returns the canonical 24-character hex form of an ObjectID value.
func (v Value) ObjectIDHex() string {
	if v.kind != KindObjectID {
		return ""
	}
	return hex.EncodeToString(v.oid[:])
}

// Equal reports deep equality. Mapping order is significant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber, KindText:
		return v.s == o.s
	case KindObjectID:
		return v.oid == o.oid
	case KindSequence:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(v.members) != len(o.members) {
			return false
		}
		for i := range v.members {
			if v.members[i].Key != o.members[i].Key || !v.members[i].Value.Equal(o.members[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// indexThreshold is the member count past which memberSet keeps a key index.
const indexThreshold = 8

// memberSet accumulates mapping members, last value wins. Small mappings are
// scanned; larger ones get a key index so building stays linear.
type memberSet struct {
	members []Member
	index   map[string]int
}

func (s *memberSet) set(m Member) {
	if s.index != nil {
		if i, ok := s.index[m.Key]; ok {
			s.members[i].Value = m.Value
			return
		}
		s.index[m.Key] = len(s.members)
		s.members = append(s.members, m)
		return
	}

	for i := range s.members {
		if s.members[i].Key == m.Key {
			s.members[i].Value = m.Value
			return
		}
	}
	s.members = append(s.members, m)
	if len(s.members) > indexThreshold {
		s.index = make(map[string]int, 2*len(s.members))
		for i, mm := range s.members {
			s.index[mm.Key] = i
		}
	}
}

// ResolveObjectIDs replaces every {"$oid": "<24 hex>"} mapping under v with an
// ObjectID value. Anything else is kept as is.
func ResolveObjectIDs(v Value) Value {
	switch v.kind {
	case KindMapping:
		if len(v.members) == 1 && v.members[0].Key == "$oid" && v.members[0].Value.kind == KindText {
			if b, err := hex.DecodeString(v.members[0].Value.s); err == nil && len(b) == 12 {
				var id [12]byte
				copy(id[:], b)
				return ObjectID(id)
			}
		}
		members := make([]Member, len(v.members))
		for i, m := range v.members {
			members[i] = Member{Key: m.Key, Value: ResolveObjectIDs(m.Value)}
		}
		return Value{kind: KindMapping, members: members}
	case KindSequence:
		items := make([]Value, len(v.items))
		for i, it := range v.items {
			items[i] = ResolveObjectIDs(it)
		}
		return Value{kind: KindSequence, items: items}
	default:
		return v
	}
}
