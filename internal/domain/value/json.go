package value

import (
	"encoding/json"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// MarshalJSON implements json.Marshaler, preserving mapping order.
// ObjectIDs are written in extended JSON form {"$oid": "<hex>"}.
func (v Value) MarshalJSON() ([]byte, error) {
	return appendJSON(nil, v, "", "", 0), nil
}

// Compact renders v as single-line JSON without HTML escaping.
func Compact(v Value) string {
	return string(appendJSON(nil, v, "", "", 0))
}

// Indent renders v as multi-line JSON with the given indent unit.
func Indent(v Value, indent string) string {
	return string(appendJSON(nil, v, indent, ": ", 0))
}

// QuoteString renders s as a JSON string literal.
func QuoteString(s string) string {
	return string(appendString(nil, s))
}

// UnmarshalJSON implements json.Unmarshaler using Parse.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

var _ json.Marshaler = Value{}

func appendJSON(buf []byte, v Value, indent, colon string, level int) []byte {
	if colon == "" {
		colon = ":"
	}
	switch v.kind {
	case KindNull:
		return append(buf, "null"...)
	case KindBool:
		if v.b {
			return append(buf, "true"...)
		}
		return append(buf, "false"...)
	case KindNumber:
		return append(buf, v.s...)
	case KindText:
		return appendString(buf, v.s)
	case KindObjectID:
		buf = append(buf, '{')
		buf = appendString(buf, "$oid")
		buf = append(buf, colon...)
		return append(appendString(buf, v.ObjectIDHex()), '}')
	case KindSequence:
		if len(v.items) == 0 {
			return append(buf, "[]"...)
		}
		buf = append(buf, '[')
		for i, item := range v.items {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = newline(buf, indent, level+1)
			buf = appendJSON(buf, item, indent, colon, level+1)
		}
		buf = newline(buf, indent, level)
		return append(buf, ']')
	case KindMapping:
		if len(v.members) == 0 {
			return append(buf, "{}"...)
		}
		buf = append(buf, '{')
		for i, m := range v.members {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = newline(buf, indent, level+1)
			buf = appendString(buf, m.Key)
			buf = append(buf, colon...)
			buf = appendJSON(buf, m.Value, indent, colon, level+1)
		}
		buf = newline(buf, indent, level)
		return append(buf, '}')
	}
	return append(buf, "null"...)
}

func newline(buf []byte, indent string, level int) []byte {
	if indent == "" {
		return buf
	}
	buf = append(buf, '\n')
	for i := 0; i < level; i++ {
		buf = append(buf, indent...)
	}
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch {
			case c == '"' || c == '\\':
				buf = append(buf, '\\', c)
			case c == '\n':
				buf = append(buf, '\\', 'n')
			case c == '\r':
				buf = append(buf, '\\', 'r')
			case c == '\t':
				buf = append(buf, '\\', 't')
			case c < 0x20:
				buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
			default:
				buf = append(buf, c)
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			buf = append(buf, `\ufffd`...)
		case r == '\u2028' || r == '\u2029':
			buf = append(buf, '\\', 'u', '2', '0', '2', hexDigits[r&0xF])
		default:
			buf = append(buf, s[i:i+size]...)
		}
		i += size
	}
	return append(buf, '"')
}
