package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxDepth bounds container nesting accepted by Parse.
const DefaultMaxDepth = 64

var (
	// ErrTooDeep signals nesting beyond the parse depth limit.
	ErrTooDeep = errors.New("value: nesting exceeds depth limit")
	// ErrTrailingData signals content after the first complete value.
	ErrTrailingData = errors.New("value: unexpected trailing data")
)

// Parse decodes exactly one strict JSON value with DefaultMaxDepth.
func Parse(data []byte) (Value, error) {
	return ParseDepth(data, DefaultMaxDepth)
}

// ParseDepth decodes exactly one strict JSON value, rejecting input whose
// objects and arrays nest deeper than maxDepth.
func ParseDepth(data []byte, maxDepth int) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}
	v, err := decode(dec, tok, 0, maxDepth)
	if err != nil {
		return Value{}, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return Value{}, err
		}
		return Value{}, fmt.Errorf("%w at offset %d", ErrTrailingData, dec.InputOffset())
	}
	return v, nil
}

func decode(dec *json.Decoder, tok json.Token, depth, maxDepth int) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t.String()), nil
	case string:
		return Text(t), nil
	case json.Delim:
		if depth >= maxDepth {
			return Value{}, fmt.Errorf("%w (%d)", ErrTooDeep, maxDepth)
		}
		switch t {
		case '{':
			return decodeObject(dec, depth+1, maxDepth)
		case '[':
			return decodeArray(dec, depth+1, maxDepth)
		}
	}
	return Value{}, fmt.Errorf("value: unexpected token %v at offset %d", tok, dec.InputOffset())
}

func decodeObject(dec *json.Decoder, depth, maxDepth int) (Value, error) {
	ms := memberSet{members: []Member{}}
	for {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, unexpectedEOF(err)
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return Value{kind: KindMapping, members: ms.members}, nil
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("value: object key must be a string at offset %d", dec.InputOffset())
		}
		tok, err = dec.Token()
		if err != nil {
			return Value{}, unexpectedEOF(err)
		}
		v, err := decode(dec, tok, depth, maxDepth)
		if err != nil {
			return Value{}, err
		}
		ms.set(Member{Key: key, Value: v})
	}
}

func decodeArray(dec *json.Decoder, depth, maxDepth int) (Value, error) {
	items := []Value{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, unexpectedEOF(err)
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			return Value{kind: KindSequence, items: items}, nil
		}
		v, err := decode(dec, tok, depth, maxDepth)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
