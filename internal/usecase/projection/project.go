// Package projection flattens nested result documents into rows of bounded
// display strings.
package projection

import (
	"strings"

	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

// Separator joins a parent key to a child key.
const Separator = "."

// ListSeparator joins the rendered elements of a list.
const ListSeparator = ", "

// ValueColumn names the single column of a document that is not a mapping.
const ValueColumn = "value"

// Cell is one column of a row.
type Cell struct {
	Key   string
	Value string
}

// Row is a flat document: dotted key to display string, in document order.
type Row []Cell

// Get returns the value stored under key.
func (r Row) Get(key string) (string, bool) {
	for _, c := range r {
		if c.Key == key {
			return c.Value, true
		}
	}
	return "", false
}

// Keys returns the column keys in order.
func (r Row) Keys() []string {
	keys := make([]string, len(r))
	for i, c := range r {
		keys[i] = c.Key
	}
	return keys
}

// Map returns the row as a map, losing order.
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r))
	for _, c := range r {
		m[c.Key] = c.Value
	}
	return m
}

// indexThreshold is the cell count past which rowBuilder keeps a key index.
const indexThreshold = 8

// rowBuilder collects cells; a repeated dotted key keeps its first position and
// takes the last value.
type rowBuilder struct {
	row   Row
	index map[string]int
}

func (b *rowBuilder) set(key, val string) {
	if b.index != nil {
		if i, ok := b.index[key]; ok {
			b.row[i].Value = val
			return
		}
		b.index[key] = len(b.row)
		b.row = append(b.row, Cell{Key: key, Value: val})
		return
	}

	for i := range b.row {
		if b.row[i].Key == key {
			b.row[i].Value = val
			return
		}
	}
	b.row = append(b.row, Cell{Key: key, Value: val})
	if len(b.row) > indexThreshold {
		b.index = make(map[string]int, 2*len(b.row))
		for i, c := range b.row {
			b.index[c.Key] = i
		}
	}
}

// Project flattens doc into a row. Nested mappings become dotted keys; a list
// becomes one string of its rendered elements joined by ", ", where a mapping
// element is flattened and written as compact JSON. Object ids are written as
// hex. Every string is cut to maxLen characters (runes), with no marker;
// maxLen <= 0 disables truncation. Project never fails.
func Project(doc value.Value, maxLen int) Row {
	if doc.Kind() != value.KindMapping {
		return Row{{Key: ValueColumn, Value: render(doc, maxLen)}}
	}
	var b rowBuilder
	b.flatten(doc, "", maxLen)
	return b.row
}

// ProjectAll projects each document, preserving order.
func ProjectAll(docs []value.Value, maxLen int) []Row {
	rows := make([]Row, len(docs))
	for i, d := range docs {
		rows[i] = Project(d, maxLen)
	}
	return rows
}

func (b *rowBuilder) flatten(m value.Value, prefix string, maxLen int) {
	for _, member := range m.Members() {
		key := member.Key
		if prefix != "" {
			key = prefix + Separator + member.Key
		}
		if member.Value.Kind() == value.KindMapping {
			b.flatten(member.Value, key, maxLen)
			continue
		}
		b.set(key, render(member.Value, maxLen))
	}
}

// render stringifies a non-mapping value.
func render(v value.Value, maxLen int) string {
	switch v.Kind() {
	case value.KindSequence:
		parts := make([]string, len(v.Items()))
		for i, item := range v.Items() {
			parts[i] = renderElement(item, maxLen)
		}
		return truncate(strings.Join(parts, ListSeparator), maxLen)
	default:
		return scalar(v, maxLen)
	}
}

func renderElement(v value.Value, maxLen int) string {
	switch v.Kind() {
	case value.KindMapping:
		return value.Compact(typed(v, maxLen))
	case value.KindSequence:
		return value.Compact(typedSequence(v, maxLen))
	default:
		return scalar(v, maxLen)
	}
}

// typed flattens a mapping element of a list into a mapping of dotted keys
// whose leaves keep their kind: strings stay strings, numbers stay numbers.
func typed(m value.Value, maxLen int) value.Value {
	var members []value.Member
	var walk func(m value.Value, prefix string)
	walk = func(m value.Value, prefix string) {
		for _, member := range m.Members() {
			key := member.Key
			if prefix != "" {
				key = prefix + Separator + member.Key
			}
			switch member.Value.Kind() {
			case value.KindMapping:
				walk(member.Value, key)
			case value.KindSequence:
				members = append(members, value.Member{Key: key, Value: value.Text(render(member.Value, maxLen))})
			default:
				members = append(members, value.Member{Key: key, Value: leaf(member.Value, maxLen)})
			}
		}
	}
	walk(m, "")
	return value.Mapping(members...)
}

func typedSequence(s value.Value, maxLen int) value.Value {
	items := make([]value.Value, len(s.Items()))
	for i, it := range s.Items() {
		switch it.Kind() {
		case value.KindMapping:
			items[i] = typed(it, maxLen)
		case value.KindSequence:
			items[i] = typedSequence(it, maxLen)
		default:
			items[i] = leaf(it, maxLen)
		}
	}
	return value.Sequence(items...)
}

// leaf converts object ids to hex text and truncates text, keeping other kinds.
func leaf(v value.Value, maxLen int) value.Value {
	switch v.Kind() {
	case value.KindObjectID:
		return value.Text(truncate(v.ObjectIDHex(), maxLen))
	case value.KindText:
		return value.Text(truncate(v.Text(), maxLen))
	default:
		return v
	}
}

func scalar(v value.Value, maxLen int) string {
	switch v.Kind() {
	case value.KindNull:
		return ""
	case value.KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case value.KindNumber:
		return truncate(v.NumberLiteral(), maxLen)
	case value.KindObjectID:
		return truncate(v.ObjectIDHex(), maxLen)
	case value.KindText:
		return truncate(v.Text(), maxLen)
	default:
		return truncate(value.Compact(v), maxLen)
	}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
