package schema

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

const indentUnit = "    "

// Render lists every collection and its fields with declared types, nested
// members indented under their parent.
func (c Catalog) Render() string {
	var b strings.Builder
	b.WriteString("Collections and Their Fields:\n")
	for i, col := range c.collections {
		fmt.Fprintf(&b, "\n%d. **%s**\n", i+1, col.Name)
		for _, f := range col.Fields {
			b.WriteString(strings.Repeat(indentUnit, f.Depth()+1))
			if f.Type == Object && !f.Array {
				fmt.Fprintf(&b, "- `%s`:\n", f.Name())
				continue
			}
			fmt.Fprintf(&b, "- `%s`: %s", f.Name(), f.TypeLabel())
			if f.Hint != "" {
				fmt.Fprintf(&b, "  **%s**", f.Hint)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Describe lists every field with its human-readable description.
func (c Catalog) Describe() string {
	var b strings.Builder
	b.WriteString("Please only use the fields specified here using their exact names\n\n")
	b.WriteString("Detailed Descriptions of Collections and Their Fields:\n")
	for i, col := range c.collections {
		fmt.Fprintf(&b, "\n%d. **%s**\n", i+1, col.Name)
		for _, f := range col.Fields {
			b.WriteString(strings.Repeat(indentUnit, f.Depth()+1))
			fmt.Fprintf(&b, "- `%s`: %s\n", f.Name(), f.Description)
		}
	}
	return b.String()
}

// Tree returns the catalog as a nested mapping collection -> field -> type label,
// arrays rendered as a one-element list of the element type.
func (c Catalog) Tree() value.Value {
	cols := make([]value.Member, 0, len(c.collections))
	for _, col := range c.collections {
		cols = append(cols, value.Member{Key: col.Name, Value: fieldTree(col.Fields, "")})
	}
	return value.Mapping(cols...)
}

func fieldTree(fields []Field, prefix string) value.Value {
	var members []value.Member
	for _, f := range fields {
		if !strings.HasPrefix(f.Path, prefix) {
			continue
		}
		rest := f.Path[len(prefix):]
		if strings.Contains(rest, ".") {
			continue
		}
		var v value.Value
		switch {
		case f.Type == Object:
			v = fieldTree(fields, f.Path+".")
		default:
			v = value.Text(string(f.Type))
		}
		if f.Array {
			v = value.Sequence(v)
		}
		members = append(members, value.Member{Key: rest, Value: v})
	}
	return value.Mapping(members...)
}
