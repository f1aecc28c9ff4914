// Package schema describes the collections and fields of the plasmid database.
// The catalog is built once at startup and shared read-only.
package schema

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/plasmidq/internal/domain"
)

// Type is the declared store type of a field.
type Type string

// Field type constants.
const (
	ObjectID Type = "ObjectId"
	String   Type = "String"
	Int32    Type = "Int32"
	Double   Type = "Double"
	Boolean  Type = "Boolean"
	// Object marks an embedded document; its members are declared as dotted children.
	Object Type = "Object"
)

func (t Type) valid() bool {
	switch t {
	case ObjectID, String, Int32, Double, Boolean, Object:
		return true
	}
	return false
}

// Field is a single declared field. Path uses dot notation for nested members.
type Field struct {
	Path        string
	Type        Type
	Array       bool // array of Type
	Description string
	Hint        string // emphasized guidance for the model, rendered next to the type
}

// Name returns the last path segment.
func (f Field) Name() string {
	if i := strings.LastIndexByte(f.Path, '.'); i >= 0 {
		return f.Path[i+1:]
	}
	return f.Path
}

// Depth returns the nesting level (0 for top-level fields).
func (f Field) Depth() int { return strings.Count(f.Path, ".") }

// TypeLabel renders the type the way the prompt presents it, e.g. "Array of Strings".
func (f Field) TypeLabel() string {
	if f.Array {
		return "Array of " + string(f.Type) + "s"
	}
	return string(f.Type)
}

// Collection is a named set of fields.
type Collection struct {
	Name   string
	Fields []Field
}

// Field looks up a field by dotted path.
func (c Collection) Field(path string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Path == path {
			return f, true
		}
	}
	return Field{}, false
}

// Catalog is the ordered, immutable set of collections.
type Catalog struct {
	collections []Collection
}

// NewCatalog validates and builds a catalog. Collection names must be unique and
// non-empty; a nested field must follow its Object parent.
func NewCatalog(collections ...Collection) (Catalog, error) {
	seen := make(map[string]bool, len(collections))
	out := make([]Collection, len(collections))
	for i, c := range collections {
		if c.Name == "" {
			return Catalog{}, domain.NewConfigurationError("schema", fmt.Errorf("collection %d has no name", i))
		}
		if seen[c.Name] {
			return Catalog{}, domain.NewConfigurationError("schema", fmt.Errorf("duplicate collection %q", c.Name))
		}
		seen[c.Name] = true
		if err := validateFields(c); err != nil {
			return Catalog{}, domain.NewConfigurationError("schema", err)
		}
		fields := make([]Field, len(c.Fields))
		copy(fields, c.Fields)
		out[i] = Collection{Name: c.Name, Fields: fields}
	}
	return Catalog{collections: out}, nil
}

func validateFields(c Collection) error {
	declared := make(map[string]Field, len(c.Fields))
	for _, f := range c.Fields {
		if f.Path == "" || strings.HasPrefix(f.Path, ".") || strings.HasSuffix(f.Path, ".") {
			return fmt.Errorf("%s: invalid field path %q", c.Name, f.Path)
		}
		if !f.Type.valid() {
			return fmt.Errorf("%s.%s: unknown type %q", c.Name, f.Path, f.Type)
		}
		if _, dup := declared[f.Path]; dup {
			return fmt.Errorf("%s: duplicate field %q", c.Name, f.Path)
		}
		if i := strings.LastIndexByte(f.Path, '.'); i >= 0 {
			parent, ok := declared[f.Path[:i]]
			if !ok || parent.Type != Object {
				return fmt.Errorf("%s.%s: parent %q must be declared earlier as Object", c.Name, f.Path, f.Path[:i])
			}
		}
		declared[f.Path] = f
	}
	return nil
}

// Collections returns the collections in order.
func (c Catalog) Collections() []Collection {
	out := make([]Collection, len(c.collections))
	copy(out, c.collections)
	return out
}

// Names returns the collection names in order.
func (c Catalog) Names() []string {
	names := make([]string, len(c.collections))
	for i, col := range c.collections {
		names[i] = col.Name
	}
	return names
}

// Collection looks up a collection by name.
func (c Catalog) Collection(name string) (Collection, bool) {
	for _, col := range c.collections {
		if col.Name == name {
			return col, true
		}
	}
	return Collection{}, false
}
