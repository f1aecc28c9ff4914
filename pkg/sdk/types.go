package plasmidq

import "encoding/json"

// FieldType is the declared store type of a catalog field.
type FieldType string

// Field type constants.
const (
	FieldObjectID FieldType = "ObjectId"
	FieldString   FieldType = "String"
	FieldInt32    FieldType = "Int32"
	FieldDouble   FieldType = "Double"
	FieldBoolean  FieldType = "Boolean"
	FieldObject   FieldType = "Object"
)

// Field declares one catalog field. Path uses dot notation for nested members;
// a nested field must follow its Object parent.
type Field struct {
	Path        string
	Type        FieldType
	Array       bool
	Description string
	Hint        string
}

// Collection declares one collection of the catalog.
type Collection struct {
	Name   string
	Fields []Field
}

// Query is a validated query ready to run.
type Query struct {
	Collection string
	// Pipeline is the stage list as compact JSON. ObjectIds use {"$oid": "..."}.
	Pipeline json.RawMessage
	// JSON is {"collection", "pipeline"} indented for display.
	JSON string
}

// Cell is one projected column value.
type Cell struct {
	Key   string
	Value string
}

// Row is one projected document: dotted column keys in first-seen order.
type Row []Cell

// Get returns the value of key.
func (r Row) Get(key string) (string, bool) {
	for _, c := range r {
		if c.Key == key {
			return c.Value, true
		}
	}
	return "", false
}
