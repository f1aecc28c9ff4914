// Package query holds the validated (collection, pipeline) pair produced by
// query synthesis.
package query

import "github.com/kailas-cloud/plasmidq/internal/domain/value"

// Validated is a query that passed the shape contract: a non-empty collection
// name and a pipeline whose every stage is a mapping.
type Validated struct {
	Collection string
	Pipeline   []value.Value
}

// PipelineValue returns the pipeline as a single Sequence value.
func (q Validated) PipelineValue() value.Value {
	return value.Sequence(q.Pipeline...)
}

// Value returns the query in its wire shape {"collection": ..., "pipeline": [...]}.
func (q Validated) Value() value.Value {
	return value.Mapping(
		value.Member{Key: "collection", Value: value.Text(q.Collection)},
		value.Member{Key: "pipeline", Value: q.PipelineValue()},
	)
}
