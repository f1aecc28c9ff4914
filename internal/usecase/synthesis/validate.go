package synthesis

import (
	"strings"

	"github.com/kailas-cloud/plasmidq/internal/domain"
	"github.com/kailas-cloud/plasmidq/internal/domain/query"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

// Validate parses sanitized text and enforces the query shape contract:
//
//	parse          → *domain.MalformedSyntaxError
//	shape check    → *domain.MissingFieldError ("collection" first, then "pipeline")
//	flatten        one level, only when pipeline[0] is itself a list;
//	               → *domain.InvalidStageError for a non-list beside it
//	normalize keys strip whitespace, then '"', then '\'' around every key
//	stage check    → *domain.InvalidStageError for the first non-object stage
//
// Field names are never checked against the catalog. Top-level keys other than
// collection and pipeline are dropped.
func Validate(text string) (query.Validated, error) {
	root, err := value.Parse([]byte(text))
	if err != nil {
		return query.Validated{}, &domain.MalformedSyntaxError{Err: err}
	}

	collection, pipeline, err := checkShape(root)
	if err != nil {
		return query.Validated{}, err
	}

	stages, err := flattenOnce(pipeline.Items())
	if err != nil {
		return query.Validated{}, err
	}

	out := make([]value.Value, len(stages))
	for i, st := range stages {
		st = normalizeKeys(st)
		if st.Kind() != value.KindMapping {
			return query.Validated{}, &domain.InvalidStageError{Index: i}
		}
		out[i] = st
	}

	return query.Validated{Collection: collection, Pipeline: out}, nil
}

func checkShape(root value.Value) (string, value.Value, error) {
	col, ok := root.Get("collection")
	if root.Kind() != value.KindMapping || !ok || col.Kind() != value.KindText || col.Text() == "" {
		return "", value.Value{}, &domain.MissingFieldError{Field: "collection"}
	}
	pipeline, ok := root.Get("pipeline")
	if !ok || pipeline.Kind() != value.KindSequence {
		return "", value.Value{}, &domain.MissingFieldError{Field: "pipeline"}
	}
	return col.Text(), pipeline, nil
}

// flattenOnce replaces [[a, b], [c]] with [a, b, c] when the first element is a
// list. Deeper nesting is left for the stage check to reject. Once the
// pipeline is wrapped every element must be a list; the first one that is not
// yields an InvalidStageError indexed by its position in the outer list.
func flattenOnce(stages []value.Value) ([]value.Value, error) {
	if len(stages) == 0 || stages[0].Kind() != value.KindSequence {
		return stages, nil
	}
	var out []value.Value
	for i, st := range stages {
		if st.Kind() != value.KindSequence {
			return nil, &domain.InvalidStageError{Index: i}
		}
		out = append(out, st.Items()...)
	}
	return out, nil
}

// normalizeKeys rewrites every mapping key under v, recursively. Values are
// only walked, never altered.
func normalizeKeys(v value.Value) value.Value {
	switch v.Kind() {
	case value.KindMapping:
		members := make([]value.Member, len(v.Members()))
		for i, m := range v.Members() {
			members[i] = value.Member{Key: cleanKey(m.Key), Value: normalizeKeys(m.Value)}
		}
		return value.Mapping(members...)
	case value.KindSequence:
		items := make([]value.Value, len(v.Items()))
		for i, it := range v.Items() {
			items[i] = normalizeKeys(it)
		}
		return value.Sequence(items...)
	default:
		return v
	}
}

func cleanKey(k string) string {
	k = strings.TrimSpace(k)
	k = strings.Trim(k, `"`)
	return strings.Trim(k, `'`)
}
