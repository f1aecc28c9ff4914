package synthesis

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/plasmidq/internal/domain"
	"github.com/kailas-cloud/plasmidq/internal/domain/example"
	"github.com/kailas-cloud/plasmidq/internal/domain/query"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

func mustParseValue(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.Parse([]byte(s))
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func fenced(body string) string {
	return "```json\n" + body + "\n```"
}

func TestParse_RoundTripBuiltinExamples(t *testing.T) {
	for i, ex := range example.Builtin().Examples() {
		col, _ := ex.Output.Get("collection")
		pipeline, _ := ex.Output.Get("pipeline")
		want := query.Validated{Collection: col.Text(), Pipeline: pipeline.Items()}

		for _, reply := range []string{
			fenced(value.Indent(ex.Output, "    ")),
			fenced(value.Compact(ex.Output)),
			"Here you go:\n" + fenced(value.Indent(ex.Output, "  ")) + "\nThanks",
		} {
			got, err := Parse(reply)
			if err != nil {
				t.Fatalf("example %d: unexpected error: %v", i, err)
			}
			assertQueryEqual(t, got, want)
		}
	}
}

func TestParse_RepairsModelArtifacts(t *testing.T) {
	reply := "```json\n" +
		"{\n" +
		"  \"collection\": \"genes\",\n" +
		"  \"pipeline\": [\n" +
		"    {\"$match\": {\"product\": /ctx-m-15/iz}}, // filter by product\n" +
		"    {\"$project\": {\"_id\": 0, \"gene_name\": 1,}},\n" +
		"  ]\n" +
		"}\n" +
		"```"

	got, err := Parse(reply)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := mustParseValue(t, `[
		{"$match": {"product": {"$regex": "ctx-m-15", "$options": "i"}}},
		{"$project": {"_id": 0, "gene_name": 1}}
	]`)
	assertQueryEqual(t, got, query.Validated{Collection: "genes", Pipeline: want.Items()})
}

func TestValidate_FlattensOneLevel(t *testing.T) {
	got, err := Validate(`{"collection": "genes", "pipeline": [[{"$match": {}}]]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.Compact(got.PipelineValue()) != `[{"$match":{}}]` {
		t.Errorf("pipeline = %s", value.Compact(got.PipelineValue()))
	}

	got, err = Validate(`{"collection": "genes", "pipeline": [[{"$match": {}}], [{"$limit": 3}, {"$skip": 1}]]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.Compact(got.PipelineValue()) != `[{"$match":{}},{"$limit":3},{"$skip":1}]` {
		t.Errorf("pipeline = %s", value.Compact(got.PipelineValue()))
	}
}

func TestValidate_TwoWrapLevelsRejected(t *testing.T) {
	_, err := Validate(`{"collection": "genes", "pipeline": [[[{"$match": {}}]]]}`)
	var stageErr *domain.InvalidStageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected InvalidStageError, got %v", err)
	}
	if stageErr.Index != 0 {
		t.Errorf("Index = %d, want 0", stageErr.Index)
	}
}

func TestValidate_NormalizesKeys(t *testing.T) {
	got, err := Validate(`{"collection": "genes", "pipeline": [
		{" \"$match\" ": {" 'gene_name' ": " \"blaTEM\" "}},
		{"$project": {"\tresistance_info\n": 1}}
	]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := mustParseValue(t, `[
		{"$match": {"gene_name": " \"blaTEM\" "}},
		{"$project": {"resistance_info": 1}}
	]`)
	if !got.PipelineValue().Equal(want) {
		t.Errorf("pipeline = %s, want %s", value.Compact(got.PipelineValue()), value.Compact(want))
	}
}

func TestValidate_NormalizesKeysInsideLists(t *testing.T) {
	got, err := Validate(`{"collection": "plasmids", "pipeline": [
		{"$match": {"$and": [{" replicon_type ": "IncQ"}, {"'mobility'": "mobilizable"}]}}
	]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `[{"$match":{"$and":[{"replicon_type":"IncQ"},{"mobility":"mobilizable"}]}}]`
	if value.Compact(got.PipelineValue()) != want {
		t.Errorf("pipeline = %s", value.Compact(got.PipelineValue()))
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		sentinel error
		field    string
		index    int
	}{
		{"not json", `{"collection": genes}`, domain.ErrMalformedSyntax, "", 0},
		{"empty", ``, domain.ErrMalformedSyntax, "", 0},
		{"prose", `I'm sorry, I can't do that.`, domain.ErrMalformedSyntax, "", 0},
		{"two objects", `{"collection": "genes", "pipeline": []} {}`, domain.ErrMalformedSyntax, "", 0},
		{"too deep", `{"collection": "genes", "pipeline": [` + strings.Repeat("[", 200) + strings.Repeat("]", 200) + `]}`, domain.ErrMalformedSyntax, "", 0},
		{"missing pipeline", `{"collection": "genes"}`, domain.ErrMissingField, "pipeline", 0},
		{"pipeline is object", `{"collection": "genes", "pipeline": {"$match": {}}}`, domain.ErrMissingField, "pipeline", 0},
		{"pipeline is null", `{"collection": "genes", "pipeline": null}`, domain.ErrMissingField, "pipeline", 0},
		{"missing collection", `{"pipeline": []}`, domain.ErrMissingField, "collection", 0},
		{"collection not text", `{"collection": 7, "pipeline": []}`, domain.ErrMissingField, "collection", 0},
		{"collection empty", `{"collection": "", "pipeline": []}`, domain.ErrMissingField, "collection", 0},
		{"both missing reports collection", `{}`, domain.ErrMissingField, "collection", 0},
		{"top level list", `[{"$match": {}}]`, domain.ErrMissingField, "collection", 0},
		{"scalar stage", `{"collection": "genes", "pipeline": [{"$match": {}}, "$limit"]}`, domain.ErrInvalidStage, "", 1},
		{"null stage", `{"collection": "genes", "pipeline": [null]}`, domain.ErrInvalidStage, "", 0},
		{"list stage after object", `{"collection": "genes", "pipeline": [{"$match": {}}, [{"$limit": 1}]]}`, domain.ErrInvalidStage, "", 1},
		{"object after wrapped list", `{"collection": "genes", "pipeline": [[{"$match": {}}], {"$limit": 1}]}`, domain.ErrInvalidStage, "", 1},
		{"scalar after wrapped lists", `{"collection": "genes", "pipeline": [[{"$match": {}}], [{"$limit": 1}], 3]}`, domain.ErrInvalidStage, "", 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(tc.text)
			if !errors.Is(err, tc.sentinel) {
				t.Fatalf("expected %v, got %v", tc.sentinel, err)
			}
			var mf *domain.MissingFieldError
			if errors.As(err, &mf) && mf.Field != tc.field {
				t.Errorf("Field = %q, want %q", mf.Field, tc.field)
			}
			var is *domain.InvalidStageError
			if errors.As(err, &is) && is.Index != tc.index {
				t.Errorf("Index = %d, want %d", is.Index, tc.index)
			}
		})
	}
}

func TestValidate_AcceptsEmptyPipelineAndDropsExtraKeys(t *testing.T) {
	got, err := Validate(`{"collection": "hosts", "pipeline": [], "explanation": "all hosts"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Collection != "hosts" || len(got.Pipeline) != 0 {
		t.Errorf("got %+v", got)
	}
	if got.Value().Has("explanation") {
		t.Error("extra keys must not survive validation")
	}
}

func TestValidate_PreservesStageOrderAndValues(t *testing.T) {
	text := `{"collection": "genes", "pipeline": [{"$group": {"_id": "$resistance_info.gene_name", "count": {"$sum": 1}}}, {"$sort": {"count": -1, "_id": 1}}, {"$limit": 10}]}`
	got, err := Validate(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Value().Equal(mustParseValue(t, text)) == false {
		t.Errorf("validated query differs from input: %s", value.Compact(got.Value()))
	}
}

func assertQueryEqual(t *testing.T, got, want query.Validated) {
	t.Helper()
	if got.Collection != want.Collection {
		t.Errorf("Collection = %q, want %q", got.Collection, want.Collection)
	}
	if !got.PipelineValue().Equal(want.PipelineValue()) {
		t.Errorf("Pipeline\ngot:  %s\nwant: %s", value.Compact(got.PipelineValue()), value.Compact(want.PipelineValue()))
	}
}

func TestParse_RegexLookAlikeInsideString(t *testing.T) {
	reply := fenced(`{"collection": "genes", "pipeline": [{"$match": {"note": "a\": /x/i"}}]}`)

	got, err := Parse(reply)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := mustParseValue(t, `{"$match": {"note": "a\": /x/i"}}`)
	if len(got.Pipeline) != 1 || !got.Pipeline[0].Equal(want) {
		t.Errorf("pipeline = %s", value.Compact(value.Sequence(got.Pipeline...)))
	}
}
