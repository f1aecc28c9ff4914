// Package example holds the few-shot corpus of question/query pairs used to
// prompt the model, plus the sample queries shown to users.
package example

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kailas-cloud/plasmidq/internal/domain"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

//go:embed builtin.json
var builtinJSON []byte

//go:embed samples.json
var samplesJSON []byte

// Example pairs a natural-language question with its expected query object
// {"collection": ..., "pipeline": [...]}.
type Example struct {
	Input  string
	Output value.Value
}

// Corpus is an ordered, immutable list of examples.
type Corpus struct {
	examples []Example
}

// Builtin returns the built-in corpus.
func Builtin() Corpus {
	c, err := decode(builtinJSON)
	if err != nil {
		// embedded at build time, covered by tests
		panic(fmt.Sprintf("example: builtin corpus: %v", err))
	}
	return c
}

// LoadCorpus returns the built-in corpus followed by the records of the example
// file at path. An empty path or a missing file yields the built-in corpus only;
// a file that exists but is not a list of {input, output} records is a
// configuration error.
func LoadCorpus(path string) (Corpus, error) {
	base := Builtin()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return base, nil
		}
		return Corpus{}, domain.NewConfigurationError(path, err)
	}

	extra, err := decode(data)
	if err != nil {
		return Corpus{}, domain.NewConfigurationError(path, err)
	}

	all := make([]Example, 0, len(base.examples)+len(extra.examples))
	all = append(all, base.examples...)
	all = append(all, extra.examples...)
	return Corpus{examples: all}, nil
}

// NewCorpus builds a corpus from explicit examples, validating each record.
func NewCorpus(examples ...Example) (Corpus, error) {
	out := make([]Example, len(examples))
	for i, e := range examples {
		if err := check(e); err != nil {
			return Corpus{}, fmt.Errorf("example %d: %w", i, err)
		}
		out[i] = e
	}
	return Corpus{examples: out}, nil
}

// Len returns the number of examples.
func (c Corpus) Len() int { return len(c.examples) }

// Examples returns a copy of the examples in order.
func (c Corpus) Examples() []Example {
	out := make([]Example, len(c.examples))
	copy(out, c.examples)
	return out
}

func decode(data []byte) (Corpus, error) {
	root, err := value.Parse(data)
	if err != nil {
		return Corpus{}, fmt.Errorf("parse examples: %w", err)
	}
	if root.Kind() != value.KindSequence {
		return Corpus{}, fmt.Errorf("examples must be a list, got %s", root.Kind())
	}

	examples := make([]Example, 0, root.Len())
	for i, rec := range root.Items() {
		if rec.Kind() != value.KindMapping {
			return Corpus{}, fmt.Errorf("example %d: expected object, got %s", i, rec.Kind())
		}
		input, _ := rec.Get("input")
		output, _ := rec.Get("output")
		e := Example{Input: input.Text(), Output: output}
		if input.Kind() != value.KindText {
			e.Input = ""
		}
		examples = append(examples, e)
	}
	return NewCorpus(examples...)
}

func check(e Example) error {
	if e.Input == "" {
		return errors.New("input must be a non-empty string")
	}
	if e.Output.Kind() != value.KindMapping {
		return errors.New("output must be an object")
	}
	col, _ := e.Output.Get("collection")
	if col.Kind() != value.KindText || col.Text() == "" {
		return errors.New("output.collection must be a non-empty string")
	}
	pipeline, _ := e.Output.Get("pipeline")
	if pipeline.Kind() != value.KindSequence {
		return errors.New("output.pipeline must be a list")
	}
	return nil
}
