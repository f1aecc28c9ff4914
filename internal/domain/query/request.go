package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/plasmidq/internal/domain"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

// MongoDB allows more, but nothing in the plasmid database needs it and
// "$" or system.* names must never reach the driver.
var collectionRegex = regexp.MustCompile(`^[a-zA-Z0-9_-][a-zA-Z0-9_.-]*$`)

// Mode selects how a request is run.
type Mode string

const (
	// ModeAggregate runs a pipeline (a Sequence of stages).
	ModeAggregate Mode = "aggregate"
	// ModeFind runs a filter document (a Mapping).
	ModeFind Mode = "find"
)

// Request is a query ready for execution: either a synthesized pipeline or a
// hand-written filter.
type Request struct {
	collection string
	query      value.Value
}

func validateCollection(name string) error {
	if name == "" {
		return fmt.Errorf("collection is required")
	}
	if len(name) > 120 {
		return fmt.Errorf("collection name too long (max 120)")
	}
	if strings.HasPrefix(name, "system.") || !collectionRegex.MatchString(name) {
		return fmt.Errorf("invalid collection name %q", name)
	}
	return nil
}

// NewRequest validates a request. q must be a Sequence of mappings or a Mapping.
func NewRequest(collection string, q value.Value) (Request, error) {
	collection = strings.TrimSpace(collection)
	if err := validateCollection(collection); err != nil {
		return Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	switch q.Kind() {
	case value.KindMapping:
	case value.KindSequence:
		for i, st := range q.Items() {
			if st.Kind() != value.KindMapping {
				return Request{}, fmt.Errorf("%w: stage %d is not an object", domain.ErrInvalidQuery, i)
			}
		}
	default:
		return Request{}, fmt.Errorf("%w: query must be a pipeline array or a filter object, got %s",
			domain.ErrInvalidQuery, q.Kind())
	}

	return Request{collection: collection, query: q}, nil
}

// ParseRequest parses query text and validates it. Text goes through the
// same depth-capped parser as model replies.
func ParseRequest(collection, text string) (Request, error) {
	v, err := value.Parse([]byte(text))
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return NewRequest(collection, v)
}

// FromValidated turns a synthesized query into a request.
func FromValidated(q Validated) Request {
	return Request{collection: q.Collection, query: q.PipelineValue()}
}

// Collection returns the target collection.
func (r Request) Collection() string { return r.collection }

// Query returns the pipeline or filter.
func (r Request) Query() value.Value { return r.query }

// Mode reports whether the request is a pipeline or a filter.
func (r Request) Mode() Mode {
	if r.query.Kind() == value.KindSequence {
		return ModeAggregate
	}
	return ModeFind
}
