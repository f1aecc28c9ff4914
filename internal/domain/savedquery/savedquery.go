// Package savedquery holds curated natural-language to query pairs
// ("premade" queries) offered to users as ready answers.
package savedquery

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/plasmidq/internal/domain"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

// SavedQuery is a premade query (immutable value object).
type SavedQuery struct {
	id              string
	naturalLanguage string
	collection      string
	query           value.Value
	createdAt       int64
	updatedAt       int64
}

// New validates and creates a SavedQuery. All three fields are required and
// queryText must be valid JSON.
func New(naturalLanguage, collection, queryText string) (SavedQuery, error) {
	naturalLanguage = strings.TrimSpace(naturalLanguage)
	collection = strings.TrimSpace(collection)
	if naturalLanguage == "" {
		return SavedQuery{}, fmt.Errorf("%w: natural_language is required", domain.ErrInvalidQuery)
	}
	if collection == "" {
		return SavedQuery{}, fmt.Errorf("%w: collection is required", domain.ErrInvalidQuery)
	}
	if strings.TrimSpace(queryText) == "" {
		return SavedQuery{}, fmt.Errorf("%w: json_query is required", domain.ErrInvalidQuery)
	}
	q, err := value.Parse([]byte(queryText))
	if err != nil {
		return SavedQuery{}, fmt.Errorf("%w: json_query: %w", domain.ErrInvalidQuery, err)
	}
	return SavedQuery{naturalLanguage: naturalLanguage, collection: collection, query: q}, nil
}

// Reconstruct restores a SavedQuery from storage without validation.
func Reconstruct(id, naturalLanguage, collection string, q value.Value, createdAt, updatedAt int64) SavedQuery {
	return SavedQuery{
		id:              id,
		naturalLanguage: naturalLanguage,
		collection:      collection,
		query:           q,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ID returns the storage id (ObjectId hex), empty before the first save.
func (s SavedQuery) ID() string { return s.id }

// NaturalLanguage returns the question text (the upsert key).
func (s SavedQuery) NaturalLanguage() string { return s.naturalLanguage }

// Collection returns the target collection.
func (s SavedQuery) Collection() string { return s.collection }

// Query returns the stored query.
func (s SavedQuery) Query() value.Value { return s.query }

// CreatedAt returns the creation timestamp (unix millis).
func (s SavedQuery) CreatedAt() int64 { return s.createdAt }

// UpdatedAt returns the last update timestamp (unix millis).
func (s SavedQuery) UpdatedAt() int64 { return s.updatedAt }

// Summary truncates the question for display. maxLen <= 0 keeps it whole.
func (s SavedQuery) Summary(maxLen int) string {
	r := []rune(s.naturalLanguage)
	if maxLen <= 0 || len(r) <= maxLen {
		return s.naturalLanguage
	}
	return string(r[:maxLen])
}
