package savedquery

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/plasmidq/internal/domain"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

func TestNew_Valid(t *testing.T) {
	s, err := New("  Which hosts are Escherichia? ", " hosts ", `[{"$match": {"genus": "Escherichia"}}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.NaturalLanguage() != "Which hosts are Escherichia?" {
		t.Errorf("NaturalLanguage() = %q", s.NaturalLanguage())
	}
	if s.Collection() != "hosts" {
		t.Errorf("Collection() = %q", s.Collection())
	}
	if s.Query().Kind() != value.KindSequence {
		t.Errorf("Query() kind = %s", s.Query().Kind())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name, nl, col, q string
	}{
		{"no question", " ", "genes", `[]`},
		{"no collection", "q", "", `[]`},
		{"no query", "q", "genes", "  "},
		{"bad json", "q", "genes", `[{"$match": }]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.nl, tc.col, tc.q)
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Errorf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	s := Reconstruct("654f1a2b3c4d5e6f708192a3", strings.Repeat("é", 12), "genes", value.Sequence(), 1, 2)
	if got := s.Summary(10); got != strings.Repeat("é", 10) {
		t.Errorf("Summary(10) = %q", got)
	}
	if got := s.Summary(12); got != strings.Repeat("é", 12) {
		t.Errorf("Summary(12) = %q", got)
	}
	if got := s.Summary(0); got != strings.Repeat("é", 12) {
		t.Errorf("Summary(0) = %q", got)
	}
	if s.ID() != "654f1a2b3c4d5e6f708192a3" {
		t.Errorf("ID() = %q", s.ID())
	}
	if s.CreatedAt() != 1 || s.UpdatedAt() != 2 {
		t.Error("timestamps not restored")
	}
}
