package synthesis

import "github.com/kailas-cloud/plasmidq/internal/domain/query"

// Parse runs the full reply chain: Extract, Sanitize, NormalizeRegexLiterals,
// Validate. Every failure is a typed error from the domain package.
func Parse(reply string) (query.Validated, error) {
	text := Extract(reply)
	text = Sanitize(text)
	text = NormalizeRegexLiterals(text)
	return Validate(text)
}
