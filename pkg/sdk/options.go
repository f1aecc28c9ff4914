package plasmidq

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	collections []Collection
	exampleFile string
	completer   Completer

	maxFieldLength int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCatalog replaces the built-in plasmid database catalog.
func WithCatalog(collections ...Collection) Option {
	return optionFunc(func(c *clientConfig) {
		c.collections = collections
	})
}

// WithExampleFile appends the few-shot examples of a JSON file
// (a list of {"input", "output"} records) to the built-in corpus.
// A missing file is ignored; a malformed one fails New with ErrConfiguration.
func WithExampleFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.exampleFile = path
	})
}

// WithCompleter sets the language model used by Synthesize.
func WithCompleter(cm Completer) Option {
	return optionFunc(func(c *clientConfig) {
		c.completer = cm
	})
}

// WithMaxFieldLength caps each projected value, in runes. Default: 100.
// Zero or less disables truncation.
func WithMaxFieldLength(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxFieldLength = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
