package plasmidq

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/plasmidq/internal/domain/example"
	"github.com/kailas-cloud/plasmidq/internal/domain/query"
	"github.com/kailas-cloud/plasmidq/internal/domain/schema"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
	"github.com/kailas-cloud/plasmidq/internal/usecase/projection"
	synthesisuc "github.com/kailas-cloud/plasmidq/internal/usecase/synthesis"
)

const defaultMaxFieldLength = 100

// Client is the plasmidq SDK entry point. It is safe for concurrent use.
type Client struct {
	prompts        *synthesisuc.PromptBuilder
	synth          *synthesisuc.Service // nil without a completer
	maxFieldLength int
	obs            *observer
}

// New creates a Client. The catalog and example corpus are validated here;
// errors wrap ErrConfiguration.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{maxFieldLength: defaultMaxFieldLength}
	for _, o := range opts {
		o.apply(cfg)
	}

	catalog := schema.DefaultCatalog()
	if len(cfg.collections) > 0 {
		var err error
		catalog, err = schema.NewCatalog(collectionsToDomain(cfg.collections)...)
		if err != nil {
			return nil, fmt.Errorf("plasmidq: catalog: %w", err)
		}
	}

	corpus, err := example.LoadCorpus(cfg.exampleFile)
	if err != nil {
		return nil, fmt.Errorf("plasmidq: examples: %w", err)
	}

	prompts, err := synthesisuc.NewPromptBuilder(catalog, corpus)
	if err != nil {
		return nil, fmt.Errorf("plasmidq: prompt: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := &Client{prompts: prompts, maxFieldLength: cfg.maxFieldLength, obs: obs}
	if cfg.completer != nil {
		// The SDK logs through slog; the service's zap logger stays silent.
		c.synth = synthesisuc.New(prompts, &completerAdapter{inner: cfg.completer}, zap.NewNop())
	}
	return c, nil
}

// Prompt returns the full model prompt for question.
func (c *Client) Prompt(question string) string {
	return c.prompts.Build(question)
}

// ParseReply extracts and validates the query in a raw model reply.
func (c *Client) ParseReply(reply string) (q Query, err error) {
	start := time.Now()
	defer func() { c.obs.observe("parse_reply", start, err) }()

	v, err := synthesisuc.Parse(reply)
	if err != nil {
		return Query{}, fmt.Errorf("parse reply: %w", err)
	}
	return queryFromDomain(v), nil
}

// Synthesize prompts the configured Completer with question and validates its reply.
func (c *Client) Synthesize(ctx context.Context, question string) (q Query, err error) {
	start := time.Now()
	defer func() { c.obs.observe("synthesize", start, err) }()

	if c.synth == nil {
		return Query{}, ErrNoCompleter
	}
	res, err := c.synth.Synthesize(ctx, question)
	if err != nil {
		return Query{}, fmt.Errorf("synthesize: %w", err)
	}
	return queryFromDomain(res.Query), nil
}

// Project flattens JSON documents into display rows. Nested objects become
// dotted columns, lists are joined, and every value is capped at the
// configured field length. ObjectIds may be given as {"$oid": "<hex>"}.
func (c *Client) Project(docs [][]byte) (rows []Row, err error) {
	start := time.Now()
	defer func() { c.obs.observe("project", start, err) }()

	rows = make([]Row, len(docs))
	for i, d := range docs {
		v, err := value.Parse(d)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		rows[i] = rowFromDomain(projection.Project(value.ResolveObjectIDs(v), c.maxFieldLength))
	}
	c.obs.projected(len(rows))
	return rows, nil
}

// Table shapes rows for tabular output: the header is the key set of the
// first row, and later rows fill missing columns with "".
func Table(rows []Row) (header []string, records [][]string) {
	dom := make([]projection.Row, len(rows))
	for i, r := range rows {
		pr := make(projection.Row, len(r))
		for j, cell := range r {
			pr[j] = projection.Cell{Key: cell.Key, Value: cell.Value}
		}
		dom[i] = pr
	}
	return projection.Table(dom)
}

func queryFromDomain(v query.Validated) Query {
	return Query{
		Collection: v.Collection,
		Pipeline:   []byte(value.Compact(v.PipelineValue())),
		JSON:       value.Indent(v.Value(), "    "),
	}
}

func rowFromDomain(r projection.Row) Row {
	out := make(Row, len(r))
	for i, c := range r {
		out[i] = Cell{Key: c.Key, Value: c.Value}
	}
	return out
}

func collectionsToDomain(cols []Collection) []schema.Collection {
	out := make([]schema.Collection, len(cols))
	for i, c := range cols {
		fields := make([]schema.Field, len(c.Fields))
		for j, f := range c.Fields {
			fields[j] = schema.Field{
				Path:        f.Path,
				Type:        schema.Type(f.Type),
				Array:       f.Array,
				Description: f.Description,
				Hint:        f.Hint,
			}
		}
		out[i] = schema.Collection{Name: c.Name, Fields: fields}
	}
	return out
}
