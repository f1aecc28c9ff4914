// Package plasmidq turns natural-language questions about the plasmid
// database into validated MongoDB aggregation pipelines, and flattens query
// results into display rows.
//
// The SDK is storage-free: it builds prompts, validates model replies and
// projects documents. Running the query is left to the caller.
//
// # Prompt only, bring your own model
//
//	client, _ := plasmidq.New()
//	prompt := client.Prompt("Which plasmids carry blaCTX-M-15?")
//	reply := callYourModel(prompt)
//	q, err := client.ParseReply(reply)
//	if errors.Is(err, plasmidq.ErrMissingField) { ... }
//
// # Full round trip with an OpenAI-compatible endpoint (Ollama, OpenAI)
//
//	client, _ := plasmidq.New(
//	    plasmidq.WithCompleter(plasmidq.NewOpenAICompleter(plasmidq.OpenAIConfig{
//	        BaseURL: "http://localhost:11434/v1",
//	        Model:   "codellama",
//	    })),
//	)
//	q, _ := client.Synthesize(ctx, "Find mobilizable plasmids")
//	rows, _ := client.Project(docs)
package plasmidq
