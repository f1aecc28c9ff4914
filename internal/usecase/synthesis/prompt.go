package synthesis

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/kailas-cloud/plasmidq/internal/domain"
	"github.com/kailas-cloud/plasmidq/internal/domain/example"
	"github.com/kailas-cloud/plasmidq/internal/domain/schema"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

// promptTemplate receives schema and example text as data, so braces in them
// reach the model verbatim.
var promptTemplate = template.Must(template.New("prompt").Parse(`
You are an expert in crafting NoSQL queries for MongoDB with 10 years of experience.
I will provide you with the table schema and schema description.
You must only invoke fields provided in the table schema.
Your task is to read the user question and create a MongoDB aggregation pipeline accordingly.
It is very important that you dont make up any fields and only use the ones in the schema, such as product, dont invent gene_product or product_id
**It is strictly forbidden to use regex literals like /pattern/flags/. Instead, always use "$regex": "pattern", "$options": "flags".**

**Instructions:**

1. **Identify the Correct Collection:**
   - Determine which collection to query based on the user's natural language question.

2. **Use Exact Field Names:**
   - Ensure all field names match exactly as defined in the schema. Do not invent or alter field names. Field names are case-sensitive.

3. **Proper JSON Syntax:**
   - All field names and string values must be enclosed in double quotes.
   - Avoid trailing commas after the last item in objects or arrays.

4. **Reference Nested Fields Correctly:**
   - Use dot notation for nested fields as per the schema.

5. **Include Only Necessary Stages:**
   - Use the ` + "`$project`" + ` stage only when specific fields need to be included or excluded. If all fields are required, omit the ` + "`$project`" + ` stage.

6. **Output Format:**
   - Return the result as a JSON object with only two keys: ` + "`\"collection\"`" + ` and ` + "`\"pipeline\"`" + `.
   - Enclose the JSON object within triple backticks with ` + "`json`" + ` specified.
   - Do not include any additional text, explanations, comments, or examples.

**Important:**

- **Do Not** include any additional text, explanations, comments, or examples.
- **Ensure** that the JSON object is enclosed within ` + "```json" + ` code fences without any leading or trailing whitespace.
- **If** the user asks you to look for certain patterns, such as a replicon type, use a regular expression to match any similar, case-insensitive occurrences that may be part of another word.


Table Schema:
{{.Schema}}
Schema Description:
{{.Description}}
Here are some examples:
{{range .Examples}}
Input: {{.Input}}
Output:
` + "```json" + `
{{.Output}}
` + "```" + `
{{end}}
### User Question

Note:

- Read the user's question carefully and determine the correct collection to query.
- Create a MongoDB aggregation pipeline that answers the user's question.
- **RETURN ONLY** the collection name and the MongoDB aggregation pipeline as a JSON object with the keys "collection" and "pipeline".
- **DO NOT** include the examples, comments, explanations, or any additional text.
- **Ensure the JSON object is enclosed within ` + "```json" + ` code fences without any leading or trailing whitespace.**

Input: `))

type promptExample struct {
	Input  string
	Output string
}

// PromptBuilder composes the catalog, the example corpus and a question into
// one prompt. Everything but the question is rendered once at construction,
// so Build is cheap and safe for concurrent use.
type PromptBuilder struct {
	prefix string
}

// NewPromptBuilder renders the static part of the prompt.
func NewPromptBuilder(catalog schema.Catalog, corpus example.Corpus) (*PromptBuilder, error) {
	examples := corpus.Examples()
	data := struct {
		Schema      string
		Description string
		Examples    []promptExample
	}{
		Schema:      catalog.Render(),
		Description: catalog.Describe(),
		Examples:    make([]promptExample, len(examples)),
	}
	for i, e := range examples {
		data.Examples[i] = promptExample{Input: e.Input, Output: value.Indent(e.Output, "    ")}
	}

	var b strings.Builder
	if err := promptTemplate.Execute(&b, data); err != nil {
		return nil, domain.NewConfigurationError("prompt template", fmt.Errorf("render: %w", err))
	}
	return &PromptBuilder{prefix: b.String()}, nil
}

// Build appends the question to the rendered prompt.
func (p *PromptBuilder) Build(question string) string {
	return p.prefix + question + "\n"
}
