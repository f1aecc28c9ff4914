package example

import (
	"encoding/json"
	"fmt"
)

// Sample is a ready-made query shown to users as a starting point.
type Sample struct {
	NaturalLanguage string `json:"natural_language"`
	Collection      string `json:"collection"`
	Query           string `json:"json_query"`
	Difficulty      int    `json:"difficulty"` // 0-100
}

// Samples returns the built-in sample queries ordered by difficulty.
func Samples() []Sample {
	var out []Sample
	if err := json.Unmarshal(samplesJSON, &out); err != nil {
		panic(fmt.Sprintf("example: builtin samples: %v", err))
	}
	return out
}
