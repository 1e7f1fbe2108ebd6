package train

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// #region schema
const exampleSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["text", "score"],
	"properties": {
		"text": {"type": "string", "minLength": 1},
		"score": {"type": "number", "minimum": 0, "maximum": 1},
		"dimensions": {
			"type": "object",
			"additionalProperties": {"type": "number"}
		},
		"rejection_reason": {"type": ["string", "null"]},
		"guidance": {"type": ["string", "null"]}
	}
}`

var exampleSchema = mustCompileSchema(exampleSchemaJSON, "training_example.schema.json")

func mustCompileSchema(raw, name string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("parse %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("add %s resource: %v", name, err))
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile %s: %v", name, err))
	}
	return sch
}

// #endregion schema

// #region example
// Example is one labeled line of a gate's JSONL label file.
type Example struct {
	Text            string             `json:"text"`
	Score           float64            `json:"score"`
	Dimensions      map[string]float64 `json:"dimensions,omitempty"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	Guidance        string             `json:"guidance,omitempty"`
}

// RejectionRecord pairs a shallow question with its labeled reason.
type RejectionRecord struct {
	Text     string `json:"text"`
	Reason   string `json:"reason"`
	Guidance string `json:"guidance"`
}

// #endregion example

// #region load
// LoadExamples reads JSONL examples, validating each line. Blank lines are
// skipped; the first invalid line aborts the load.
func LoadExamples(r io.Reader) ([]Example, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var examples []Example
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: parse: %w", lineNum, err)
		}
		if err := exampleSchema.Validate(inst); err != nil {
			return nil, fmt.Errorf("line %d: invalid example: %w", lineNum, err)
		}
		var ex Example
		if err := json.Unmarshal(line, &ex); err != nil {
			return nil, fmt.Errorf("line %d: decode: %w", lineNum, err)
		}
		examples = append(examples, ex)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read examples: %w", err)
	}
	return examples, nil
}

// LoadExamplesFile opens path and calls LoadExamples.
func LoadExamplesFile(path string) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open examples %s: %w", path, err)
	}
	defer f.Close()
	examples, err := LoadExamples(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return examples, nil
}

// #endregion load

// #region labels
// BinaryLabels marks scores at or above threshold as positive.
func BinaryLabels(examples []Example, threshold float64) []int {
	labels := make([]int, len(examples))
	for i, ex := range examples {
		if ex.Score >= threshold {
			labels[i] = 1
		}
	}
	return labels
}

// RejectionRecords collects the examples that carry a rejection reason. The
// result is never nil so an empty export encodes as [].
func RejectionRecords(examples []Example) []RejectionRecord {
	out := []RejectionRecord{}
	for _, ex := range examples {
		if ex.RejectionReason == "" {
			continue
		}
		out = append(out, RejectionRecord{Text: ex.Text, Reason: ex.RejectionReason, Guidance: ex.Guidance})
	}
	return out
}

// #endregion labels
