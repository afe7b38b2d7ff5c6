package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/thesisflow/backend/internal/models"
)

// payloadSchemaJSON mirrors the contract pinned in the system prompt. Only
// position and question are required per item; rationale and keywords stay
// unconstrained and extra fields are ignored. A single failing item rejects
// the whole payload.
const payloadSchemaJSON = `{
	"type": "object",
	"required": ["questions"],
	"properties": {
		"questions": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["position", "question"],
				"properties": {
					"position": {"type": "number"},
					"question": {"type": "string"}
				}
			}
		}
	}
}`

var (
	schemaOnce    sync.Once
	payloadSchema *jsonschema.Schema
	compileErr    error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(payloadSchemaJSON), &def); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://research-questions.json"
		if err := c.AddResource(url, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		payloadSchema, compileErr = c.Compile(url)
	})
	return payloadSchema, compileErr
}

// Question is one entry of a model completion. Rationale and keywords stay
// raw: the model is not trusted to type them consistently, so coercion
// happens during normalization.
type Question struct {
	Position  float64         `json:"position"`
	Question  string          `json:"question"`
	Rationale json.RawMessage `json:"rationale"`
	Keywords  json.RawMessage `json:"keywords"`
}

// Payload is the parsed shape of a model completion.
type Payload struct {
	Questions []Question `json:"questions"`
}

// ParseError means the completion text was not valid JSON. Raw carries the
// completion text for diagnostics.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string { return "Failed to parse JSON from model" }

// SchemaError means the completion parsed but did not match the expected
// shape. Raw carries the parsed value for diagnostics.
type SchemaError struct {
	Raw any
	Err error
}

func (e *SchemaError) Error() string { return "Invalid JSON schema from model" }
func (e *SchemaError) Unwrap() error { return e.Err }

// ParsePayload parses and validates a model completion. The whole payload is
// rejected when any element fails the shape check — no partial acceptance.
func ParsePayload(content string) (*Payload, error) {
	var parsed any
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, &ParseError{Raw: content}
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, &SchemaError{Raw: parsed, Err: err}
	}

	var p Payload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return nil, &SchemaError{Raw: parsed, Err: err}
	}
	return &p, nil
}

// Normalize turns an accepted payload into rows ready for insertion:
// truncate to limit, trim question text, drop entries whose question is
// empty, coerce blank rationale to null, keep keywords only when they are a
// string array, and renumber positions 1..K. The model's own position
// values are not trusted for ordering. An empty result means the run
// produced no usable output; the caller fails the whole operation.
func Normalize(p *Payload, limit int) []models.GeneratedQuestion {
	questions := p.Questions
	if len(questions) > limit {
		questions = questions[:limit]
	}

	out := make([]models.GeneratedQuestion, 0, len(questions))
	for _, q := range questions {
		text := strings.TrimSpace(q.Question)
		if text == "" {
			continue
		}
		out = append(out, models.GeneratedQuestion{
			Position:  len(out) + 1,
			Question:  text,
			Rationale: coerceRationale(q.Rationale),
			Keywords:  coerceKeywords(q.Keywords),
		})
	}
	return out
}

func coerceRationale(raw json.RawMessage) *string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func coerceKeywords(raw json.RawMessage) []string {
	var kw []string
	if err := json.Unmarshal(raw, &kw); err != nil {
		return nil
	}
	return kw
}
