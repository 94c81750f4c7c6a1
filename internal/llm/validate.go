package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a named JSON Schema that replies must satisfy. Providers forward
// Definition to the service; Validate checks what comes back.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// Validate checks raw against the schema. Failures are *ErrInvalidResponse.
// A nil schema accepts anything.
func (s *Schema) Validate(raw json.RawMessage) error {
	if s == nil {
		return nil
	}
	compiled, err := s.compile()
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}

	// jsonschema.UnmarshalJSON keeps numbers as json.Number, which the
	// validator expects.
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := compiled.Validate(doc); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("schema %s: %w", s.Name, err)}
	}
	return nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	s.once.Do(func() {
		def, err := json.Marshal(s.Definition)
		if err != nil {
			s.err = fmt.Errorf("marshal schema %s: %w", s.Name, err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
		if err != nil {
			s.err = fmt.Errorf("decode schema %s: %w", s.Name, err)
			return
		}
		url := "mem://" + s.Name + ".json"
		c := jsonschema.NewCompiler()
		if err := c.AddResource(url, doc); err != nil {
			s.err = fmt.Errorf("add schema %s: %w", s.Name, err)
			return
		}
		s.compiled, s.err = c.Compile(url)
	})
	return s.compiled, s.err
}
