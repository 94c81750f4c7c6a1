package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.5-flash", "gemini-2.5-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, geminiModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchemaFromEvaluationSchema(t *testing.T) {
	schema := buildGeminiSchema(EvaluationSchema.Definition)

	if schema.Type != genai.TypeObject {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 6 {
		t.Fatalf("expected 6 properties, got %d", len(schema.Properties))
	}
	if len(schema.Required) != 6 {
		t.Errorf("expected 6 required fields, got %v", schema.Required)
	}

	want := map[string]genai.Type{
		"score":                  genai.TypeNumber,
		"feedback":               genai.TypeString,
		"isCorrect":              genai.TypeBoolean,
		"missingConcepts":        genai.TypeArray,
		"terminologyCorrections": genai.TypeArray,
		"modelAnswerImprovement": genai.TypeString,
	}
	for name, typ := range want {
		p, ok := schema.Properties[name]
		if !ok {
			t.Errorf("missing property %q", name)
			continue
		}
		if p.Type != typ {
			t.Errorf("%s: type = %s, want %s", name, p.Type, typ)
		}
	}
	if items := schema.Properties["missingConcepts"].Items; items == nil || items.Type != genai.TypeString {
		t.Errorf("missingConcepts items should be STRING, got %+v", items)
	}
}
