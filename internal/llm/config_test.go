package llm

import (
	"context"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ollama without key", Config{Provider: "openai", BaseURL: "http://localhost:11434/v1", Model: "llama3.2"}, false},
		{"openai cloud without key", Config{Provider: "openai", Model: "gpt-4o-mini"}, true},
		{"anthropic with key", Config{Provider: "anthropic", APIKey: "k", Model: "claude-haiku"}, false},
		{"anthropic without key", Config{Provider: "anthropic", Model: "claude-haiku"}, true},
		{"gemini without key", Config{Provider: "gemini", Model: "gemini-flash"}, true},
		{"missing model", Config{Provider: "openai", BaseURL: "http://x", APIKey: "k"}, true},
		{"offline is not a provider", Config{Provider: "offline"}, true},
		{"mock is not a provider", Config{Provider: "mock", Model: "x"}, true},
		{"unknown", Config{Provider: "cohere", Model: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "openai", BaseURL: "http://localhost:11434/v1", Model: "llama3.2"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.ModelID() != "llama3.2" {
		t.Errorf("ModelID() = %q", p.ModelID())
	}
	if _, ok := p.(Pinger); !ok {
		t.Error("openai provider should support Ping through the logging wrapper")
	}

	for _, name := range []string{"cohere", "offline", "mock"} {
		if _, err := NewProvider(context.Background(), Config{Provider: name, Model: "x"}); err == nil {
			t.Errorf("expected error for provider %q", name)
		}
	}
}

func TestResolveModel(t *testing.T) {
	if got := resolveModel("claude-haiku", anthropicModels); got != "claude-haiku-4-5-20251001" {
		t.Errorf("resolveModel(claude-haiku) = %q", got)
	}
	if got := resolveModel("custom-model", anthropicModels); got != "custom-model" {
		t.Errorf("unknown names should pass through, got %q", got)
	}
}
