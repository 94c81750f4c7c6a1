package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pavelanni/quizzer/internal/bank"
	"github.com/pavelanni/quizzer/internal/i18n"
	"github.com/pavelanni/quizzer/internal/llm"
	"github.com/pavelanni/quizzer/internal/llm/prompts"
	"github.com/pavelanni/quizzer/internal/model"
	"github.com/pavelanni/quizzer/internal/quiz"
	"github.com/pavelanni/quizzer/internal/store"
)

const pingTimeout = 10 * time.Second

// app wires the question bank, streak store, evaluator and state machine.
type app struct {
	cfg     model.QuizConfig
	bank    *bank.Bank
	streaks store.StreakStore
	machine *quiz.Machine
}

func newApp(ctx context.Context, v *viper.Viper) (*app, error) {
	cfg := model.QuizConfig{
		SessionSize:   v.GetInt("session-size"),
		PromptVariant: strings.ToLower(strings.TrimSpace(v.GetString("prompt-variant"))),
		Lang:          v.GetString("lang"),
	}
	if !prompts.IsValidVariant(cfg.PromptVariant) {
		slog.Warn("invalid prompt-variant, using standard", "variant", cfg.PromptVariant)
		cfg.PromptVariant = string(prompts.PromptStandard)
	}
	if cfg.SessionSize < 0 {
		return nil, fmt.Errorf("session-size must not be negative, got %d", cfg.SessionSize)
	}

	if err := i18n.Init(cfg.Lang); err != nil {
		return nil, fmt.Errorf("init i18n: %w", err)
	}

	b, err := bank.LoadDefault(v.GetStringSlice("bank")...)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	provider, err := llm.NewProvider(ctx, llm.Config{
		Provider: v.GetString("llm-provider"),
		BaseURL:  v.GetString("llm-url"),
		APIKey:   v.GetString("llm-key"),
		Model:    v.GetString("llm-model"),
	})
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	if p, ok := provider.(llm.Pinger); ok {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := p.Ping(pingCtx)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("LLM health check: %w", err)
		}
		slog.Info("LLM endpoint OK", "provider", v.GetString("llm-provider"), "model", provider.ModelID())
	}
	evaluator, err := llm.NewEvaluator(provider, cfg.PromptVariant)
	if err != nil {
		return nil, fmt.Errorf("create evaluator: %w", err)
	}

	streaks, err := store.Open(ctx, store.Config{
		Backend:     v.GetString("streak-store"),
		DBPath:      v.GetString("db"),
		RedisURL:    v.GetString("redis-url"),
		RedisPrefix: v.GetString("redis-prefix"),
	})
	if err != nil {
		return nil, fmt.Errorf("open streak store: %w", err)
	}
	streak, err := quiz.NewStreak(ctx, streaks)
	if err != nil {
		streaks.Close()
		return nil, err
	}

	m := quiz.NewMachine(b, evaluator, streak, quiz.Options{SessionSize: machineSessionSize(cfg.SessionSize)})

	return &app{cfg: cfg, bank: b, streaks: streaks, machine: m}, nil
}

// machineSessionSize maps --session-size, where 0 means the whole pool, to
// quiz.Options.SessionSize, where 0 means the default.
func machineSessionSize(flag int) int {
	if flag == 0 {
		return quiz.WholePool
	}
	return flag
}

func (a *app) Close() error {
	if err := a.streaks.Close(); err != nil {
		return fmt.Errorf("close streak store: %w", err)
	}
	return nil
}
