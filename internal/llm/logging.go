package llm

import (
	"context"
	"log/slog"
	"time"
)

// LoggingProvider logs each evaluation call with latency and token usage.
// The raw reply is logged at debug level only, since it may quote the answer.
type LoggingProvider struct {
	inner  Provider
	logger *slog.Logger
}

// WithLogging wraps p. A nil logger means slog.Default().
func WithLogging(p Provider, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingProvider{inner: p, logger: logger.With("model", p.ModelID())}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		l.logger.Error("evaluation call failed", "elapsed", elapsed, "error", err)
		return nil, err
	}

	l.logger.Info("evaluation call",
		"elapsed", elapsed,
		"tokens", resp.Usage.Total(),
		"stop_reason", resp.StopReason,
	)
	l.logger.Debug("evaluation reply", "raw", string(resp.Content))
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// Ping forwards to the wrapped provider; providers without Ping always pass.
func (l *LoggingProvider) Ping(ctx context.Context) error {
	if p, ok := l.inner.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
