package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/quizzer/internal/llm/prompts"
	"github.com/pavelanni/quizzer/internal/quiz"
	"github.com/pavelanni/quizzer/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "quizzer",
		Short:        "Quiz practice with AI-graded free-text answers",
		SilenceUsage: true,
	}

	serve := serveCmd()
	root.AddCommand(serve, playCmd(), subjectsCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `quizzer --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP quiz API",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /quiz)")
	addQuizFlags(cmd)
	addLogFlags(cmd, "info")
	return cmd
}

func playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take a quiz in the terminal",
		RunE:  runPlay,
	}
	f := cmd.Flags()
	f.StringP("subject", "s", "", "Subject (asked interactively when empty)")
	f.StringP("chapter", "c", "", "Chapter (asked interactively when empty)")
	f.StringP("difficulty", "d", "", "Difficulty: basic, medium, difficult (asked interactively when empty)")
	addQuizFlags(cmd)
	// Logs share the terminal with the quiz.
	addLogFlags(cmd, "warn")
	return cmd
}

func subjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "List subjects, chapters and question counts",
		RunE:  runSubjects,
	}
	f := cmd.Flags()
	f.StringSliceP("bank", "b", nil, "Extra question bank JSON files (repeatable)")
	f.Bool("json", false, "Print the catalog as JSON")
	addLogFlags(cmd, "warn")
	return cmd
}

func addQuizFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceP("bank", "b", nil, "Extra question bank JSON files (repeatable)")
	f.IntP("session-size", "n", quiz.DefaultSessionSize, "Questions per quiz (0 = all available)")
	f.StringP("lang", "l", "en", "UI language (en, ru)")

	f.String("llm-provider", "openai", "Evaluation provider (openai, anthropic, gemini)")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for the evaluation provider")
	f.String("llm-model", "llama3.2", "Evaluation model name")
	f.String("prompt-variant", string(prompts.PromptStandard), "Grading prompt variant (strict, standard, lenient)")

	f.String("streak-store", store.BackendSQLite, "Where the streak is kept (sqlite, redis, memory)")
	f.String("db", "quizzer.db", "SQLite database path")
	f.String("redis-url", "redis://localhost:6379/0", "Redis URL for --streak-store redis")
	f.String("redis-prefix", "quizzer:", "Redis key prefix")
}

func addLogFlags(cmd *cobra.Command, level string) {
	f := cmd.Flags()
	f.String("log-level", level, "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("QUIZZER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("quizzer")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/quizzer")
	v.AddConfigPath("/etc/quizzer")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}
