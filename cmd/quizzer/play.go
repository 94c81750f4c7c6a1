package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pavelanni/quizzer/internal/bank"
	"github.com/pavelanni/quizzer/internal/i18n"
	"github.com/pavelanni/quizzer/internal/model"
	"github.com/pavelanni/quizzer/internal/ui"
)

func runPlay(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sel := ui.Selection{
		Subject: v.GetString("subject"),
		Chapter: v.GetString("chapter"),
	}
	if d := v.GetString("difficulty"); d != "" {
		parsed, err := model.ParseDifficulty(d)
		if err != nil {
			return err
		}
		sel.Difficulty = parsed
	}

	a, err := newApp(ctx, v)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx = i18n.WithLang(ctx, a.cfg.Lang)
	return ui.NewPlayer(a.machine, a.bank, os.Stdin, cmd.OutOrStdout()).Run(ctx, sel)
}

func runSubjects(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	b, err := bank.LoadDefault(v.GetStringSlice("bank")...)
	if err != nil {
		return fmt.Errorf("load question bank: %w", err)
	}
	return printCatalog(cmd.OutOrStdout(), b.Catalog(), v.GetBool("json"))
}

func printCatalog(w io.Writer, catalog []bank.SubjectInfo, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog)
	}
	for _, s := range catalog {
		fmt.Fprintln(w, s.Name)
		for _, c := range s.Chapters {
			fmt.Fprintf(w, "  %-24s", c.Name)
			for _, d := range model.Difficulties {
				fmt.Fprintf(w, "  %s: %d", d, c.Counts[d])
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}
