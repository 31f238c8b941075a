package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
	"github.com/playperu/bollyquiz/internal/questions"
)

// check loads the sheet, prints the parse report and a sample of what a game
// with the given categories would draw.
func check(ctx context.Context, cfg *Config, stdout, stderr io.Writer) error {
	qs, report, err := load(ctx, cfg, stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "accepted %d, skipped %d\n", report.Accepted, len(report.Skipped))
	for _, row := range report.Skipped {
		fmt.Fprintf(stdout, "  line %d: %s\n", row.Line, row.Reason)
	}
	fmt.Fprintf(stdout, "categories: %s\n", strings.Join(questions.Categories(qs), ", "))

	sample := questions.Select(qs, cfg.categories, cfg.limit, rand.Shuffle)
	if len(sample) == 0 {
		return fmt.Errorf("no questions in categories %v", cfg.categories)
	}
	fmt.Fprintf(stdout, "sample of %d:\n", len(sample))
	for i, q := range sample {
		printQuestion(stdout, i+1, q)
	}
	return nil
}

// load reads a local export with the full report. A URL goes through the
// server's sheet source, which logs skipped rows instead of returning them.
func load(ctx context.Context, cfg *Config, stderr io.Writer) ([]bollyquiz.Question, questions.ParseReport, error) {
	if cfg.file != "" {
		f, err := os.Open(cfg.file)
		if err != nil {
			return nil, questions.ParseReport{}, fmt.Errorf("opening sheet: %w", err)
		}
		defer f.Close()
		return questions.ParseSheet(f)
	}

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	src := questions.NewSheetSource(cfg.url, logger, questions.WithFetchTimeout(cfg.timeout))
	qs, err := src.Load(ctx)
	if err != nil {
		return nil, questions.ParseReport{}, err
	}
	return qs, questions.ParseReport{Accepted: len(qs)}, nil
}

func printQuestion(w io.Writer, n int, q bollyquiz.Question) {
	fmt.Fprintf(w, "%2d. [%s] %s\n", n, q.Category, q.Text)
	fmt.Fprintf(w, "    hint: %s\n", q.Hint)
	fmt.Fprintf(w, "    answer: %s\n", q.Answer)
}
