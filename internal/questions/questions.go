// Package questions loads trivia questions from a published sheet, the
// built-in bank or the SQLite cache, and selects the set for one game.
package questions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
)

var (
	ErrNoQuestions    = errors.New("no questions match the selection")
	ErrProviderFailed = errors.New("questions could not be loaded")
)

// Source yields the full, unfiltered question list.
type Source interface {
	Load(ctx context.Context) ([]bollyquiz.Question, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context) ([]bollyquiz.Question, error)

func (f SourceFunc) Load(ctx context.Context) ([]bollyquiz.Question, error) { return f(ctx) }

// ShuffleFunc has the signature of rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// Provider turns a Source into the question list for one game.
type Provider struct {
	src     Source
	logger  *slog.Logger
	shuffle ShuffleFunc
}

type ProviderOption func(*Provider)

// WithShuffle replaces the uniform shuffle, for deterministic tests.
func WithShuffle(f ShuffleFunc) ProviderOption {
	return func(p *Provider) { p.shuffle = f }
}

func NewProvider(src Source, logger *slog.Logger, opts ...ProviderOption) *Provider {
	p := &Provider{src: src, logger: logger, shuffle: rand.Shuffle}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provide returns up to limit questions, restricted to categories when any
// are given, in random order. It never returns an empty list without an
// error.
func (p *Provider) Provide(ctx context.Context, categories []string, limit int) ([]bollyquiz.Question, error) {
	all, err := p.src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderFailed, err)
	}

	qs := Select(all, categories, limit, p.shuffle)
	if len(qs) == 0 {
		return nil, ErrNoQuestions
	}
	p.logger.DebugContext(ctx, "questions selected",
		"available", len(all), "selected", len(qs), "categories", categories)
	return qs, nil
}

// Categories lists the distinct categories of the loaded questions, sorted.
func (p *Provider) Categories(ctx context.Context) ([]string, error) {
	all, err := p.src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderFailed, err)
	}
	return Categories(all), nil
}

// Select filters qs to the given categories (all of them when categories is
// empty), shuffles the result and truncates it to limit. A limit of zero or
// less keeps every match. qs is not modified.
func Select(qs []bollyquiz.Question, categories []string, limit int, shuffle ShuffleFunc) []bollyquiz.Question {
	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			wanted[c] = true
		}
	}

	out := make([]bollyquiz.Question, 0, len(qs))
	for _, q := range qs {
		if len(wanted) > 0 && !wanted[q.Category] {
			continue
		}
		out = append(out, q)
	}

	if shuffle != nil {
		shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Categories returns the sorted distinct non-empty categories of qs.
func Categories(qs []bollyquiz.Question) []string {
	var cats []string
	for _, q := range qs {
		if q.Category != "" && !slices.Contains(cats, q.Category) {
			cats = append(cats, q.Category)
		}
	}
	slices.Sort(cats)
	return cats
}

// ObserveFunc receives the outcome of every load through an instrumented
// source.
type ObserveFunc func(source string, err error, elapsed time.Duration)

// Instrument reports every Load of src to observe under the given name.
func Instrument(name string, src Source, observe ObserveFunc) Source {
	return SourceFunc(func(ctx context.Context) ([]bollyquiz.Question, error) {
		start := time.Now()
		qs, err := src.Load(ctx)
		observe(name, err, time.Since(start))
		return qs, err
	})
}
