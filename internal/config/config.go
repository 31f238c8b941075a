package config

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
)

// Question sources.
const (
	SourceSheet  = "sheet"
	SourceStatic = "static"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/bollyquiz.db"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	QuestionSource string                 `env:"QUESTION_SOURCE" envDefault:"static"`
	QuestionKind   bollyquiz.QuestionKind `env:"QUESTION_KIND" envDefault:"multiple_choice"`
	SheetURL       string                 `env:"SHEET_URL"`
	FetchTimeout   time.Duration          `env:"FETCH_TIMEOUT" envDefault:"10s"`
	FetchRetries   int                    `env:"FETCH_RETRIES" envDefault:"3"`

	CelebrationDelay time.Duration `env:"CELEBRATION_DELAY" envDefault:"2s"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	PublicURL        string        `env:"PUBLIC_URL"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", byVariable(err))
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// byVariable renames env parse errors after the variable an operator sets
// instead of the Go field it lands in.
func byVariable(err error) error {
	var agg env.AggregateError
	if !errors.As(err, &agg) {
		return err
	}

	vars := make(map[string]string)
	t := reflect.TypeFor[Config]()
	for i := range t.NumField() {
		f := t.Field(i)
		if key, _, _ := strings.Cut(f.Tag.Get("env"), ","); key != "" {
			vars[f.Name] = key
		}
	}

	errs := make([]error, 0, len(agg.Errors))
	for _, e := range agg.Errors {
		var perr env.ParseError
		if errors.As(e, &perr) {
			if key, ok := vars[perr.Name]; ok {
				errs = append(errs, fmt.Errorf("%s: %w", key, perr.Err))
				continue
			}
		}
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

func (c Config) validate() error {
	var errs []error
	switch c.QuestionSource {
	case SourceStatic:
	case SourceSheet:
		if c.SheetURL == "" {
			errs = append(errs, errors.New("SHEET_URL is required when QUESTION_SOURCE=sheet"))
		}
		if c.QuestionKind != bollyquiz.KindHint {
			errs = append(errs, errors.New("sheets hold hint questions: set QUESTION_KIND=hint"))
		}
	default:
		errs = append(errs, fmt.Errorf("QUESTION_SOURCE must be %q or %q, got %q", SourceSheet, SourceStatic, c.QuestionSource))
	}
	switch c.QuestionKind {
	case bollyquiz.KindHint, bollyquiz.KindMultipleChoice:
	default:
		errs = append(errs, fmt.Errorf("QUESTION_KIND must be %q or %q, got %q", bollyquiz.KindHint, bollyquiz.KindMultipleChoice, c.QuestionKind))
	}
	if c.CelebrationDelay <= 0 {
		errs = append(errs, errors.New("CELEBRATION_DELAY must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	return errors.Join(errs...)
}
