package questions

import (
	"context"
	"errors"
	"log/slog"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
)

// FallbackSource serves primary, or fallback when primary fails.
type FallbackSource struct {
	primary  Source
	fallback Source
	logger   *slog.Logger
}

func NewFallbackSource(primary, fallback Source, logger *slog.Logger) *FallbackSource {
	return &FallbackSource{primary: primary, fallback: fallback, logger: logger}
}

func (f *FallbackSource) Load(ctx context.Context) ([]bollyquiz.Question, error) {
	qs, err := f.primary.Load(ctx)
	if err == nil {
		return qs, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	f.logger.WarnContext(ctx, "primary question source failed, using fallback", "err", err)
	qs, ferr := f.fallback.Load(ctx)
	if ferr != nil {
		return nil, errors.Join(err, ferr)
	}
	return qs, nil
}
