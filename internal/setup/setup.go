// Package setup models the team setup screen: an editable Draft of teams and
// play parameters that is validated into an immutable SessionConfig.
package setup

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
)

const (
	MinTeams             = 2
	MaxTeams             = 8
	DefaultQuestionCount = 10
)

// Palette is the fixed set of team colors, in assignment order.
var Palette = []string{
	"#FFD700",
	"#DC2626",
	"#2563EB",
	"#16A34A",
	"#9333EA",
	"#EA580C",
	"#DB2777",
	"#0D9488",
}

var (
	ErrTooManyTeams  = fmt.Errorf("a game can have at most %d teams", MaxTeams)
	ErrTooFewTeams   = fmt.Errorf("a game needs at least %d teams", MinTeams)
	ErrTeamIndex     = errors.New("team index out of range")
	ErrEmptyTeamName = errors.New("team name is required")
	ErrTeamCount     = fmt.Errorf("team count must be between %d and %d", MinTeams, MaxTeams)
	ErrQuestionCount = errors.New("question count must be positive")
	ErrNoCategories  = errors.New("select at least one category")
)

// SessionConfig is the Setup→Play payload.
type SessionConfig struct {
	Teams         []bollyquiz.Team `json:"teams"`
	QuestionCount int              `json:"questionCount"`
	Categories    []string         `json:"categories"`
}

// Validate checks a config regardless of where it came from. When filtered is
// true at least one category must be selected. All problems are joined.
func (c SessionConfig) Validate(filtered bool) error {
	var errs []error
	if n := len(c.Teams); n < MinTeams || n > MaxTeams {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrTeamCount, n))
	}
	for i, t := range c.Teams {
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, fmt.Errorf("team %d: %w", i+1, ErrEmptyTeamName))
		}
	}
	if c.QuestionCount <= 0 {
		errs = append(errs, ErrQuestionCount)
	}
	if filtered && len(c.Categories) == 0 {
		errs = append(errs, ErrNoCategories)
	}
	return errors.Join(errs...)
}

// Normalized returns a copy with trimmed team names and deduplicated, trimmed
// categories.
func (c SessionConfig) Normalized() SessionConfig {
	out := SessionConfig{
		Teams:         make([]bollyquiz.Team, len(c.Teams)),
		QuestionCount: c.QuestionCount,
	}
	for i, t := range c.Teams {
		out.Teams[i] = bollyquiz.Team{Name: strings.TrimSpace(t.Name), Color: t.Color}
	}
	for _, cat := range c.Categories {
		cat = strings.TrimSpace(cat)
		if cat != "" && !slices.Contains(out.Categories, cat) {
			out.Categories = append(out.Categories, cat)
		}
	}
	return out
}

// NextColor picks the first palette color not in used. Once the palette is
// exhausted colors are reused in palette order.
func NextColor(used []string) string {
	for _, c := range Palette {
		if !slices.Contains(used, c) {
			return c
		}
	}
	return Palette[len(used)%len(Palette)]
}
