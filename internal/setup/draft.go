package setup

import (
	"slices"
	"sort"
	"strings"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
)

// Draft is the editable state of the setup screen.
type Draft struct {
	teams         []bollyquiz.Team
	questionCount int
	filtered      bool
	categories    map[string]struct{}
}

type Option func(*Draft)

// WithCategoryFilter turns on category filtering with the given initial
// selection. A filtered draft refuses to build with no category selected.
func WithCategoryFilter(selected ...string) Option {
	return func(d *Draft) {
		d.filtered = true
		for _, c := range selected {
			if c = strings.TrimSpace(c); c != "" {
				d.categories[c] = struct{}{}
			}
		}
	}
}

func WithQuestionCount(n int) Option {
	return func(d *Draft) { d.questionCount = n }
}

// NewDraft starts with two unnamed teams in the first two palette colors.
func NewDraft(opts ...Option) *Draft {
	d := &Draft{
		questionCount: DefaultQuestionCount,
		categories:    make(map[string]struct{}),
	}
	for range MinTeams {
		d.teams = append(d.teams, bollyquiz.Team{Color: NextColor(d.colors())})
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Draft) Teams() []bollyquiz.Team {
	return slices.Clone(d.teams)
}

// AddTeam appends a team and returns its index.
func (d *Draft) AddTeam(name string) (int, error) {
	if len(d.teams) >= MaxTeams {
		return -1, ErrTooManyTeams
	}
	d.teams = append(d.teams, bollyquiz.Team{Name: name, Color: NextColor(d.colors())})
	return len(d.teams) - 1, nil
}

func (d *Draft) RemoveTeam(i int) error {
	if len(d.teams) <= MinTeams {
		return ErrTooFewTeams
	}
	if i < 0 || i >= len(d.teams) {
		return ErrTeamIndex
	}
	d.teams = slices.Delete(d.teams, i, i+1)
	return nil
}

func (d *Draft) RenameTeam(i int, name string) error {
	if i < 0 || i >= len(d.teams) {
		return ErrTeamIndex
	}
	d.teams[i].Name = name
	return nil
}

func (d *Draft) SetTeamColor(i int, color string) error {
	if i < 0 || i >= len(d.teams) {
		return ErrTeamIndex
	}
	d.teams[i].Color = color
	return nil
}

func (d *Draft) SetQuestionCount(n int) {
	d.questionCount = n
}

// ToggleCategory flips the selection of c and reports whether it is now
// selected.
func (d *Draft) ToggleCategory(c string) bool {
	c = strings.TrimSpace(c)
	if c == "" {
		return false
	}
	if _, ok := d.categories[c]; ok {
		delete(d.categories, c)
		return false
	}
	d.categories[c] = struct{}{}
	return true
}

func (d *Draft) Categories() []string {
	out := make([]string, 0, len(d.categories))
	for c := range d.categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Build validates the draft. On failure no config is produced and the draft
// is left as it was.
func (d *Draft) Build() (SessionConfig, error) {
	cfg := SessionConfig{
		Teams:         d.Teams(),
		QuestionCount: d.questionCount,
		Categories:    d.Categories(),
	}
	if err := cfg.Validate(d.filtered); err != nil {
		return SessionConfig{}, err
	}
	return cfg.Normalized(), nil
}

func (d *Draft) colors() []string {
	out := make([]string, len(d.teams))
	for i, t := range d.teams {
		out[i] = t.Color
	}
	return out
}
