package questions

import (
	"context"
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
)

//go:embed builtin.yaml
var builtinYAML []byte

type bank struct {
	MultipleChoice []bollyquiz.Question `yaml:"multiple_choice"`
	Hint           []bollyquiz.Question `yaml:"hint"`
}

// StaticSource serves a fixed question list.
type StaticSource struct {
	questions []bollyquiz.Question
}

func NewStaticSource(qs []bollyquiz.Question) *StaticSource {
	return &StaticSource{questions: slices.Clone(qs)}
}

func (s *StaticSource) Load(context.Context) ([]bollyquiz.Question, error) {
	if len(s.questions) == 0 {
		return nil, ErrNoQuestions
	}
	return slices.Clone(s.questions), nil
}

// Builtin returns the embedded question bank for kind.
func Builtin(kind bollyquiz.QuestionKind) (*StaticSource, error) {
	qs, err := parseBank(builtinYAML, kind)
	if err != nil {
		return nil, fmt.Errorf("built-in questions: %w", err)
	}
	return NewStaticSource(qs), nil
}

func parseBank(data []byte, kind bollyquiz.QuestionKind) ([]bollyquiz.Question, error) {
	var b bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decoding bank: %w", err)
	}

	var qs []bollyquiz.Question
	switch kind {
	case bollyquiz.KindMultipleChoice:
		qs = b.MultipleChoice
	case bollyquiz.KindHint:
		qs = b.Hint
	default:
		return nil, fmt.Errorf("unknown question kind %q", kind)
	}

	for i := range qs {
		qs[i].Kind = kind
		if err := qs[i].Validate(); err != nil {
			return nil, fmt.Errorf("%s question %d: %w", kind, i+1, err)
		}
	}
	return qs, nil
}
