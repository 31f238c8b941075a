// Package bollyquiz defines the core domain types shared by setup, question
// loading and the game engine. It has zero external dependencies.
package bollyquiz

import (
	"errors"
	"fmt"
	"strings"
)

// PointsPerAnswer is awarded to the team credited with a correct answer.
const PointsPerAnswer = 10

// OptionCount is the number of choices on a multiple-choice question.
const OptionCount = 4

type Team struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple_choice"
	KindHint           QuestionKind = "hint"
)

// Question is either a multiple-choice question (Options, CorrectIndex) or a
// hint question (Hint, Answer, Category), selected by Kind.
type Question struct {
	Kind         QuestionKind `json:"kind" yaml:"kind"`
	Text         string       `json:"text" yaml:"text"`
	Options      []string     `json:"options,omitempty" yaml:"options,omitempty"`
	CorrectIndex int          `json:"correctIndex,omitempty" yaml:"correct,omitempty"`
	Hint         string       `json:"hint,omitempty" yaml:"hint,omitempty"`
	Answer       string       `json:"answer,omitempty" yaml:"answer,omitempty"`
	Category     string       `json:"category,omitempty" yaml:"category,omitempty"`
}

var ErrInvalidQuestion = errors.New("invalid question")

func NewMultipleChoice(text string, options []string, correct int) (Question, error) {
	q := Question{
		Kind:         KindMultipleChoice,
		Text:         strings.TrimSpace(text),
		Options:      append([]string(nil), options...),
		CorrectIndex: correct,
	}
	return q, q.Validate()
}

func NewHint(text, hint, answer, category string) (Question, error) {
	q := Question{
		Kind:     KindHint,
		Text:     strings.TrimSpace(text),
		Hint:     strings.TrimSpace(hint),
		Answer:   strings.TrimSpace(answer),
		Category: strings.TrimSpace(category),
	}
	return q, q.Validate()
}

func (q Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidQuestion)
	}
	switch q.Kind {
	case KindMultipleChoice:
		if len(q.Options) != OptionCount {
			return fmt.Errorf("%w: want %d options, got %d", ErrInvalidQuestion, OptionCount, len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("%w: correct index %d out of range", ErrInvalidQuestion, q.CorrectIndex)
		}
	case KindHint:
		if q.Answer == "" {
			return fmt.Errorf("%w: empty answer", ErrInvalidQuestion)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidQuestion, q.Kind)
	}
	return nil
}

// IsCorrectOption reports whether option i is the right choice. It is always
// false for hint questions.
func (q Question) IsCorrectOption(i int) bool {
	return q.Kind == KindMultipleChoice && i == q.CorrectIndex
}
