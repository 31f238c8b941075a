package game

import (
	"slices"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
)

type Phase string

const (
	PhaseAwaitingReveal Phase = "awaiting_reveal"
	PhaseRevealed       Phase = "revealed"
	PhaseCelebrating    Phase = "celebrating"
	PhaseScoreConfirmed Phase = "score_confirmed"
	PhaseComplete       Phase = "complete"
)

// QuestionView is what the play screen may show of the current question.
// Options and hint appear once revealed; the answer once the question is
// scored.
type QuestionView struct {
	Kind     bollyquiz.QuestionKind `json:"kind"`
	Text     string                 `json:"text"`
	Category string                 `json:"category,omitempty"`
	Options  []string               `json:"options,omitempty"`
	Hint     string                 `json:"hint,omitempty"`
	Answer   string                 `json:"answer,omitempty"`
}

// State is an immutable snapshot of a session.
type State struct {
	Phase         Phase            `json:"phase"`
	QuestionIndex int              `json:"questionIndex"`
	QuestionCount int              `json:"questionCount"`
	Question      *QuestionView    `json:"question,omitempty"`
	Revealed      bool             `json:"revealed"`
	Celebrating   *int             `json:"celebrating,omitempty"`
	TurnTeam      int              `json:"turnTeam"`
	Teams         []bollyquiz.Team `json:"teams"`
	Scores        []int            `json:"scores"`
}

func (s *Session) state() State {
	st := State{
		Phase:         s.phase,
		QuestionIndex: s.current,
		QuestionCount: len(s.questions),
		Revealed:      s.revealed,
		TurnTeam:      s.current % len(s.teams),
		Teams:         slices.Clone(s.teams),
		Scores:        slices.Clone(s.scores),
	}
	if s.celebrating >= 0 {
		team := s.celebrating
		st.Celebrating = &team
	}
	if s.phase != PhaseComplete {
		st.Question = s.view(s.questions[s.current])
	}
	return st
}

func (s *Session) view(q bollyquiz.Question) *QuestionView {
	v := &QuestionView{Kind: q.Kind, Text: q.Text, Category: q.Category}
	if s.revealed {
		v.Options = slices.Clone(q.Options)
		v.Hint = q.Hint
	}
	if s.phase == PhaseScoreConfirmed {
		switch q.Kind {
		case bollyquiz.KindMultipleChoice:
			v.Answer = q.Options[q.CorrectIndex]
		case bollyquiz.KindHint:
			v.Answer = q.Answer
		}
	}
	return v
}
