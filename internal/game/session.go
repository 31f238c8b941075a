// Package game implements the game session state machine: question
// progression, scoring, the celebration window after a scoring action, and
// winner resolution.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
	"github.com/playperu/bollyquiz/internal/setup"
)

// DefaultCelebrationDelay is how long a scoring team celebrates before the
// score summary opens.
const DefaultCelebrationDelay = 2000 * time.Millisecond

var (
	ErrNoQuestions       = errors.New("no questions to play")
	ErrMixedVariants     = errors.New("questions mix multiple-choice and hint variants")
	ErrTeamIndex         = errors.New("team index out of range")
	ErrNotRevealed       = errors.New("show the hints before crediting a team")
	ErrCelebrating       = errors.New("a team is already celebrating")
	ErrAlreadyScored     = errors.New("this question has already been scored")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrGameComplete      = errors.New("the game is over")
	ErrGameNotComplete   = errors.New("the game is still in progress")
	ErrWrongVariant      = errors.New("this question has no options")
	ErrOptionIndex       = errors.New("option index out of range")
	ErrClosed            = errors.New("game session closed")
)

// Session is one play-through. All methods are safe for concurrent use;
// events and the celebration timer are serialised by a single mutex so every
// transition runs to completion before the next one starts.
type Session struct {
	mu sync.Mutex

	teams     []bollyquiz.Team
	questions []bollyquiz.Question

	current     int
	scores      []int
	revealed    bool
	celebrating int
	phase       Phase
	closed      bool

	timer    Timer
	timerSeq uint64

	delay    time.Duration
	sched    Scheduler
	notifier Notifier
	logger   *slog.Logger
}

type Option func(*Session)

func WithCelebrationDelay(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.delay = d
		}
	}
}

func WithScheduler(sched Scheduler) Option {
	return func(s *Session) { s.sched = sched }
}

func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New starts a session on the first question with all scores at zero.
func New(cfg setup.SessionConfig, questions []bollyquiz.Question, opts ...Option) (*Session, error) {
	if err := cfg.Validate(false); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		if q.Kind != questions[0].Kind {
			return nil, ErrMixedVariants
		}
	}

	cfg = cfg.Normalized()
	s := &Session{
		teams:       cfg.Teams,
		questions:   slices.Clone(questions),
		scores:      make([]int, len(cfg.Teams)),
		celebrating: -1,
		phase:       PhaseAwaitingReveal,
		delay:       DefaultCelebrationDelay,
		sched:       realScheduler{},
		notifier:    discardNotifier{},
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// Reveal shows the options or hint of the current question. Reveal is one-way:
// calling it again on the same question changes nothing.
func (s *Session) Reveal() error {
	return s.apply("reveal", func() ([]Event, error) {
		if err := s.checkOpen(); err != nil {
			return nil, err
		}
		if s.phase != PhaseAwaitingReveal {
			return nil, nil
		}
		s.revealed = true
		s.phase = PhaseRevealed
		return []Event{s.event(LevelInfo, EventRevealed, "Hints revealed", nil)}, nil
	})
}

// RecordAnswer credits team with a correct answer and starts its celebration.
func (s *Session) RecordAnswer(team int) error {
	return s.apply("record answer", func() ([]Event, error) {
		if err := s.checkOpen(); err != nil {
			return nil, err
		}
		if team < 0 || team >= len(s.teams) {
			return nil, fmt.Errorf("%w: %d", ErrTeamIndex, team)
		}
		switch s.phase {
		case PhaseAwaitingReveal:
			return nil, ErrNotRevealed
		case PhaseCelebrating:
			return nil, ErrCelebrating
		case PhaseScoreConfirmed:
			return nil, ErrAlreadyScored
		}

		s.scores[team] += bollyquiz.PointsPerAnswer
		s.celebrating = team
		s.phase = PhaseCelebrating
		s.scheduleCelebration()

		msg := fmt.Sprintf("%s scores %d points!", s.teams[team].Name, bollyquiz.PointsPerAnswer)
		return []Event{s.event(LevelSuccess, EventAnswerRecorded, msg, &team)}, nil
	})
}

// Advance moves past a scored question once its score summary is showing.
func (s *Session) Advance() error {
	return s.apply("advance", func() ([]Event, error) {
		if err := s.checkOpen(); err != nil {
			return nil, err
		}
		if s.phase != PhaseScoreConfirmed {
			return nil, fmt.Errorf("%w: cannot advance while %s", ErrInvalidTransition, s.phase)
		}
		return s.next(), nil
	})
}

// Skip moves to the next question without awarding points. It is available
// from every non-terminal phase and cuts a running celebration short.
func (s *Session) Skip() error {
	return s.apply("skip", func() ([]Event, error) {
		if err := s.checkOpen(); err != nil {
			return nil, err
		}
		s.cancelCelebration()
		skipped := s.event(LevelInfo, EventQuestionSkipped, fmt.Sprintf("Question %d skipped", s.current+1), nil)
		return append([]Event{skipped}, s.next()...), nil
	})
}

// CheckOption reports whether option i of a revealed multiple-choice question
// is correct. It only produces a notification; no state changes.
func (s *Session) CheckOption(i int) (bool, error) {
	var correct bool
	err := s.apply("check option", func() ([]Event, error) {
		if err := s.checkOpen(); err != nil {
			return nil, err
		}
		if !s.revealed {
			return nil, ErrNotRevealed
		}
		q := s.questions[s.current]
		if q.Kind != bollyquiz.KindMultipleChoice {
			return nil, ErrWrongVariant
		}
		if i < 0 || i >= len(q.Options) {
			return nil, fmt.Errorf("%w: %d", ErrOptionIndex, i)
		}
		correct = q.IsCorrectOption(i)
		if correct {
			return []Event{s.event(LevelSuccess, EventOptionChecked, "Correct Answer!", nil)}, nil
		}
		return []Event{s.event(LevelError, EventOptionChecked, "Wrong Answer!", nil)}, nil
	})
	return correct, err
}

// Result resolves the winner of a completed game.
func (s *Session) Result() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseComplete {
		return Result{}, ErrGameNotComplete
	}
	return NewResult(s.teams, s.scores), nil
}

// Close tears the session down. A pending celebration timer is cancelled and
// any callback already in flight becomes a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cancelCelebration()
}

// apply runs fn under the lock and delivers its events after unlocking, so a
// notifier may safely call back into the session.
func (s *Session) apply(op string, fn func() ([]Event, error)) error {
	s.mu.Lock()
	events, err := fn()
	if err != nil {
		events = []Event{s.event(LevelError, EventRejected, err.Error(), nil)}
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Debug("transition rejected", "op", op, "error", err)
	} else {
		s.logger.Debug("transition applied", "op", op)
	}
	for _, e := range events {
		s.notifier.Notify(e)
	}
	return err
}

func (s *Session) checkOpen() error {
	if s.closed {
		return ErrClosed
	}
	if s.phase == PhaseComplete {
		return ErrGameComplete
	}
	return nil
}

// next moves to the following question, or completes the game after the last.
// Must hold s.mu.
func (s *Session) next() []Event {
	s.revealed = false
	s.celebrating = -1
	if s.current == len(s.questions)-1 {
		s.phase = PhaseComplete
		res := NewResult(s.teams, s.scores)
		msg := fmt.Sprintf("%s wins with %d points!", res.WinnerTeam().Name, res.Scores[res.Winner])
		return []Event{s.event(LevelSuccess, EventGameComplete, msg, &res.Winner)}
	}
	s.current++
	s.phase = PhaseAwaitingReveal
	return []Event{s.event(LevelInfo, EventQuestionStarted, fmt.Sprintf("Question %d of %d", s.current+1, len(s.questions)), nil)}
}

// Must hold s.mu.
func (s *Session) scheduleCelebration() {
	s.timerSeq++
	seq := s.timerSeq
	s.timer = s.sched.AfterFunc(s.delay, func() { s.celebrationElapsed(seq) })
}

// Must hold s.mu.
func (s *Session) cancelCelebration() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerSeq++
	if s.phase == PhaseCelebrating {
		s.celebrating = -1
	}
}

func (s *Session) celebrationElapsed(seq uint64) {
	s.mu.Lock()
	if s.closed || seq != s.timerSeq || s.phase != PhaseCelebrating {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.celebrating = -1
	s.phase = PhaseScoreConfirmed
	ev := s.event(LevelInfo, EventScoreSummary, "Current Scores", nil)
	s.mu.Unlock()

	s.notifier.Notify(ev)
}

func (s *Session) event(level Level, typ EventType, msg string, team *int) Event {
	return Event{Level: level, Type: typ, Message: msg, Team: team, State: s.state()}
}
