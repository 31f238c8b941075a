//go:build cucumber

package game

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"testing"

	"github.com/cucumber/godog"
)

// TestPlayScenarios runs the play round feature scenarios.
func TestPlayScenarios(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "play",
		ScenarioInitializer: InitializePlayScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("testdata", "features", "play.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializePlayScenario wires steps for the play round scenarios.
func InitializePlayScenario(ctx *godog.ScenarioContext) {
	state := &playScenarioState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if state.session != nil {
			state.session.Close()
		}
		return ctx, err
	})

	ctx.Step(`^teams "([^"]+)" and "([^"]+)"$`, state.givenTeams)
	ctx.Step(`^(\d+) hint questions$`, state.givenHintQuestions)
	ctx.Step(`^"([^"]+)" answers question (\d+)$`, state.whenTeamAnswers)
	ctx.Step(`^the host credits "([^"]+)" without revealing$`, state.whenHostCredits)
	ctx.Step(`^the host credits "([^"]+)"$`, state.whenHostCredits)
	ctx.Step(`^"([^"]+)" is credited$`, state.whenHostCredits)
	ctx.Step(`^the host reveals the question$`, state.whenHostReveals)
	ctx.Step(`^the host skips (\d+) questions$`, state.whenHostSkips)
	ctx.Step(`^the game is complete$`, state.thenGameComplete)
	ctx.Step(`^the scores are (\d+) and (\d+)$`, state.thenScores)
	ctx.Step(`^the winner is "([^"]+)"$`, state.thenWinner)
	ctx.Step(`^the transition is rejected with "([^"]+)"$`, state.thenRejected)
}

// playScenarioState holds one session and the fake clock driving it.
type playScenarioState struct {
	names   []string
	session *Session
	sched   *fakeScheduler
	lastErr error
}

func (s *playScenarioState) reset() {
	s.names = nil
	s.session = nil
	s.sched = &fakeScheduler{}
	s.lastErr = nil
}

func (s *playScenarioState) givenTeams(a, b string) error {
	s.names = []string{a, b}
	return nil
}

func (s *playScenarioState) givenHintQuestions(n int) error {
	session, err := New(testConfig(s.names...), hintQuestions(n), WithScheduler(s.sched))
	if err != nil {
		return err
	}
	s.session = session
	return nil
}

func (s *playScenarioState) team(name string) (int, error) {
	i := slices.Index(s.names, name)
	if i < 0 {
		return 0, fmt.Errorf("unknown team %q", name)
	}
	return i, nil
}

func (s *playScenarioState) whenTeamAnswers(name string, question int) error {
	if got := s.session.Snapshot().QuestionIndex + 1; got != question {
		return fmt.Errorf("on question %d, expected %d", got, question)
	}
	team, err := s.team(name)
	if err != nil {
		return err
	}
	if err := s.session.Reveal(); err != nil {
		return err
	}
	if err := s.session.RecordAnswer(team); err != nil {
		return err
	}
	s.sched.fire(false)
	return s.session.Advance()
}

func (s *playScenarioState) whenHostReveals() error {
	return s.session.Reveal()
}

func (s *playScenarioState) whenHostCredits(name string) error {
	team, err := s.team(name)
	if err != nil {
		return err
	}
	s.lastErr = s.session.RecordAnswer(team)
	return nil
}

func (s *playScenarioState) whenHostSkips(n int) error {
	for range n {
		if err := s.session.Skip(); err != nil {
			return err
		}
	}
	return nil
}

func (s *playScenarioState) thenGameComplete() error {
	if phase := s.session.Snapshot().Phase; phase != PhaseComplete {
		return fmt.Errorf("phase is %s, expected complete", phase)
	}
	return nil
}

func (s *playScenarioState) thenScores(a, b int) error {
	if got := s.session.Snapshot().Scores; !slices.Equal(got, []int{a, b}) {
		return fmt.Errorf("scores are %v, expected [%d %d]", got, a, b)
	}
	return nil
}

func (s *playScenarioState) thenWinner(name string) error {
	res, err := s.session.Result()
	if err != nil {
		return err
	}
	if got := res.WinnerTeam().Name; got != name {
		return fmt.Errorf("winner is %q, expected %q", got, name)
	}
	return nil
}

func (s *playScenarioState) thenRejected(msg string) error {
	if s.lastErr == nil {
		return fmt.Errorf("expected rejection %q, got none", msg)
	}
	if s.lastErr.Error() != msg {
		return fmt.Errorf("rejected with %q, expected %q", s.lastErr, msg)
	}
	return nil
}
