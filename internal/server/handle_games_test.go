package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
	"github.com/playperu/bollyquiz/internal/game"
	"github.com/playperu/bollyquiz/internal/questions"
)

type fakeProvider struct {
	err error
}

func (p fakeProvider) Provide(context.Context, []string, int) ([]bollyquiz.Question, error) {
	return nil, p.err
}

func (p fakeProvider) Categories(context.Context) ([]string, error) {
	return nil, p.err
}

func testQuestions(t *testing.T) []bollyquiz.Question {
	t.Helper()
	var qs []bollyquiz.Question
	for _, c := range []struct{ text, hint, answer, cat string }{
		{"Name the film", "Bade bade deshon mein", "DDLJ", "Movies"},
		{"Name the song", "Tujhe dekha to", "Tujhe Dekha To", "Songs"},
		{"Who said it", "Kitne aadmi the", "Gabbar Singh", "Dialogues"},
	} {
		q, err := bollyquiz.NewHint(c.text, c.hint, c.answer, c.cat)
		if err != nil {
			t.Fatalf("NewHint: %v", err)
		}
		qs = append(qs, q)
	}
	return qs
}

func identity(int, func(i, j int)) {}

type testEnv struct {
	router chi.Router
	games  *Registry
	broker *Broker
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	if opts.Provider == nil {
		opts.Provider = questions.NewProvider(questions.NewStaticSource(testQuestions(t)), logger,
			questions.WithShuffle(identity))
	}
	if opts.CelebrationDelay == 0 {
		opts.CelebrationDelay = 100 * time.Millisecond
	}
	broker := NewBroker()
	games := NewRegistry(logger, broker, opts.Metrics)
	t.Cleanup(games.Close)
	return &testEnv{
		router: newRouter(logger, opts, games, broker, nil),
		games:  games,
		broker: broker,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func twoTeams() StartGameRequest {
	return StartGameRequest{
		Teams:         []bollyquiz.Team{{Name: "Red", Color: "#DC2626"}, {Name: "Blue", Color: "#2563EB"}},
		QuestionCount: 2,
	}
}

func (e *testEnv) start(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/games", twoTeams())
	wantStatus(t, rec, http.StatusCreated)
	return decode[GameResponse](t, rec).ID
}

// waitPhase polls the game until it reaches phase or the deadline passes.
func (e *testEnv) waitPhase(t *testing.T, id string, phase game.Phase) game.State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		rec := e.do(t, http.MethodGet, "/api/games/"+id, nil)
		wantStatus(t, rec, http.StatusOK)
		st := decode[GameResponse](t, rec).State
		if st.Phase == phase {
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("phase = %s, want %s", st.Phase, phase)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandleStartGame(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/api/games", twoTeams())
	wantStatus(t, rec, http.StatusCreated)

	resp := decode[GameResponse](t, rec)
	if resp.ID == "" {
		t.Fatal("missing game id")
	}
	if got := rec.Header().Get("Location"); got != "/api/games/"+resp.ID {
		t.Errorf("Location = %q", got)
	}
	st := resp.State
	if st.Phase != game.PhaseAwaitingReveal || st.QuestionIndex != 0 || st.QuestionCount != 2 {
		t.Errorf("state = %+v", st)
	}
	if !slices.Equal(st.Scores, []int{0, 0}) {
		t.Errorf("scores = %v, want [0 0]", st.Scores)
	}
	if st.Question == nil || st.Question.Hint != "" {
		t.Errorf("question = %+v, want hint hidden", st.Question)
	}
	if env.games.Len() != 1 {
		t.Errorf("games = %d, want 1", env.games.Len())
	}
}

func TestHandleStartGameInvalidSetup(t *testing.T) {
	env := newTestEnv(t, Options{Filtered: true})

	rec := env.do(t, http.MethodPost, "/api/games", StartGameRequest{
		Teams:         []bollyquiz.Team{{Name: "Solo"}},
		QuestionCount: 0,
	})
	wantStatus(t, rec, http.StatusUnprocessableEntity)

	resp := decode[ErrorResponse](t, rec)
	if resp.Redirect != setupPath {
		t.Errorf("redirect = %q, want %q", resp.Redirect, setupPath)
	}
	if len(resp.Details) != 3 {
		t.Errorf("details = %v, want team count, question count and categories", resp.Details)
	}
	if env.games.Len() != 0 {
		t.Errorf("games = %d, want 0", env.games.Len())
	}
}

func TestHandleStartGameBadJSON(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/api/games", "{not json")
	wantStatus(t, rec, http.StatusBadRequest)
	if resp := decode[ErrorResponse](t, rec); resp.Redirect != setupPath {
		t.Errorf("redirect = %q, want %q", resp.Redirect, setupPath)
	}
}

func TestHandleStartGameProviderErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"provider failed", questions.ErrProviderFailed, http.StatusServiceUnavailable},
		{"no questions", questions.ErrNoQuestions, http.StatusUnprocessableEntity},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Options{Provider: fakeProvider{err: tt.err}})
			rec := env.do(t, http.MethodPost, "/api/games", twoTeams())
			wantStatus(t, rec, tt.want)
		})
	}
}

func TestHandleStartGameFiltersCategories(t *testing.T) {
	env := newTestEnv(t, Options{Filtered: true})

	req := twoTeams()
	req.QuestionCount = 5
	req.Categories = []string{" Songs ", "Dialogues"}
	rec := env.do(t, http.MethodPost, "/api/games", req)
	wantStatus(t, rec, http.StatusCreated)

	st := decode[GameResponse](t, rec).State
	if st.QuestionCount != 2 {
		t.Errorf("question count = %d, want 2", st.QuestionCount)
	}
	if st.Question.Category != "Songs" {
		t.Errorf("first category = %q, want Songs", st.Question.Category)
	}
}

func TestHandleStartGameUnfilteredIgnoresCategories(t *testing.T) {
	src, err := questions.Builtin(bollyquiz.KindMultipleChoice)
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	provider := questions.NewProvider(src, slog.New(slog.DiscardHandler), questions.WithShuffle(identity))
	env := newTestEnv(t, Options{Provider: provider, Filtered: false})

	req := twoTeams()
	req.Categories = []string{"Movies"}
	rec := env.do(t, http.MethodPost, "/api/games", req)
	wantStatus(t, rec, http.StatusCreated)

	st := decode[GameResponse](t, rec).State
	if st.QuestionCount != 2 || st.Question.Kind != bollyquiz.KindMultipleChoice {
		t.Errorf("state = %+v, want 2 multiple-choice questions", st)
	}
}

func TestUnknownGame(t *testing.T) {
	env := newTestEnv(t, Options{})

	for _, path := range []string{"/api/games/nope", "/api/games/nope/reveal", "/api/games/nope/winner"} {
		method := http.MethodGet
		if strings.HasSuffix(path, "reveal") {
			method = http.MethodPost
		}
		rec := env.do(t, method, path, nil)
		wantStatus(t, rec, http.StatusNotFound)
		if resp := decode[ErrorResponse](t, rec); resp.Redirect != setupPath {
			t.Errorf("%s: redirect = %q, want %q", path, resp.Redirect, setupPath)
		}
	}
}

func TestPlayThroughToWinner(t *testing.T) {
	env := newTestEnv(t, Options{})
	id := env.start(t)
	base := "/api/games/" + id

	rec := env.do(t, http.MethodPost, base+"/answer", AnswerRequest{Team: new(int)})
	wantStatus(t, rec, http.StatusConflict)

	rec = env.do(t, http.MethodPost, base+"/reveal", nil)
	wantStatus(t, rec, http.StatusOK)
	st := decode[GameResponse](t, rec).State
	if !st.Revealed || st.Question.Hint == "" {
		t.Fatalf("state after reveal = %+v", st)
	}

	red := 0
	rec = env.do(t, http.MethodPost, base+"/answer", AnswerRequest{Team: &red})
	wantStatus(t, rec, http.StatusOK)
	st = decode[GameResponse](t, rec).State
	if st.Phase != game.PhaseCelebrating || !slices.Equal(st.Scores, []int{10, 0}) {
		t.Fatalf("state after answer = %+v", st)
	}

	rec = env.do(t, http.MethodPost, base+"/advance", nil)
	wantStatus(t, rec, http.StatusConflict)

	st = env.waitPhase(t, id, game.PhaseScoreConfirmed)
	if st.Question.Answer != "DDLJ" {
		t.Errorf("answer = %q, want DDLJ", st.Question.Answer)
	}

	rec = env.do(t, http.MethodGet, base+"/winner", nil)
	wantStatus(t, rec, http.StatusConflict)

	wantStatus(t, env.do(t, http.MethodPost, base+"/advance", nil), http.StatusOK)
	rec = env.do(t, http.MethodPost, base+"/skip", nil)
	wantStatus(t, rec, http.StatusOK)
	if st := decode[GameResponse](t, rec).State; st.Phase != game.PhaseComplete {
		t.Fatalf("phase = %s, want complete", st.Phase)
	}

	rec = env.do(t, http.MethodGet, base+"/winner", nil)
	wantStatus(t, rec, http.StatusOK)
	res := decode[game.Result](t, rec)
	if res.Winner != 0 || !slices.Equal(res.Scores, []int{10, 0}) {
		t.Errorf("result = %+v", res)
	}

	// The winner screen consumes the game.
	wantStatus(t, env.do(t, http.MethodGet, base, nil), http.StatusNotFound)
	if env.games.Len() != 0 {
		t.Errorf("games = %d, want 0", env.games.Len())
	}
}

func TestHandleAnswerRejections(t *testing.T) {
	env := newTestEnv(t, Options{})
	id := env.start(t)
	base := "/api/games/" + id
	wantStatus(t, env.do(t, http.MethodPost, base+"/reveal", nil), http.StatusOK)

	wantStatus(t, env.do(t, http.MethodPost, base+"/answer", map[string]any{}), http.StatusBadRequest)

	bad := 5
	wantStatus(t, env.do(t, http.MethodPost, base+"/answer", AnswerRequest{Team: &bad}), http.StatusUnprocessableEntity)

	blue := 1
	wantStatus(t, env.do(t, http.MethodPost, base+"/answer", AnswerRequest{Team: &blue}), http.StatusOK)
	wantStatus(t, env.do(t, http.MethodPost, base+"/answer", AnswerRequest{Team: &blue}), http.StatusConflict)

	rec := env.do(t, http.MethodGet, base, nil)
	if st := decode[GameResponse](t, rec).State; !slices.Equal(st.Scores, []int{0, 10}) {
		t.Errorf("scores = %v, want [0 10]", st.Scores)
	}
}

func TestHandleCheckOption(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	src, err := questions.Builtin(bollyquiz.KindMultipleChoice)
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	env := newTestEnv(t, Options{Provider: questions.NewProvider(src, logger, questions.WithShuffle(identity))})
	id := env.start(t)
	base := "/api/games/" + id

	opt := 0
	wantStatus(t, env.do(t, http.MethodPost, base+"/check", CheckRequest{Option: &opt}), http.StatusConflict)
	wantStatus(t, env.do(t, http.MethodPost, base+"/reveal", nil), http.StatusOK)
	wantStatus(t, env.do(t, http.MethodPost, base+"/check", map[string]any{}), http.StatusBadRequest)

	rec := env.do(t, http.MethodPost, base+"/check", CheckRequest{Option: &opt})
	wantStatus(t, rec, http.StatusOK)
	resp := decode[CheckResponse](t, rec)
	if len(resp.State.Question.Options) != bollyquiz.OptionCount {
		t.Errorf("options = %v", resp.State.Question.Options)
	}
	if !slices.Equal(resp.State.Scores, []int{0, 0}) {
		t.Errorf("scores = %v, checking must not score", resp.State.Scores)
	}

	bad := 9
	wantStatus(t, env.do(t, http.MethodPost, base+"/check", CheckRequest{Option: &bad}), http.StatusUnprocessableEntity)
}

func TestHandleCheckOptionOnHintGame(t *testing.T) {
	env := newTestEnv(t, Options{})
	base := "/api/games/" + env.start(t)
	wantStatus(t, env.do(t, http.MethodPost, base+"/reveal", nil), http.StatusOK)

	opt := 0
	wantStatus(t, env.do(t, http.MethodPost, base+"/check", CheckRequest{Option: &opt}), http.StatusUnprocessableEntity)
}

func TestHandleEndGame(t *testing.T) {
	env := newTestEnv(t, Options{})
	id := env.start(t)

	wantStatus(t, env.do(t, http.MethodDelete, "/api/games/"+id, nil), http.StatusNoContent)
	wantStatus(t, env.do(t, http.MethodDelete, "/api/games/"+id, nil), http.StatusNotFound)
}

func TestHandleCategories(t *testing.T) {
	env := newTestEnv(t, Options{Filtered: true})

	rec := env.do(t, http.MethodGet, "/api/categories", nil)
	wantStatus(t, rec, http.StatusOK)
	resp := decode[CategoriesResponse](t, rec)
	if !slices.Equal(resp.Categories, []string{"Dialogues", "Movies", "Songs"}) {
		t.Errorf("categories = %v", resp.Categories)
	}
	if !resp.Filtered {
		t.Error("filtered = false, want true")
	}

	env = newTestEnv(t, Options{Provider: fakeProvider{err: questions.ErrProviderFailed}})
	wantStatus(t, env.do(t, http.MethodGet, "/api/categories", nil), http.StatusServiceUnavailable)
}

func TestHandleValidateSetup(t *testing.T) {
	env := newTestEnv(t, Options{Filtered: true})

	req := twoTeams()
	req.Categories = []string{"Movies"}
	rec := env.do(t, http.MethodPost, "/api/setup/validate", req)
	wantStatus(t, rec, http.StatusOK)
	if resp := decode[ValidateResponse](t, rec); !resp.Valid || len(resp.Errors) != 0 {
		t.Errorf("resp = %+v, want valid", resp)
	}

	req.Teams[1].Name = "  "
	req.Categories = nil
	rec = env.do(t, http.MethodPost, "/api/setup/validate", req)
	wantStatus(t, rec, http.StatusOK)
	if resp := decode[ValidateResponse](t, rec); resp.Valid || len(resp.Errors) != 2 {
		t.Errorf("resp = %+v, want empty name and missing categories", resp)
	}

	wantStatus(t, env.do(t, http.MethodPost, "/api/setup/validate", "nope"), http.StatusBadRequest)
}

func TestHandleWinner(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodPost, "/api/winner", WinnerRequest{
		Teams:  []bollyquiz.Team{{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}},
		Scores: []int{10, 30, 30, 20},
	})
	wantStatus(t, rec, http.StatusOK)
	res := decode[game.Result](t, rec)
	if res.Winner != 1 || !slices.Equal(res.CoWinners, []int{1, 2}) {
		t.Errorf("result = %+v, want winner 1 tied with 2", res)
	}

	for _, body := range []any{
		"garbage",
		WinnerRequest{},
		WinnerRequest{Teams: []bollyquiz.Team{{Name: "A"}}, Scores: []int{1, 2}},
	} {
		rec := env.do(t, http.MethodPost, "/api/winner", body)
		wantStatus(t, rec, http.StatusBadRequest)
		if resp := decode[ErrorResponse](t, rec); resp.Redirect != setupPath {
			t.Errorf("redirect = %q, want %q", resp.Redirect, setupPath)
		}
	}
}

func TestHandleQR(t *testing.T) {
	env := newTestEnv(t, Options{})
	id := env.start(t)

	rec := env.do(t, http.MethodGet, "/api/games/"+id+"/qr.png", nil)
	wantStatus(t, rec, http.StatusOK)
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("content-type = %q, want image/png", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}
}

func TestPlayURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/games/abc/qr.png", nil)
	req.Host = "quiz.local:8080"

	if got := playURL(req, "", "abc"); got != "http://quiz.local:8080/play/abc" {
		t.Errorf("derived = %q", got)
	}
	req.Header.Set("X-Forwarded-Proto", "https")
	if got := playURL(req, "", "abc"); got != "https://quiz.local:8080/play/abc" {
		t.Errorf("forwarded = %q", got)
	}
	if got := playURL(req, "https://party.example/", "abc"); got != "https://party.example/play/abc" {
		t.Errorf("public = %q", got)
	}
}

func TestErrorList(t *testing.T) {
	a, b, c := errors.New("a"), errors.New("b"), errors.New("c")
	got := errorList(errors.Join(a, errors.Join(b, c)))
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("errorList = %v", got)
	}
	if errorList(nil) != nil {
		t.Error("errorList(nil) != nil")
	}
}
