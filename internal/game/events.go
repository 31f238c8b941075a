package game

// Level tells the presentation layer how to style a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type EventType string

const (
	EventRevealed        EventType = "revealed"
	EventAnswerRecorded  EventType = "answer_recorded"
	EventScoreSummary    EventType = "score_summary"
	EventQuestionStarted EventType = "question_started"
	EventQuestionSkipped EventType = "question_skipped"
	EventOptionChecked   EventType = "option_checked"
	EventGameComplete    EventType = "game_complete"
	EventRejected        EventType = "rejected"

	// EventSnapshot is never emitted by a session. Streams send it first so
	// a new subscriber starts from the current state.
	EventSnapshot EventType = "snapshot"
)

// Event is an advisory notification emitted after every transition. Nothing
// in the engine depends on it being delivered.
type Event struct {
	Level   Level     `json:"level"`
	Type    EventType `json:"type"`
	Message string    `json:"message"`
	Team    *int      `json:"team,omitempty"`
	State   State     `json:"state"`
}

// SnapshotEvent wraps st for a new subscriber.
func SnapshotEvent(st State) Event {
	return Event{Level: LevelInfo, Type: EventSnapshot, State: st}
}

type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

type discardNotifier struct{}

func (discardNotifier) Notify(Event) {}
