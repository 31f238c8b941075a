package bollyquiz

import (
	"errors"
	"testing"
)

func TestQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Question
		wantErr bool
	}{
		{
			name: "multiple choice",
			q: Question{Kind: KindMultipleChoice, Text: "King of Bollywood?",
				Options: []string{"Amitabh", "Shah Rukh", "Salman", "Aamir"}, CorrectIndex: 1},
		},
		{
			name: "three options",
			q: Question{Kind: KindMultipleChoice, Text: "q",
				Options: []string{"a", "b", "c"}},
			wantErr: true,
		},
		{
			name: "correct index out of range",
			q: Question{Kind: KindMultipleChoice, Text: "q",
				Options: []string{"a", "b", "c", "d"}, CorrectIndex: 4},
			wantErr: true,
		},
		{
			name: "hint",
			q:    Question{Kind: KindHint, Text: "q", Hint: "h", Answer: "Sholay", Category: "Movies"},
		},
		{
			name:    "hint without answer",
			q:       Question{Kind: KindHint, Text: "q", Hint: "h"},
			wantErr: true,
		},
		{
			name:    "empty text",
			q:       Question{Kind: KindHint, Answer: "a"},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			q:       Question{Kind: "essay", Text: "q"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidQuestion) {
					t.Fatalf("expected ErrInvalidQuestion, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewHintTrimsCells(t *testing.T) {
	q, err := NewHint("  Who played Gabbar?  ", " villain ", " Amjad Khan ", " Movies ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text != "Who played Gabbar?" || q.Answer != "Amjad Khan" || q.Category != "Movies" || q.Hint != "villain" {
		t.Errorf("cells not trimmed: %+v", q)
	}
}

func TestIsCorrectOption(t *testing.T) {
	q, err := NewMultipleChoice("First Indian colour film?", []string{"Aan", "Kisan Kanya", "Mother India", "Awara"}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.IsCorrectOption(0) {
		t.Error("expected option 0 to be correct")
	}
	if q.IsCorrectOption(2) {
		t.Error("expected option 2 to be wrong")
	}

	h := Question{Kind: KindHint, Text: "q", Answer: "a"}
	if h.IsCorrectOption(0) {
		t.Error("hint questions have no correct option")
	}
}
