package game

import (
	"slices"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
)

// Result is the Play→Winner payload.
type Result struct {
	Teams     []bollyquiz.Team `json:"teams"`
	Scores    []int            `json:"scores"`
	Winner    int              `json:"winner"`
	CoWinners []int            `json:"coWinners"`
}

func (r Result) WinnerTeam() bollyquiz.Team {
	if r.Winner < 0 || r.Winner >= len(r.Teams) {
		return bollyquiz.Team{}
	}
	return r.Teams[r.Winner]
}

// Tied reports whether more than one team shares the top score.
func (r Result) Tied() bool {
	return len(r.CoWinners) > 1
}

// ResolveWinner returns the lowest index holding the maximum score, and every
// index holding it. With no scores the winner is -1.
func ResolveWinner(scores []int) (int, []int) {
	if len(scores) == 0 {
		return -1, nil
	}
	best := slices.Max(scores)
	winner := slices.Index(scores, best)

	var tied []int
	for i, s := range scores {
		if s == best {
			tied = append(tied, i)
		}
	}
	return winner, tied
}

// NewResult resolves the winner for a finished set of scores. len(scores)
// must equal len(teams).
func NewResult(teams []bollyquiz.Team, scores []int) Result {
	winner, tied := ResolveWinner(scores)
	return Result{
		Teams:     slices.Clone(teams),
		Scores:    slices.Clone(scores),
		Winner:    winner,
		CoWinners: tied,
	}
}
