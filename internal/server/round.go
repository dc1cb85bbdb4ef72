package server

import (
	"time"

	"github.com/tlawson/trivium/internal/question"
)

// RoundState is the lifecycle of one question round.
type RoundState int

const (
	// RoundPending rounds have been created but not announced.
	RoundPending RoundState = iota
	// RoundOpen rounds accept answers until the deadline.
	RoundOpen
	// RoundClosed rounds ignore further answers but have not been graded.
	RoundClosed
	// RoundGraded is terminal.
	RoundGraded
)

// Round owns the state for one question: the answer window, the set of
// players eligible to answer (those connected when it opened), and each
// player's first submission.
type Round struct {
	Number   int
	Question question.Question

	state    RoundState
	openedAt time.Time
	deadline time.Time

	eligible map[PlayerID]bool
	answers  map[PlayerID]string
}

// GradeResult is the outcome for a single player in a graded round.
type GradeResult struct {
	Player  PlayerID
	Answer  string
	Correct bool
}

func NewRound(number int, q question.Question) *Round {
	return &Round{
		Number:   number,
		Question: q,
		state:    RoundPending,
		eligible: make(map[PlayerID]bool),
		answers:  make(map[PlayerID]string),
	}
}

func (r *Round) State() RoundState { return r.state }

// Deadline reports when the answer window closes. Only meaningful after Open.
func (r *Round) Deadline() time.Time { return r.deadline }

// Open starts the answer window. Only the given players (those connected at
// open time) may submit.
func (r *Round) Open(now time.Time, window time.Duration, players []PlayerID) {
	if r.state != RoundPending {
		return
	}
	r.state = RoundOpen
	r.openedAt = now
	r.deadline = now.Add(window)
	for _, id := range players {
		r.eligible[id] = true
	}
}

// Submit records a player's answer. The first answer wins; late, repeat, and
// ineligible submissions are ignored. It reports whether the answer was
// accepted.
func (r *Round) Submit(id PlayerID, answer string, now time.Time) bool {
	if r.state != RoundOpen || !now.Before(r.deadline) {
		return false
	}
	if !r.eligible[id] {
		return false
	}
	if _, answered := r.answers[id]; answered {
		return false
	}
	r.answers[id] = answer
	return true
}

// AllAnswered reports whether every still-connected eligible player has
// submitted, which ends the round ahead of the deadline.
func (r *Round) AllAnswered(connected []PlayerID) bool {
	for _, id := range connected {
		if !r.eligible[id] {
			continue
		}
		if _, answered := r.answers[id]; !answered {
			return false
		}
	}
	return true
}

// Close ends the answer window.
func (r *Round) Close() {
	if r.state == RoundOpen {
		r.state = RoundClosed
	}
}

// Grade evaluates the round for every eligible player still in connected.
// A player with no recorded answer is scored incorrect. Players who left
// after the round opened are excluded entirely. Results are returned in the
// order of connected, which callers keep in ascending identity order.
func (r *Round) Grade(connected []PlayerID) []GradeResult {
	if r.state != RoundClosed {
		return nil
	}
	r.state = RoundGraded

	var results []GradeResult
	for _, id := range connected {
		if !r.eligible[id] {
			continue
		}
		answer, answered := r.answers[id]
		results = append(results, GradeResult{
			Player:  id,
			Answer:  answer,
			Correct: answered && r.Question.Correct(answer),
		})
	}
	return results
}
