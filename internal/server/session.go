package server

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tlawson/trivium/internal/core"
	"github.com/tlawson/trivium/internal/core/client"
	"github.com/tlawson/trivium/internal/data"
	"github.com/tlawson/trivium/internal/protocol"
	"github.com/tlawson/trivium/internal/question"
)

// SessionState is the top-level lifecycle of the one game a server hosts.
type SessionState int

const (
	// StateLobby sessions are waiting for the configured player count.
	StateLobby SessionState = iota
	// StateInProgress sessions are running rounds.
	StateInProgress
	// StateFinished is terminal; final standings have been sent.
	StateFinished
)

// MatchRecorder archives a finished session. data.Store implements it; a nil
// recorder disables history.
type MatchRecorder interface {
	Record(match *data.Match) error
}

type timerPurpose int

const (
	timerNone timerPurpose = iota
	// timerDeadline closes the open round.
	timerDeadline
	// timerInterlude ends the pause between rounds and opens the next one.
	timerInterlude
)

// Inbound events posted by the connection readers. Each carries the
// connection it originated from; the registry resolves it to a player.
type (
	joinEvent struct {
		conn     *client.Client
		username string
	}
	answerEvent struct {
		conn *client.Client
		text string
	}
	leaveEvent struct {
		conn *client.Client
	}
	disconnectEvent struct {
		conn *client.Client
	}
)

// Session drives the game end to end: it waits for the lobby to fill, runs
// rounds in configured order, grades them, broadcasts leaderboards, and emits
// final standings. All state transitions happen on the single goroutine
// inside Run, which consumes connection events and timer expirations; that
// loop is the only serialization point the server needs.
type Session struct {
	cfg      *core.Config
	logger   *logrus.Logger
	source   question.Source
	clock    Clock
	recorder MatchRecorder

	registry *Registry
	events   chan event

	done     chan struct{}
	doneOnce sync.Once

	state        SessionState
	roundIdx     int
	round        *Round
	timerC       <-chan time.Time
	timerPurpose timerPurpose

	startedAt time.Time
	roundLog  []data.MatchRound
}

type event interface{}

// NewSession creates a session for the configured player count and question
// sequence. A nil clock uses the system clock; a nil recorder disables match
// history.
func NewSession(cfg *core.Config, logger *logrus.Logger, source question.Source, clock Clock, recorder MatchRecorder) *Session {
	if clock == nil {
		clock = systemClock{}
	}
	return &Session{
		cfg:      cfg,
		logger:   logger,
		source:   source,
		clock:    clock,
		recorder: recorder,
		registry: NewRegistry(cfg.Players, logger),
		events:   make(chan event, 64),
		done:     make(chan struct{}),
	}
}

// Join offers a new connection to the session under the given display name.
func (s *Session) Join(conn *client.Client, username string) {
	s.post(joinEvent{conn: conn, username: username})
}

// Answer submits an answer for the current round.
func (s *Session) Answer(conn *client.Client, text string) {
	s.post(answerEvent{conn: conn, text: text})
}

// Leave reports a graceful departure (client sent BYE).
func (s *Session) Leave(conn *client.Client) {
	s.post(leaveEvent{conn: conn})
}

// Disconnect reports that a connection's socket errored or closed.
func (s *Session) Disconnect(conn *client.Client) {
	s.post(disconnectEvent{conn: conn})
}

// Done is closed once the session reaches its terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *Session) closeDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

// Run executes the session to completion. It returns nil after final
// standings have been sent, or the context error on cancellation.
func (s *Session) Run(ctx context.Context) error {
	defer s.closeDone()

	for s.state != StateFinished {
		select {
		case <-ctx.Done():
			s.registry.CloseAll()
			return ctx.Err()
		case ev := <-s.events:
			s.handleEvent(ev)
		case <-s.timerC:
			s.handleTimer()
		}
	}
	return nil
}

func (s *Session) handleEvent(ev event) {
	switch ev := ev.(type) {
	case joinEvent:
		s.handleJoin(ev)
	case answerEvent:
		s.handleAnswer(ev)
	case leaveEvent:
		s.handleDeparture(ev.conn)
	case disconnectEvent:
		s.handleDeparture(ev.conn)
	}
}

func (s *Session) handleJoin(ev joinEvent) {
	if s.state != StateLobby {
		s.logger.Infof("rejecting connection from %s: session already started", ev.conn.IPAddr())
		_ = ev.conn.Close()
		return
	}

	p, err := s.registry.Seat(ev.conn, ev.username)
	if err != nil {
		s.logger.Infof("rejecting connection from %s: %v", ev.conn.IPAddr(), err)
		_ = ev.conn.Close()
		return
	}
	s.logger.Infof("seated player %d (%s) from %s", p.ID, p.Name, ev.conn.IPAddr())

	if s.registry.SeatedCount() == s.cfg.Players {
		s.startGame()
	}
}

func (s *Session) startGame() {
	s.state = StateInProgress
	s.startedAt = s.clock.Now()
	s.logger.Infof("lobby full with %d players, starting game", s.cfg.Players)

	info := protocol.RenderReady(s.cfg.ReadyInfo, s.cfg.Players, int(s.cfg.QuestionSeconds))
	s.registry.Broadcast(&protocol.Ready{MessageType: protocol.TypeReady, Info: info})
	s.processDepartures()

	if s.state == StateInProgress {
		s.openRound()
	}
}

func (s *Session) handleAnswer(ev answerEvent) {
	p := s.registry.Lookup(ev.conn)
	if p == nil || s.state != StateInProgress || s.round == nil {
		return
	}

	if !s.round.Submit(p.ID, ev.text, s.clock.Now()) {
		s.logger.Debugf("ignoring answer from player %d (%s)", p.ID, p.Name)
		return
	}
	s.logger.Debugf("player %d (%s) answered round %d", p.ID, p.Name, s.round.Number)

	if s.round.AllAnswered(s.registry.ConnectedIDs()) {
		s.closeAndGrade()
	}
}

func (s *Session) handleDeparture(conn *client.Client) {
	p := s.registry.Lookup(conn)
	if p == nil {
		// Never seated, or the departure was already observed via a failed send.
		_ = conn.Close()
		return
	}
	s.registry.MarkDeparted(p)
	s.processDepartures()
}

// processDepartures drains pending departures, frees or announces the seats,
// and reacts to the reduced player set: a round everyone remaining has
// answered closes early, and a session with nobody left finishes.
func (s *Session) processDepartures() {
	for {
		departed := s.registry.TakeDeparted()
		if len(departed) == 0 {
			break
		}
		for _, p := range departed {
			s.logger.Infof("player %d (%s) left the session", p.ID, p.Name)
			switch s.state {
			case StateLobby:
				s.registry.Release(p)
			case StateInProgress:
				s.registry.Broadcast(&protocol.Bye{MessageType: protocol.TypeBye, Username: p.Name})
			}
		}
	}

	if s.state != StateInProgress {
		return
	}

	if s.registry.ConnectedCount() == 0 {
		if s.round != nil && s.round.State() == RoundOpen {
			s.round.Close()
		}
		s.finish()
		return
	}

	if s.round != nil && s.round.State() == RoundOpen && s.round.AllAnswered(s.registry.ConnectedIDs()) {
		s.closeAndGrade()
	}
}

func (s *Session) handleTimer() {
	purpose := s.timerPurpose
	s.timerC = nil
	s.timerPurpose = timerNone

	switch purpose {
	case timerDeadline:
		s.closeAndGrade()
	case timerInterlude:
		s.openRound()
	}
}

func (s *Session) setTimer(d time.Duration, purpose timerPurpose) {
	s.timerC = s.clock.After(d)
	s.timerPurpose = purpose
}

func (s *Session) openRound() {
	if s.roundIdx >= len(s.cfg.QuestionTypes) {
		s.finish()
		return
	}

	category := s.cfg.QuestionTypes[s.roundIdx]
	q, err := s.source.Next(category)
	if err != nil {
		s.logger.Errorf("error generating question for round %d: %v", s.roundIdx+1, err)
		s.finish()
		return
	}

	round := NewRound(s.roundIdx+1, q)
	round.Open(s.clock.Now(), s.cfg.QuestionWindow(), s.registry.ConnectedIDs())
	s.round = round
	s.logger.Infof("round %d (%s) open: %s", round.Number, category, q.Short)

	body := q.Short
	if tpl, ok := s.cfg.QuestionFormats[category]; ok {
		body = protocol.RenderPositional(tpl, q.Short)
	}

	s.registry.Broadcast(&protocol.Question{
		MessageType:    protocol.TypeQuestion,
		TriviaQuestion: protocol.RenderQuestion(s.cfg.QuestionWord, round.Number, category, body),
		QuestionType:   category,
		ShortQuestion:  q.Short,
		TimeLimit:      s.cfg.QuestionSeconds,
	})
	s.setTimer(s.cfg.QuestionWindow(), timerDeadline)
	s.processDepartures()
}

// closeAndGrade ends the open round, grades every surviving player's answer,
// sends the private results, and either finishes the session or schedules
// the next round behind a leaderboard broadcast.
func (s *Session) closeAndGrade() {
	if s.round == nil || s.round.State() != RoundOpen {
		return
	}
	s.round.Close()

	results := s.round.Grade(s.registry.ConnectedIDs())
	correctCount := 0
	for _, res := range results {
		p := s.registry.ByID(res.Player)
		if p == nil {
			continue
		}

		tpl := s.cfg.IncorrectFeedback
		if res.Correct {
			p.Score++
			correctCount++
			tpl = s.cfg.CorrectFeedback
		}
		s.registry.Send(p, &protocol.Result{
			MessageType: protocol.TypeResult,
			Correct:     res.Correct,
			Feedback:    protocol.RenderFeedback(tpl, res.Answer, s.round.Question.Answer),
			Score:       p.Score,
		})
	}
	s.logger.Infof("round %d graded: %d/%d correct", s.round.Number, correctCount, len(results))

	s.roundLog = append(s.roundLog, data.MatchRound{
		Number:         s.round.Number,
		Category:       s.round.Question.Category,
		ShortQuestion:  s.round.Question.Short,
		CorrectAnswers: correctCount,
	})
	s.roundIdx++

	s.processDepartures()
	if s.state != StateInProgress {
		return
	}

	if s.roundIdx >= len(s.cfg.QuestionTypes) {
		s.finish()
		return
	}

	s.registry.Broadcast(&protocol.Leaderboard{
		MessageType: protocol.TypeLeaderboard,
		State:       s.formatStandings(),
	})
	s.processDepartures()
	if s.state != StateInProgress {
		return
	}

	s.setTimer(s.cfg.QuestionInterval(), timerInterlude)
}

// finish broadcasts final standings to every remaining connection, archives
// the match, and closes the session. It is the only place the session enters
// its terminal state while running normally.
func (s *Session) finish() {
	if s.state == StateFinished {
		return
	}
	s.state = StateFinished
	s.timerC = nil
	s.timerPurpose = timerNone

	ranked := s.rankedPlayers()
	text := s.cfg.FinalStandingsHeading + "\n" + s.formatStandings() + "\n" + s.winnerTail(ranked)

	s.registry.Broadcast(&protocol.Finished{
		MessageType:    protocol.TypeFinished,
		FinalStandings: text,
	})
	s.logger.Infof("session finished after %d rounds", len(s.roundLog))

	s.recordHistory(ranked)
	s.registry.CloseAll()
	s.closeDone()
}

// rankedPlayers returns every player, connected or not, sorted by descending
// score with ties broken by ascending identity.
func (s *Session) rankedPlayers() []*Player {
	ranked := append([]*Player(nil), s.registry.Players()...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}

// formatStandings renders the ranked score lines shared by the leaderboard
// and final standings. Equal scores share a rank.
func (s *Session) formatStandings() string {
	var lines []string
	rank, lastScore := 0, -1
	for idx, p := range s.rankedPlayers() {
		if p.Score != lastScore {
			rank = idx + 1
			lastScore = p.Score
		}
		unit := s.cfg.PointsNounPlural
		if p.Score == 1 {
			unit = s.cfg.PointsNounSingular
		}
		lines = append(lines, fmt.Sprintf("%d. %s: %d %s", rank, p.Name, p.Score, unit))
	}
	return strings.Join(lines, "\n")
}

// winnerTail renders the closing line of the final standings, picking the
// one_winner/multiple_winners templates when configured and falling back to
// final_extra.
func (s *Session) winnerTail(ranked []*Player) string {
	if len(ranked) == 0 {
		return s.cfg.FinalExtra
	}

	top := ranked[0].Score
	var winners []string
	for _, p := range ranked {
		if p.Score == top {
			winners = append(winners, p.Name)
		}
	}

	joined := strings.Join(winners, ", ")
	switch {
	case len(winners) == 1 && s.cfg.OneWinner != "":
		return protocol.RenderPositional(s.cfg.OneWinner, winners[0])
	case len(winners) > 1 && s.cfg.MultipleWinners != "":
		return protocol.RenderPositional(s.cfg.MultipleWinners, joined)
	default:
		return protocol.RenderWinner(s.cfg.FinalExtra, joined)
	}
}

func (s *Session) recordHistory(ranked []*Player) {
	if s.recorder == nil {
		return
	}

	match := &data.Match{
		StartedAt:   s.startedAt,
		FinishedAt:  s.clock.Now(),
		PlayerCount: len(ranked),
		Rounds:      s.roundLog,
	}
	rank, lastScore := 0, -1
	for idx, p := range ranked {
		if p.Score != lastScore {
			rank = idx + 1
			lastScore = p.Score
		}
		match.Players = append(match.Players, data.MatchPlayer{
			Seat:         int(p.ID),
			Name:         p.Name,
			Score:        p.Score,
			Rank:         rank,
			Disconnected: !p.Connected,
		})
	}

	if err := s.recorder.Record(match); err != nil {
		s.logger.Warnf("error recording match history: %v", err)
	}
}
