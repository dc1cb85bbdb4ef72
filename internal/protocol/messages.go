// Package protocol defines the newline-delimited JSON messages exchanged
// between the trivium server and its clients, along with the template
// rendering used to build the user-facing strings they carry.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Values carried in the message_type field of every message.
const (
	TypeHello       = "HI"
	TypeAnswer      = "ANSWER"
	TypeBye         = "BYE"
	TypeReady       = "READY"
	TypeQuestion    = "QUESTION"
	TypeResult      = "RESULT"
	TypeLeaderboard = "LEADERBOARD"
	TypeFinished    = "FINISHED"
)

// Hello is the first message a client must send: it claims a seat in the
// session under the given display name.
type Hello struct {
	MessageType string `json:"message_type"`
	Username    string `json:"username"`
}

// Answer carries a player's submission for the current round.
type Answer struct {
	MessageType string `json:"message_type"`
	Answer      string `json:"answer"`
}

// Bye is sent by a client leaving gracefully. The server also broadcasts it
// to the surviving players with the departed player's name filled in.
type Bye struct {
	MessageType string `json:"message_type"`
	Username    string `json:"username,omitempty"`
}

// Ready announces that enough players have connected and the game is starting.
type Ready struct {
	MessageType string `json:"message_type"`
	Info        string `json:"info"`
}

// Question opens a round. TriviaQuestion is the rendered human-readable
// prompt; ShortQuestion is the machine-readable form auto clients solve.
type Question struct {
	MessageType    string  `json:"message_type"`
	TriviaQuestion string  `json:"trivia_question"`
	QuestionType   string  `json:"question_type"`
	ShortQuestion  string  `json:"short_question"`
	TimeLimit      float64 `json:"time_limit"`
}

// Result is the private per-player grading outcome for a round.
type Result struct {
	MessageType string `json:"message_type"`
	Correct     bool   `json:"correct"`
	Feedback    string `json:"feedback"`
	Score       int    `json:"score"`
}

// Leaderboard carries the rendered standings between rounds.
type Leaderboard struct {
	MessageType string `json:"message_type"`
	State       string `json:"state"`
}

// Finished is the terminal broadcast with the full final standings. Winners
// is an optional comma-separated list of the top-scoring names.
type Finished struct {
	MessageType    string `json:"message_type"`
	FinalStandings string `json:"final_standings"`
	Winners        string `json:"winners,omitempty"`
}

// Encode marshals a message and appends the newline that terminates every
// frame on the wire.
func Encode(message interface{}) ([]byte, error) {
	data, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("encoding %T: %w", message, err)
	}
	return append(data, '\n'), nil
}

// envelope is the superset of fields across all message kinds, used to decode
// a line before dispatching on message_type.
type envelope struct {
	MessageType    string  `json:"message_type"`
	Username       string  `json:"username"`
	Answer         string  `json:"answer"`
	Info           string  `json:"info"`
	TriviaQuestion string  `json:"trivia_question"`
	QuestionType   string  `json:"question_type"`
	ShortQuestion  string  `json:"short_question"`
	TimeLimit      float64 `json:"time_limit"`
	Correct        bool    `json:"correct"`
	Feedback       string  `json:"feedback"`
	Score          int     `json:"score"`
	State          string  `json:"state"`
	FinalStandings string  `json:"final_standings"`
	Winners        string  `json:"winners"`
}

// Decode parses one line into its typed message. Lines that are not valid
// JSON or that carry an unknown message_type produce an error; callers on the
// server side treat that as a non-message rather than a failure.
func Decode(line []byte) (interface{}, error) {
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, fmt.Errorf("decoding message: %w", err)
	}

	switch env.MessageType {
	case TypeHello:
		return &Hello{MessageType: env.MessageType, Username: env.Username}, nil
	case TypeAnswer:
		return &Answer{MessageType: env.MessageType, Answer: env.Answer}, nil
	case TypeBye:
		return &Bye{MessageType: env.MessageType, Username: env.Username}, nil
	case TypeReady:
		return &Ready{MessageType: env.MessageType, Info: env.Info}, nil
	case TypeQuestion:
		return &Question{
			MessageType:    env.MessageType,
			TriviaQuestion: env.TriviaQuestion,
			QuestionType:   env.QuestionType,
			ShortQuestion:  env.ShortQuestion,
			TimeLimit:      env.TimeLimit,
		}, nil
	case TypeResult:
		return &Result{
			MessageType: env.MessageType,
			Correct:     env.Correct,
			Feedback:    env.Feedback,
			Score:       env.Score,
		}, nil
	case TypeLeaderboard:
		return &Leaderboard{MessageType: env.MessageType, State: env.State}, nil
	case TypeFinished:
		return &Finished{MessageType: env.MessageType, FinalStandings: env.FinalStandings, Winners: env.Winners}, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", env.MessageType)
	}
}
