package protocol

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeTerminatesFrames(t *testing.T) {
	data, err := Encode(&Answer{MessageType: TypeAnswer, Answer: "42"})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	if !strings.HasSuffix(string(data), "\n") {
		t.Errorf("expected frame to end with a newline, got %q", data)
	}
	if strings.Count(string(data), "\n") != 1 {
		t.Errorf("expected exactly one newline in frame, got %q", data)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected interface{}
	}{
		{
			name:     "hello",
			line:     `{"message_type":"HI","username":"alice"}`,
			expected: &Hello{MessageType: TypeHello, Username: "alice"},
		},
		{
			name:     "answer",
			line:     `{"message_type":"ANSWER","answer":"−10"}`,
			expected: &Answer{MessageType: TypeAnswer, Answer: "−10"},
		},
		{
			name:     "bye without username",
			line:     `{"message_type":"BYE"}`,
			expected: &Bye{MessageType: TypeBye},
		},
		{
			name:     "bye with username",
			line:     `{"message_type":"BYE","username":"bob"}`,
			expected: &Bye{MessageType: TypeBye, Username: "bob"},
		},
		{
			name:     "ready",
			line:     `{"message_type":"READY","info":"Get ready to play!"}`,
			expected: &Ready{MessageType: TypeReady, Info: "Get ready to play!"},
		},
		{
			name: "question",
			line: `{"message_type":"QUESTION","trivia_question":"Question 1 (mathematics):\n1 + 2","question_type":"Mathematics","short_question":"1 + 2","time_limit":1.5}`,
			expected: &Question{
				MessageType:    TypeQuestion,
				TriviaQuestion: "Question 1 (mathematics):\n1 + 2",
				QuestionType:   "Mathematics",
				ShortQuestion:  "1 + 2",
				TimeLimit:      1.5,
			},
		},
		{
			name:     "result",
			line:     `{"message_type":"RESULT","correct":true,"feedback":"Great job mate!","score":3}`,
			expected: &Result{MessageType: TypeResult, Correct: true, Feedback: "Great job mate!", Score: 3},
		},
		{
			name:     "leaderboard",
			line:     `{"message_type":"LEADERBOARD","state":"1. alice: 1 dream"}`,
			expected: &Leaderboard{MessageType: TypeLeaderboard, State: "1. alice: 1 dream"},
		},
		{
			name:     "finished",
			line:     `{"message_type":"FINISHED","final_standings":"Final standings:\n1. alice: 2 dreams\nalice wins!"}`,
			expected: &Finished{MessageType: TypeFinished, FinalStandings: "Final standings:\n1. alice: 2 dreams\nalice wins!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message, err := Decode([]byte(tt.line))
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if diff := cmp.Diff(tt.expected, message); diff != "" {
				t.Errorf("decoded message did not match expected\n%s", diff)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"not json", "hello there"},
		{"truncated json", `{"message_type":"HI"`},
		{"unknown type", `{"message_type":"SHRUG"}`},
		{"missing type", `{"answer":"42"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.line)); err == nil {
				t.Errorf("Decode(%q) expected an error", tt.line)
			}
		})
	}
}

func TestEncodeDecodeAgree(t *testing.T) {
	original := &Question{
		MessageType:    TypeQuestion,
		TriviaQuestion: "Question 2 (roman numerals):\nMCMXC",
		QuestionType:   "Roman Numerals",
		ShortQuestion:  "MCMXC",
		TimeLimit:      10,
	}

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	decoded, err := Decode(data[:len(data)-1])
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Errorf("round-tripped message did not match original\n%s", diff)
	}
}
