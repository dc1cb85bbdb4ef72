// The client command is a terminal player for trivium. It reads a CONNECT
// command from stdin, joins the session under the configured username, and
// then either prompts the user for answers or (in auto mode) solves the
// questions itself.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/tlawson/trivium/internal/core"
	"github.com/tlawson/trivium/internal/core/client"
	"github.com/tlawson/trivium/internal/protocol"
	"github.com/tlawson/trivium/internal/question"
)

const dialTimeout = 3 * time.Second

var configFlag = flag.String("config", "", "Path to the client config file")

func main() {
	flag.Parse()

	configPath := *configFlag
	if configPath == "" {
		configPath = flag.Arg(0)
	}
	config := core.LoadConfig(configPath)

	if config.ClientMode == "ai" && len(config.OllamaConfig) == 0 {
		fmt.Fprintln(os.Stderr, "missing values for Ollama configuration")
		os.Exit(1)
	}

	stdin := bufio.NewScanner(os.Stdin)
	if !stdin.Scan() {
		return
	}
	command := strings.TrimSpace(stdin.Text())
	if !strings.HasPrefix(command, "CONNECT ") {
		return
	}
	address := strings.TrimSpace(strings.TrimPrefix(command, "CONNECT "))

	connection, err := net.DialTimeout("tcp", address, dialTimeout)
	if err != nil {
		fmt.Println("Connection failed")
		return
	}

	c := client.NewClient(connection)
	defer c.Close()

	if err := c.Send(&protocol.Hello{
		MessageType: protocol.TypeHello,
		Username:    config.Username,
	}); err != nil {
		fmt.Println("Connection failed")
		return
	}

	play(c, config, stdin)
}

// play runs the receive loop until the session finishes or the connection
// drops. A RESULT marking the previous answer incorrect makes the client sit
// out the following question entirely.
func play(c *client.Client, config *core.Config, stdin *bufio.Scanner) {
	skipNextQuestion := false

	for {
		line, err := c.ReadLine()
		if err != nil {
			return
		}
		if len(line) == 0 {
			continue
		}

		message, err := protocol.Decode(line)
		if err != nil {
			continue
		}

		switch m := message.(type) {
		case *protocol.Ready:
			if m.Info != "" {
				fmt.Println(m.Info)
			}

		case *protocol.Question:
			if skipNextQuestion {
				skipNextQuestion = false
				continue
			}
			if m.TriviaQuestion != "" {
				fmt.Println(m.TriviaQuestion)
			}

			answer := answerFor(config.ClientMode, m, stdin)
			if err := c.Send(&protocol.Answer{
				MessageType: protocol.TypeAnswer,
				Answer:      answer,
			}); err != nil {
				return
			}

		case *protocol.Result:
			fmt.Println(m.Feedback)
			if !m.Correct {
				skipNextQuestion = true
			}

		case *protocol.Leaderboard:
			if m.State != "" {
				fmt.Println(m.State)
			}

		case *protocol.Bye:
			if m.Username != "" {
				fmt.Printf("%s left the game\n", m.Username)
			}

		case *protocol.Finished:
			if m.FinalStandings != "" {
				fmt.Println(m.FinalStandings)
			}
			if m.Winners != "" {
				fmt.Printf("The winners are: %s\n", m.Winners)
			}
			return
		}
	}
}

// answerFor produces the answer for a question based on the client mode:
// "you" prompts on stdin, "auto" solves the short form, and anything else
// (including the ai baseline, which makes no external calls) answers blank.
func answerFor(mode string, q *protocol.Question, stdin *bufio.Scanner) string {
	switch mode {
	case "you":
		if stdin.Scan() {
			return strings.TrimSpace(stdin.Text())
		}
		return ""
	case "auto":
		answer, err := question.Solve(q.QuestionType, q.ShortQuestion)
		if err != nil {
			return ""
		}
		return answer
	default:
		return ""
	}
}
