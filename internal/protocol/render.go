package protocol

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Template rendering for the config-driven message strings. Each template
// recognizes a fixed set of named placeholders; anything else in the text,
// including braces around unknown names, is left verbatim.

var lower = cases.Lower(language.English)

// RenderReady fills the ready_info template. Recognized placeholders:
// {players}, {question_seconds}.
func RenderReady(tpl string, players int, questionSeconds int) string {
	return strings.NewReplacer(
		"{players}", fmt.Sprintf("%d", players),
		"{question_seconds}", fmt.Sprintf("%d", questionSeconds),
	).Replace(tpl)
}

// RenderFeedback fills the correct_feedback/incorrect_feedback templates.
// Recognized placeholders: {answer}, {correct_answer}.
func RenderFeedback(tpl, answer, correctAnswer string) string {
	return strings.NewReplacer(
		"{answer}", answer,
		"{correct_answer}", correctAnswer,
	).Replace(tpl)
}

// RenderWinner fills the final_extra template. Recognized placeholder: {winner}.
func RenderWinner(tpl, winner string) string {
	return strings.ReplaceAll(tpl, "{winner}", winner)
}

// RenderPositional fills the one_winner/multiple_winners and question body
// templates, which take a single positional argument. Recognized placeholder: {0}.
func RenderPositional(tpl, value string) string {
	return strings.ReplaceAll(tpl, "{0}", value)
}

// RenderQuestion builds the full trivia_question text from the configured
// question word, the 1-based round number, the category tag, and the question
// body. The category is displayed lower-case regardless of how the config
// spells it.
func RenderQuestion(questionWord string, number int, category, body string) string {
	return fmt.Sprintf("%s %d (%s):\n%s", questionWord, number, lower.String(category), body)
}
