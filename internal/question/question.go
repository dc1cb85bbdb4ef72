// Package question generates trivia questions and judges submitted answers.
// It is the server's only source of question content; the session layer
// treats the categories and their grading rules as opaque.
package question

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Category tags recognized in the question_types config list. An unrecognized
// tag falls back to the network/broadcast generator.
const (
	Mathematics      = "Mathematics"
	RomanNumerals    = "Roman Numerals"
	UsableAddresses  = "Usable IP Addresses of a Subnet"
	NetworkBroadcast = "Network and Broadcast Address of a Subnet"
)

// Question is one generated question: the machine-readable short form handed
// to clients and the canonical answer used for grading.
type Question struct {
	Category string
	Short    string
	Answer   string
}

// Correct reports whether a submitted answer matches the canonical one under
// the category's normalization rules.
func (q Question) Correct(submitted string) bool {
	return Normalize(q.Category, submitted) == Normalize(q.Category, q.Answer)
}

// Source produces the next question for a category.
type Source interface {
	Next(category string) (Question, error)
}

// Number of times Next will regenerate to avoid a recently-issued question.
const generationAttempts = 5

// Generator is the default Source. It is not safe for concurrent use; the
// session event loop is its only caller.
type Generator struct {
	rng       *rand.Rand
	recent    *recentCache
	romanBand int
}

func NewGenerator() *Generator {
	return &Generator{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		recent: newRecentCache(),
	}
}

// Next generates a question for the category, retrying a bounded number of
// times if the short form was issued recently.
func (g *Generator) Next(category string) (Question, error) {
	var short string
	for attempt := 0; attempt < generationAttempts; attempt++ {
		short = g.generate(category)
		if !g.recent.seen(category, short) {
			break
		}
	}
	g.recent.remember(category, short)

	answer, err := Solve(category, short)
	if err != nil {
		return Question{}, fmt.Errorf("generating %s question: %w", category, err)
	}
	return Question{Category: category, Short: short, Answer: answer}, nil
}

func (g *Generator) generate(category string) string {
	switch category {
	case Mathematics:
		return g.mathematics()
	case RomanNumerals:
		return g.romanNumeral()
	case UsableAddresses:
		return g.cidr()
	default:
		return g.cidr()
	}
}

// Solve computes the canonical answer for a short question. It is shared by
// the server's grading and the client's auto mode.
func Solve(category, short string) (string, error) {
	switch category {
	case Mathematics:
		return solveMath(short), nil
	case RomanNumerals:
		return strconv.Itoa(romanToInt(short)), nil
	case UsableAddresses:
		_, prefix, err := parseCIDR(short)
		if err != nil {
			return "", err
		}
		return usableHosts(prefix), nil
	default:
		return networkAndBroadcast(short)
	}
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// Normalize standardizes an answer for comparison under a category's rules.
func Normalize(category, s string) string {
	s = strings.TrimSpace(s)
	switch category {
	case Mathematics:
		// Negative results are accepted with either an ASCII hyphen or a
		// minus sign.
		return strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), "-", "−")
	case RomanNumerals:
		return strings.ToUpper(s)
	case NetworkBroadcast:
		return whitespacePattern.ReplaceAllString(strings.ReplaceAll(s, ",", " "), " ")
	default:
		return s
	}
}
