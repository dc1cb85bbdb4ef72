package question

import (
	"fmt"
	"testing"
)

func TestSolveMath(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{"1 + 2", "3"},
		{"10 - 20", "−10"},
		{"100 - 7 - 3", "90"},
		{"90 + 14 - 100 + 1", "5"},
		{"2 * 3 + 4", "10"},
		{"4 + 2 * 3", "10"},
		{"10 / 3", "3"},
		{"10 / 3 + 1", "4"},
		{"7 / 0", "0"},
		{"100 - 7 / 0", "100"},
		{"2 * 3 * 4", "24"},
		{"119", "119"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if got := solveMath(tt.expr); got != tt.expected {
				t.Errorf("solveMath(%q) = %q, expected %q", tt.expr, got, tt.expected)
			}
		})
	}
}

func TestSolveMathAcceptsMinusSignOperators(t *testing.T) {
	if got := solveMath("10 − 20"); got != "−10" {
		t.Errorf("solveMath = %q, expected %q", got, "−10")
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b, expected int
	}{
		{10, 3, 3},
		{9, 3, 3},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
	}

	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.expected {
			t.Errorf("floorDiv(%d, %d) = %d, expected %d", tt.a, tt.b, got, tt.expected)
		}
	}
}

func TestRomanConversions(t *testing.T) {
	tests := []struct {
		number  int
		numeral string
	}{
		{1, "I"},
		{4, "IV"},
		{9, "IX"},
		{14, "XIV"},
		{40, "XL"},
		{90, "XC"},
		{400, "CD"},
		{944, "CMXLIV"},
		{1990, "MCMXC"},
		{2024, "MMXXIV"},
		{3999, "MMMCMXCIX"},
	}

	for _, tt := range tests {
		t.Run(tt.numeral, func(t *testing.T) {
			if got := intToRoman(tt.number); got != tt.numeral {
				t.Errorf("intToRoman(%d) = %q, expected %q", tt.number, got, tt.numeral)
			}
			if got := romanToInt(tt.numeral); got != tt.number {
				t.Errorf("romanToInt(%q) = %d, expected %d", tt.numeral, got, tt.number)
			}
		})
	}
}

func TestRomanNumeralCyclesBands(t *testing.T) {
	g := NewGenerator()

	for i, band := range romanBands {
		numeral := g.romanNumeral()
		value := romanToInt(numeral)

		lo, hi := band[0], band[1]-1
		if hi > 3999 {
			hi = 3999
		}
		if value < lo || value > hi {
			t.Errorf("draw %d: romanToInt(%q) = %d, expected within [%d, %d]", i, numeral, value, lo, hi)
		}
	}
}

func TestUsableHosts(t *testing.T) {
	tests := []struct {
		prefix   int
		expected string
	}{
		{0, "4294967294"},
		{8, "16777214"},
		{24, "254"},
		{30, "2"},
		{31, "0"},
		{32, "0"},
	}

	for _, tt := range tests {
		if got := usableHosts(tt.prefix); got != tt.expected {
			t.Errorf("usableHosts(%d) = %q, expected %q", tt.prefix, got, tt.expected)
		}
	}
}

func TestNetworkAndBroadcast(t *testing.T) {
	tests := []struct {
		cidr     string
		expected string
	}{
		{"192.168.1.130/25", "192.168.1.128 and 192.168.1.255"},
		{"10.11.12.13/8", "10.0.0.0 and 10.255.255.255"},
		{"172.16.5.9/16", "172.16.0.0 and 172.16.255.255"},
		{"0.0.0.0/0", "0.0.0.0 and 255.255.255.255"},
		{"198.51.100.4/31", "198.51.100.4 and 198.51.100.5"},
		{"203.0.113.7/32", "203.0.113.7 and 203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.cidr, func(t *testing.T) {
			got, err := networkAndBroadcast(tt.cidr)
			if err != nil {
				t.Fatalf("networkAndBroadcast(%q) returned error: %v", tt.cidr, err)
			}
			if got != tt.expected {
				t.Errorf("networkAndBroadcast(%q) = %q, expected %q", tt.cidr, got, tt.expected)
			}
		})
	}
}

func TestParseCIDRRejectsMalformedInput(t *testing.T) {
	tests := []string{
		"nonsense",
		"1.2.3/8",
		"1.2.3.4.5/8",
		"1.2.3.4/33",
		"1.2.3.4/-1",
		"1.2.3.256/8",
		"1.2.3.4/x",
	}

	for _, short := range tests {
		if _, _, err := parseCIDR(short); err == nil {
			t.Errorf("parseCIDR(%q) expected an error", short)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		category string
		input    string
		expected string
	}{
		{Mathematics, " - 42 ", "−42"},
		{Mathematics, "−42", "−42"},
		{Mathematics, "1 0 5", "105"},
		{RomanNumerals, "mcmxc", "MCMXC"},
		{RomanNumerals, " xiv ", "XIV"},
		{NetworkBroadcast, "10.0.0.0,  10.255.255.255", "10.0.0.0 10.255.255.255"},
		{NetworkBroadcast, "10.0.0.0 and\t10.255.255.255", "10.0.0.0 and 10.255.255.255"},
		{UsableAddresses, " 254 ", "254"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.category, tt.input); got != tt.expected {
			t.Errorf("Normalize(%q, %q) = %q, expected %q", tt.category, tt.input, got, tt.expected)
		}
	}
}

func TestCorrectAppliesCategoryNormalization(t *testing.T) {
	tests := []struct {
		question  Question
		submitted string
		correct   bool
	}{
		{Question{Category: Mathematics, Short: "10 - 20", Answer: "−10"}, "-10", true},
		{Question{Category: Mathematics, Short: "10 - 20", Answer: "−10"}, "10", false},
		{Question{Category: RomanNumerals, Short: "XIV", Answer: "14"}, " 14", true},
		{Question{Category: NetworkBroadcast, Short: "10.0.0.1/8", Answer: "10.0.0.0 and 10.255.255.255"},
			"10.0.0.0 and 10.255.255.255", true},
		{Question{Category: NetworkBroadcast, Short: "10.0.0.1/8", Answer: "10.0.0.0 and 10.255.255.255"},
			"10.0.0.0 and  10.255.255.255", true},
		{Question{Category: UsableAddresses, Short: "10.0.0.1/24", Answer: "254"}, "255", false},
	}

	for _, tt := range tests {
		if got := tt.question.Correct(tt.submitted); got != tt.correct {
			t.Errorf("Correct(%q) for %s answer %q = %v, expected %v",
				tt.submitted, tt.question.Category, tt.question.Answer, got, tt.correct)
		}
	}
}

// Every generated question must be gradeable: the canonical answer has to
// pass the question's own correctness check, and the shared solver has to
// reproduce it from the short form.
func TestGeneratorSolvesItsOwnQuestions(t *testing.T) {
	categories := []string{Mathematics, RomanNumerals, UsableAddresses, NetworkBroadcast}
	g := NewGenerator()

	for _, category := range categories {
		t.Run(category, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				q, err := g.Next(category)
				if err != nil {
					t.Fatalf("Next(%q) returned error: %v", category, err)
				}
				if q.Short == "" || q.Answer == "" {
					t.Fatalf("Next(%q) returned incomplete question: %+v", category, q)
				}
				if !q.Correct(q.Answer) {
					t.Errorf("canonical answer %q rejected for question %q", q.Answer, q.Short)
				}

				solved, err := Solve(category, q.Short)
				if err != nil {
					t.Fatalf("Solve(%q, %q) returned error: %v", category, q.Short, err)
				}
				if solved != q.Answer {
					t.Errorf("Solve(%q, %q) = %q, expected %q", category, q.Short, solved, q.Answer)
				}
			}
		})
	}
}

func TestRecentCache(t *testing.T) {
	cache := newRecentCache()

	if cache.seen(Mathematics, "1 + 2") {
		t.Error("expected an empty cache to report nothing seen")
	}
	cache.remember(Mathematics, "1 + 2")
	if !cache.seen(Mathematics, "1 + 2") {
		t.Error("expected a remembered question to be reported seen")
	}
	if cache.seen(RomanNumerals, "1 + 2") {
		t.Error("expected the same short form under another category to be unseen")
	}
}

func TestMathematicsAlwaysIncludesLargeOperand(t *testing.T) {
	g := NewGenerator()

	for i := 0; i < 100; i++ {
		expr := g.mathematics()
		large := false
		for _, raw := range mathTokenPattern.FindAllString(expr, -1) {
			var n int
			if _, err := fmt.Sscanf(raw, "%d", &n); err == nil && n >= 90 {
				large = true
			}
		}
		if !large {
			t.Fatalf("expression %q has no operand >= 90", expr)
		}
	}
}
