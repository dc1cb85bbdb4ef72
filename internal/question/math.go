package question

import (
	"regexp"
	"strconv"
	"strings"
)

// mathematics returns an infix expression of 2-5 operands joined by + or -,
// with at least one operand >= 90.
func (g *Generator) mathematics() string {
	count := 2 + g.rng.Intn(4)
	nums := make([]int, count)

	large := false
	for i := range nums {
		nums[i] = 1 + g.rng.Intn(120)
		if nums[i] >= 90 {
			large = true
		}
	}
	if !large {
		nums[g.rng.Intn(count)] = 90 + g.rng.Intn(31)
	}

	parts := make([]string, 0, 2*count-1)
	for i, n := range nums {
		parts = append(parts, strconv.Itoa(n))
		if i < count-1 {
			if g.rng.Intn(2) == 0 {
				parts = append(parts, "+")
			} else {
				parts = append(parts, "-")
			}
		}
	}
	return strings.Join(parts, " ")
}

var mathTokenPattern = regexp.MustCompile(`[0-9]+|[+\-*/]`)

type mathToken struct {
	num   int
	op    byte
	isNum bool
}

// solveMath evaluates an arithmetic expression: * and / reduce first (integer
// floor division, division by zero yields 0), then + and - left to right.
// Negative results use a minus sign rather than an ASCII hyphen, matching the
// canonical answer form.
func solveMath(expr string) string {
	expr = strings.NewReplacer("−", "-", "–", "-").Replace(expr)

	var tokens []mathToken
	for _, raw := range mathTokenPattern.FindAllString(expr, -1) {
		if n, err := strconv.Atoi(raw); err == nil {
			tokens = append(tokens, mathToken{num: n, isNum: true})
		} else {
			tokens = append(tokens, mathToken{op: raw[0]})
		}
	}
	if len(tokens) == 0 {
		return ""
	}

	// Reduce multiplication and division in place.
	for i := 0; i < len(tokens); {
		t := tokens[i]
		if !t.isNum && (t.op == '*' || t.op == '/') && i > 0 && i < len(tokens)-1 &&
			tokens[i-1].isNum && tokens[i+1].isNum {
			lhs, rhs := tokens[i-1].num, tokens[i+1].num
			var result int
			if t.op == '*' {
				result = lhs * rhs
			} else if rhs != 0 {
				result = floorDiv(lhs, rhs)
			}
			reduced := append(tokens[:i-1], mathToken{num: result, isNum: true})
			tokens = append(reduced, tokens[i+2:]...)
			i--
			if i < 0 {
				i = 0
			}
		} else {
			i++
		}
	}

	if !tokens[0].isNum {
		return ""
	}
	result := tokens[0].num
	for i := 1; i+1 < len(tokens); i += 2 {
		if tokens[i].isNum || !tokens[i+1].isNum {
			return ""
		}
		rhs := tokens[i+1].num
		switch tokens[i].op {
		case '+':
			result += rhs
		case '-':
			result -= rhs
		}
	}

	return strings.ReplaceAll(strconv.Itoa(result), "-", "−")
}

// floorDiv matches floor division semantics for negative operands, where the
// quotient rounds toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
