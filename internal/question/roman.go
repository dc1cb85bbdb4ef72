package question

var romanTable = []struct {
	symbol string
	value  int
}{
	{"M", 1000}, {"CM", 900}, {"D", 500}, {"CD", 400},
	{"C", 100}, {"XC", 90}, {"L", 50}, {"XL", 40},
	{"X", 10}, {"IX", 9}, {"V", 5}, {"IV", 4}, {"I", 1},
}

var romanValues = map[byte]int{
	'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000,
}

// Numeric bands the generator cycles through so that consecutive questions
// cover the whole 2-3999 range instead of clustering.
var romanBands = [][2]int{
	{2, 202}, {202, 402}, {402, 602}, {602, 802}, {802, 1002},
	{1002, 1202}, {1202, 1402}, {1402, 1602}, {1602, 1802}, {1802, 2002},
	{2002, 2202}, {2202, 2402}, {2402, 2602}, {2602, 2802}, {2802, 3002},
	{3002, 3202}, {3202, 3402}, {3402, 3602}, {3602, 3802}, {3802, 4002},
}

// romanNumeral returns the numeral for a value drawn from the next band,
// capped at 3999.
func (g *Generator) romanNumeral() string {
	band := romanBands[g.romanBand%len(romanBands)]
	g.romanBand++

	lo := band[0]
	hi := band[1] - 1
	if hi > 3999 {
		hi = 3999
	}
	return intToRoman(lo + g.rng.Intn(hi-lo+1))
}

func intToRoman(n int) string {
	var out []byte
	for _, entry := range romanTable {
		for n >= entry.value {
			out = append(out, entry.symbol...)
			n -= entry.value
		}
	}
	return string(out)
}

func romanToInt(s string) int {
	total, prev := 0, 0
	for i := len(s) - 1; i >= 0; i-- {
		v := romanValues[s[i]]
		if v < prev {
			total -= v
		} else {
			total += v
		}
		prev = v
	}
	return total
}
