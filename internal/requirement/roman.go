package requirement

import (
	"strconv"
	"strings"
)

var romanSymbols = [...][2]string{
	{"I", "V"},
	{"X", "L"},
	{"C", "D"},
	{"M", ""},
}

// ToRoman converts n in [1, 3999] to a Roman numeral in subtractive
// notation, one decimal digit at a time.
func ToRoman(n int) string {
	digits := strconv.Itoa(n)
	var out string
	for pos := 0; pos < len(digits) && pos < len(romanSymbols); pos++ {
		c := int(digits[len(digits)-1-pos] - '0')
		one, five := romanSymbols[pos][0], romanSymbols[pos][1]
		ten := ""
		if pos+1 < len(romanSymbols) {
			ten = romanSymbols[pos+1][0]
		}

		var d string
		switch {
		case c == 9:
			d = one + ten
			c = 0
		case c >= 5:
			d = five
			c -= 5
		case c == 4:
			d = one + five
			c = 0
		}
		out = d + strings.Repeat(one, c) + out
	}
	return out
}
