package year

// chineseDigits maps Chinese numerals (including formal variants) to values.
var chineseDigits = map[rune]int{
	'零': 0, '〇': 0, '一': 1, '二': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
	'壹': 1, '贰': 2, '叁': 3, '肆': 4, '伍': 5,
	'陆': 6, '柒': 7, '捌': 8, '玖': 9,
}

// ChineseNumeralYear converts a four-numeral Chinese year such as 二〇二三
// or 二零二四 to its integer value. The boolean is false when the input is
// not exactly four single-digit numerals.
func ChineseNumeralYear(s string) (int, bool) {
	var digits []int
	for _, r := range s {
		v, ok := chineseDigits[r]
		if !ok {
			return 0, false
		}
		digits = append(digits, v)
	}
	if len(digits) != 4 {
		return 0, false
	}
	return digits[0]*1000 + digits[1]*100 + digits[2]*10 + digits[3], true
}
