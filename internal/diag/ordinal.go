package diag

import "strconv"

// ordinal renders n as an English ordinal: "0th", "1st", "2nd", "3rd",
// "4th", ..., "11th", "21st", and so on. The specification calls out
// "0th"/"1st"/"2nd"/"3rd" explicitly (the small seq values an argument
// position actually takes) and otherwise falls back to the general rule,
// which this implements in full rather than special-casing only those four.
func ordinal(n int) string {
	suffix := "th"
	abs := n
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs%100 >= 11 && abs%100 <= 13:
		suffix = "th"
	default:
		switch abs % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
