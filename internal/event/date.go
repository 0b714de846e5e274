package event

import "strings"

// StandardizeDate zero-pads the day and month segments of a DD/MM/YYYY date
// so that "1/2/2024" and "01/02/2024" produce the same fingerprint. The year
// segment is left untouched. Input that does not split into three segments
// is returned unchanged, and the function is idempotent on padded input.
func StandardizeDate(dateStr string) string {
	if dateStr == "" {
		return ""
	}
	parts := strings.Split(dateStr, "/")
	if len(parts) != 3 {
		return dateStr
	}
	return pad2(parts[0]) + "/" + pad2(parts[1]) + "/" + parts[2]
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
