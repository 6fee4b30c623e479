package counter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Format renders a count for display with thousands separators, e.g. "1,234".
func Format(n int64) string {
	return printer.Sprintf("%d", n)
}

// ParseCount accepts a count encoded as a JSON number or a JSON string.
func ParseCount(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return parseNumber(s)
	}
	return parseNumber(string(raw))
}

func parseNumber(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("count %q is not a whole number", s)
	}
	// 2^63 is exact as a float64; anything at or past it overflows.
	if f < math.MinInt64 || f >= -math.MinInt64 {
		return 0, fmt.Errorf("count %q out of range", s)
	}
	return int64(f), nil
}
