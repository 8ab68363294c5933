package power

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseWatt returns the first run of decimal digits in s as an integer, or 0
// when there is none. It never fails: "65W", "TDP 65" and "approx 65 watts"
// all yield 65.
func ParseWatt(s string) int {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		return 0
	}
	n := 0
	for i := start; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := int(s[i] - '0')
		if n > (math.MaxInt-d)/10 {
			return math.MaxInt
		}
		n = n*10 + d
	}
	return n
}

// ParseCapacity tries a strict integer parse first and falls back to
// ParseWatt. Catalogs store PSU capacities both as clean integers and as
// decorated strings ("750 W", "750.0").
func ParseCapacity(s string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n
	}
	return ParseWatt(s)
}

// Stringify renders a dynamic record field the way it would be printed by the
// catalog API: whole floats lose their fractional part, nil is empty.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return Stringify(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
