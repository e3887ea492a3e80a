package numeric

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var multipliers = map[string]float64{
	"billion":  1_000_000_000,
	"million":  1_000_000,
	"thousand": 1_000,
	"crore":    10_000_000,
	"crores":   10_000_000,
	"lakh":     100_000,
	"lakhs":    100_000,
	"b":        1_000_000_000,
	"m":        1_000_000,
	"k":        1_000,
	"cr":       10_000_000,
	"l":        100_000,
}

var amountPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([a-z]+)?$`)

// ParseAmount converts money strings like "$4.2 million", "₹3 crore" or
// "1,500" into their numeric value.
func ParseAmount(value string) (float64, error) {
	cleaned := strings.TrimSpace(value)
	for _, sym := range []string{"$", "₹", "€", "£", ",", " "} {
		cleaned = strings.ReplaceAll(cleaned, sym, "")
	}
	cleaned = strings.ToLower(cleaned)

	match := amountPattern.FindStringSubmatch(cleaned)
	if match == nil {
		return 0, fmt.Errorf("not a monetary amount: %q", value)
	}

	number, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, fmt.Errorf("not a monetary amount: %q", value)
	}
	if unit := match[2]; unit != "" {
		mult, ok := multipliers[unit]
		if !ok {
			return 0, fmt.Errorf("unknown magnitude unit %q in %q", unit, value)
		}
		return number * mult, nil
	}
	return number, nil
}

// ParsePercent converts "12%" or "+3.5 %" into a decimal fraction.
func ParsePercent(value string) (float64, error) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.TrimPrefix(cleaned, "+")
	cleaned = strings.TrimSpace(cleaned)
	number, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("not a percentage: %q", value)
	}
	return number / 100, nil
}

// ParseValue picks the parser by the placeholder category the value was
// masked under. Anything that is not money or a percent parses as a plain
// float.
func ParseValue(value string, category string) (float64, error) {
	switch {
	case strings.HasPrefix(category, "PERCENT"):
		return ParsePercent(value)
	case strings.HasPrefix(category, "MONEY"):
		return ParseAmount(value)
	default:
		return strconv.ParseFloat(strings.TrimSpace(value), 64)
	}
}
