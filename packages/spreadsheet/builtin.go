package spreadsheet

import (
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"
)

// AggregateKind identifies one of the supported range functions
type AggregateKind int

const (
	AggregateSum AggregateKind = iota
	AggregateMin
	AggregateMax
	AggregateAverage
)

// supportedFunctions lists the canonical names in autocomplete order
var supportedFunctions = []AggregateKind{
	AggregateSum,
	AggregateMin,
	AggregateMax,
	AggregateAverage,
}

// Name returns the canonical function name
func (k AggregateKind) Name() string {
	switch k {
	case AggregateSum:
		return "SUMME"
	case AggregateMin:
		return "MIN"
	case AggregateMax:
		return "MAX"
	case AggregateAverage:
		return "MITTELWERT"
	default:
		return fmt.Sprintf("AGGREGATE(%d)", int(k))
	}
}

func (k AggregateKind) String() string {
	return k.Name()
}

// LookupFunction matches name case-insensitively against the supported
// functions. anything else, including names the exercise advertises but
// never implemented (WENN, ZÄHLENWENN, VERKETTUNG), is unknown.
func LookupFunction(name string) (AggregateKind, bool) {
	upper := strings.ToUpper(name)
	for _, kind := range supportedFunctions {
		if kind.Name() == upper {
			return kind, true
		}
	}
	return 0, false
}

// SupportedFunctions returns the canonical function names
func SupportedFunctions() []string {
	names := make([]string, 0, len(supportedFunctions))
	for _, kind := range supportedFunctions {
		names = append(names, kind.Name())
	}
	return names
}

// Suggest returns the supported function names starting with prefix,
// compared case-insensitively. an empty prefix suggests every function.
func Suggest(prefix string) []string {
	upper := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(prefix), "="))
	var out []string
	for _, name := range SupportedFunctions() {
		if strings.HasPrefix(name, upper) {
			out = append(out, name)
		}
	}
	return out
}

// compute folds the range into the aggregate's result in one pass. the
// returned text is the aggregate's own formatting, used when the result
// is substituted back into the formula.
func (k AggregateKind) compute(values iter.Seq[RangeValue]) (float64, string) {
	var (
		result float64
		sum    float64
		count  int
	)
	for v := range values {
		// absent, blank and non-numeric cells add nothing to the sum and
		// are left out of the MIN/MAX/MITTELWERT sample
		if !v.Numeric {
			continue
		}
		switch {
		case count == 0:
			result = v.Number
		case k == AggregateMin:
			result = math.Min(result, v.Number)
		case k == AggregateMax:
			result = math.Max(result, v.Number)
		}
		sum += v.Number
		count++
	}

	switch {
	case k == AggregateSum:
		return sum, formatPlain(sum)
	case count == 0:
		return 0, "0"
	case k == AggregateAverage:
		avg := sum / float64(count)
		text := formatFixed(avg)
		// arithmetic continues with the rounded average
		rounded, err := strconv.ParseFloat(text, 64)
		if err != nil {
			rounded = avg
		}
		return rounded, text
	default:
		return result, formatPlain(result)
	}
}

// formatPlain renders a number with the fewest digits that round-trip,
// never in exponent form.
func formatPlain(v float64) string {
	if s, ok := formatSpecial(v); ok {
		return s
	}
	if v == 0 {
		return "0" // also covers negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatFixed renders a number with two decimals
func formatFixed(v float64) string {
	if s, ok := formatSpecial(v); ok {
		return s
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

func formatSpecial(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "NaN", true
	case math.IsInf(v, 1):
		return "Infinity", true
	case math.IsInf(v, -1):
		return "-Infinity", true
	default:
		return "", false
	}
}
