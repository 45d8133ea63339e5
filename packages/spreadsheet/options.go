package spreadsheet

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// DefaultSeedRowOffset is the grid row that receives the first seed row.
// row 1 is left for the exercise's column headings.
const DefaultSeedRowOffset = 2

// Option configures a Grid or an Engine.
type Option func(*config)

type config struct {
	seedRowOffset int
	strictNumbers bool
	errorMarker   string
}

// WithSeedRowOffset sets the row that receives the first seed row.
// offsets below 1 are clamped to 1.
func WithSeedRowOffset(row int) Option {
	return func(c *config) {
		c.seedRowOffset = max(row, 1)
	}
}

// WithStrictNumbers only counts cell values that are numbers as a whole.
// by default a leading number is enough, e.g. "12 kg" reads as 12.
func WithStrictNumbers() Option {
	return func(c *config) {
		c.strictNumbers = true
	}
}

// WithErrorMarker replaces the display text used for failed evaluations.
func WithErrorMarker(marker string) Option {
	return func(c *config) {
		if marker != "" {
			c.errorMarker = marker
		}
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		seedRowOffset: DefaultSeedRowOffset,
		errorMarker:   ErrorMarker,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// numericPrefix matches the longest leading number, spelled the way a
// browser's parseFloat reads it. "inf" and "NaN" are not numbers.
var numericPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// parseNumber reads a cell value as a number. blank values and values
// without a leading number are not numeric; with strictNumbers the whole
// trimmed value has to be the number.
func (c *config) parseNumber(value string) (float64, bool) {
	text := strings.TrimSpace(value)
	prefix := numericPrefix.FindString(text)
	if prefix == "" || (c.strictNumbers && prefix != text) {
		return 0, false
	}
	num, err := strconv.ParseFloat(prefix, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	// out of range values come back as +-Inf or 0, like parseFloat
	return num, true
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
