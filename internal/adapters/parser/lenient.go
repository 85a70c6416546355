// Package parser turns loosely bracketed textual lists such as
// "[1.0, 2.0]" into float slices.
//
// Accepted shapes are `"[1.0, 2.0]"`, `[1.0, 2.0]` and `1.0, 2.0`. Fields are
// separated by commas, empty fields are kept, and every field is converted
// with LenientFloat, so anything that is not a number becomes 0.
package parser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/baditaflorin/go_string_similarity/internal/core/domain"
	"github.com/baditaflorin/go_string_similarity/internal/ports"
)

// MinInputLength is the shortest input accepted, in characters.
const MinInputLength = 3

var (
	// ErrInputTooShort is returned in strict mode for inputs under MinInputLength characters.
	ErrInputTooShort = errors.New("input too short to hold an array")
	// ErrInvalidField is wrapped by FieldError.
	ErrInvalidField = errors.New("field is not a number")
)

// FieldError reports the first field that failed strict parsing.
type FieldError struct {
	Index int
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %d (%q): %v", e.Index, e.Field, ErrInvalidField)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidField
}

// ParseFloatArray parses text leniently. OK is false only when text is
// shorter than MinInputLength characters.
func ParseFloatArray(text string) domain.FloatArray {
	return parseLenient(text, nil)
}

// parseLenient splits text once and converts each field, calling coerced
// for every field that has no numeric prefix.
func parseLenient(text string, coerced func(index int, field string)) domain.FloatArray {
	fields, ok := splitFields(text)
	if !ok {
		return domain.FloatArray{Values: []float64{}}
	}

	values := make([]float64, len(fields))
	for i, field := range fields {
		end := numericPrefix(field)
		if end == 0 {
			if coerced != nil {
				coerced(i, field)
			}
			continue
		}
		values[i] = convert(field[:end])
	}
	return domain.FloatArray{Values: values, OK: true, Fields: len(fields)}
}

// ParseFloatArrayStrict parses text like ParseFloatArray but fails on the
// first field that is not entirely a number.
func ParseFloatArrayStrict(text string) (domain.FloatArray, error) {
	fields, ok := splitFields(text)
	if !ok {
		return domain.FloatArray{Values: []float64{}}, ErrInputTooShort
	}

	values := make([]float64, len(fields))
	for i, field := range fields {
		end := numericPrefix(field)
		if end == 0 || end != len(field) {
			return domain.FloatArray{Values: []float64{}}, &FieldError{Index: i, Field: field}
		}
		values[i] = convert(field)
	}
	return domain.FloatArray{Values: values, OK: true, Fields: len(fields)}, nil
}

// splitFields strips the optional quotes and brackets and returns the trimmed fields.
func splitFields(text string) ([]string, bool) {
	if utf8.RuneCountInString(text) < MinInputLength {
		return nil, false
	}

	text = strings.TrimPrefix(text, `"`)
	text = strings.TrimSuffix(text, `"`)
	text = strings.TrimPrefix(text, "[")
	text = strings.TrimSuffix(text, "]")

	if text == "" {
		return []string{}, true
	}

	fields := strings.Split(text, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields, true
}

// LenientFloat converts the longest numeric prefix of s, returning 0 when
// there is none. "1.5abc" is 1.5, "abc" and "" are 0.
func LenientFloat(s string) float64 {
	end := numericPrefix(s)
	if end == 0 {
		return 0
	}
	return convert(s[:end])
}

func convert(s string) float64 {
	// strconv rejects a signed nan.
	if len(s) == 4 && (s[0] == '+' || s[0] == '-') && strings.EqualFold(s[1:], "nan") {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	// Out of range values saturate to ±Inf or 0 like atof.
	return v
}

// numericPrefix returns the length of the longest prefix of s that is a
// decimal float: [sign] digits [. digits] [e [sign] digits], or inf, infinity, nan.
func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	if n := specialPrefix(s[i:]); n > 0 {
		return i + n
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		start := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > start {
			i = j
		}
	}
	return i
}

func specialPrefix(s string) int {
	for _, word := range []string{"infinity", "inf", "nan"} {
		if len(s) >= len(word) && strings.EqualFold(s[:len(word)], word) {
			return len(word)
		}
	}
	return 0
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Parser parses arrays in lenient or strict mode.
type Parser struct {
	strict bool
	logger ports.Logger
}

var _ ports.ArrayParser = (*Parser)(nil)

// NewParser creates a new Parser.
func NewParser(strict bool, logger ports.Logger) *Parser {
	return &Parser{strict: strict, logger: logger}
}

// Parse converts text into a FloatArray. Errors are only returned in strict mode.
func (p *Parser) Parse(text string) (domain.FloatArray, error) {
	p.logger.Debug("Parsing float array", "text", text, "strict", p.strict)

	if p.strict {
		result, err := ParseFloatArrayStrict(text)
		if err != nil {
			p.logger.Warn("Strict array parse failed", "text", text, "error", err)
			return result, fmt.Errorf("parse float array: %w", err)
		}
		return result, nil
	}

	result := parseLenient(text, func(index int, field string) {
		p.logger.Debug("Field coerced to zero", "index", index, "field", field)
	})
	if !result.OK {
		p.logger.Debug("Input too short for an array", "text", text)
		return result, nil
	}

	p.logger.Debug("Parsed float array", "fields", result.Fields, "values", result.Values)
	return result, nil
}
