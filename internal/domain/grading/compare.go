package grading

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// ComparisonKind enumerates the closed set of comparison strategies.
type ComparisonKind string

const (
	KindExact                 ComparisonKind = "exact"
	KindAlmostString          ComparisonKind = "almost_string"
	KindAlmostNumber          ComparisonKind = "almost_number"
	KindCaseInsensitive       ComparisonKind = "case_insensitive"
	KindWhitespaceInsensitive ComparisonKind = "whitespace_insensitive"
	KindContains              ComparisonKind = "contains"
	KindCombined              ComparisonKind = "combined"
)

// Defaults used by the suite loader when a parameter is omitted.
const (
	DefaultMaxDistance = 2
	DefaultPrecision   = 7
)

// Expectation is one expected output entry: a comparison strategy bound to
// an expected string. The zero value is invalid; use the constructors.
type Expectation struct {
	Kind        ComparisonKind
	Expected    string
	MaxDistance int
	Precision   int
	Parts       []Expectation
}

// Exact expects the output line to equal the expected string byte for byte.
func Exact(expected string) Expectation {
	return Expectation{Kind: KindExact, Expected: expected}
}

// AlmostString accepts an output line whose Levenshtein distance from the
// expected string does not exceed maxDistance.
func AlmostString(expected string, maxDistance int) Expectation {
	return Expectation{Kind: KindAlmostString, Expected: expected, MaxDistance: maxDistance}
}

// AlmostNumber accepts an output line that parses to the same decimal number
// as the expected string after rounding both to the given number of places.
func AlmostNumber(expected string, precision int) Expectation {
	return Expectation{Kind: KindAlmostNumber, Expected: expected, Precision: precision}
}

// CaseInsensitive compares the line and the expected string in lower case.
func CaseInsensitive(expected string) Expectation {
	return Expectation{Kind: KindCaseInsensitive, Expected: expected}
}

// WhitespaceInsensitive compares after removing all whitespace from both sides.
func WhitespaceInsensitive(expected string) Expectation {
	return Expectation{Kind: KindWhitespaceInsensitive, Expected: expected}
}

// Contains accepts any output line containing the expected string.
func Contains(expected string) Expectation {
	return Expectation{Kind: KindContains, Expected: expected}
}

// Combine chains equality-style expectations: every part rewrites both the
// expected and the actual string in turn, and the final pair is compared
// verbatim. Order matters; a case-insensitive part in front makes every
// later part effectively case-insensitive too. All parts must share the
// same expected string. Fuzzy kinds (almost_string, almost_number) cannot
// be combined; nesting combined expectations is legal.
func Combine(parts ...Expectation) Expectation {
	combined := Expectation{Kind: KindCombined, Parts: parts}
	if len(parts) > 0 {
		combined.Expected = parts[0].Expected
	}
	return combined
}

// Literals converts plain strings into exact-match expectations.
func Literals(values ...string) []Expectation {
	expectations := make([]Expectation, len(values))
	for i, value := range values {
		expectations[i] = Exact(value)
	}
	return expectations
}

// Validate rejects malformed expectations. It is called during registration
// so that the runner only ever evaluates well-formed specs.
func (e Expectation) Validate() error {
	switch e.Kind {
	case KindExact, KindCaseInsensitive, KindWhitespaceInsensitive, KindContains:
		return nil
	case KindAlmostString:
		if e.MaxDistance < 0 {
			return configErrorf("almost_string: max distance must not be negative, got %d", e.MaxDistance)
		}
		return nil
	case KindAlmostNumber:
		if e.Precision < 0 {
			return configErrorf("almost_number: precision must not be negative, got %d", e.Precision)
		}
		return nil
	case KindCombined:
		if len(e.Parts) == 0 {
			return configErrorf("combined: at least one comparison is required")
		}
		for _, part := range e.Parts {
			if part.Expected != e.Expected {
				return configErrorf("combined: all parts must share the expected value %q, got %q", e.Expected, part.Expected)
			}
			switch part.Kind {
			case KindExact, KindCaseInsensitive, KindWhitespaceInsensitive, KindContains, KindCombined:
			default:
				return configErrorf("combined: %s comparisons cannot be combined", part.Kind)
			}
			if err := part.Validate(); err != nil {
				return err
			}
		}
		return nil
	default:
		return configErrorf("unknown comparison kind %q", e.Kind)
	}
}

// Matches reports whether the actual line satisfies the expectation. It is
// pure and total: malformed input never fails, it simply does not match.
func (e Expectation) Matches(actual string) bool {
	switch e.Kind {
	case KindExact:
		return actual == e.Expected
	case KindAlmostString:
		return levenshtein.ComputeDistance(actual, e.Expected) <= e.MaxDistance
	case KindAlmostNumber:
		return numbersAlmostEqual(e.Expected, actual, e.Precision)
	case KindCaseInsensitive:
		return strings.ToLower(actual) == strings.ToLower(e.Expected)
	case KindWhitespaceInsensitive:
		return stripWhitespace(actual) == stripWhitespace(e.Expected)
	case KindContains:
		return strings.Contains(actual, e.Expected)
	case KindCombined:
		if len(e.Parts) == 0 {
			return false
		}
		expected, got := e.normalize(e.Expected, actual)
		return expected == got
	default:
		return false
	}
}

// normalize applies the expectation's rewrite to both sides of the
// comparison. Combined expectations fold every part's rewrite in order.
func (e Expectation) normalize(expected, actual string) (string, string) {
	switch e.Kind {
	case KindCaseInsensitive:
		return strings.ToLower(expected), strings.ToLower(actual)
	case KindWhitespaceInsensitive:
		return stripWhitespace(expected), stripWhitespace(actual)
	case KindContains:
		if strings.Contains(actual, expected) {
			return expected, expected
		}
		return expected, actual
	case KindCombined:
		for _, part := range e.Parts {
			expected, actual = part.normalize(expected, actual)
		}
		return expected, actual
	default:
		return expected, actual
	}
}

// String renders the expectation for reports and failure messages.
func (e Expectation) String() string {
	switch e.Kind {
	case KindExact:
		return fmt.Sprintf("%q", e.Expected)
	case KindAlmostString:
		return fmt.Sprintf("%q (edit distance at most %d)", e.Expected, e.MaxDistance)
	case KindAlmostNumber:
		return fmt.Sprintf("%q (numeric, %d decimal places)", e.Expected, e.Precision)
	case KindCaseInsensitive:
		return fmt.Sprintf("%q (case-insensitive)", e.Expected)
	case KindWhitespaceInsensitive:
		return fmt.Sprintf("%q (whitespace-insensitive)", e.Expected)
	case KindContains:
		return fmt.Sprintf("contains %q", e.Expected)
	case KindCombined:
		kinds := make([]string, len(e.Parts))
		for i, part := range e.Parts {
			kinds[i] = string(part.Kind)
		}
		return fmt.Sprintf("%q (%s)", e.Expected, strings.Join(kinds, " and "))
	default:
		return fmt.Sprintf("%q (invalid)", e.Expected)
	}
}

func numbersAlmostEqual(expected, actual string, precision int) bool {
	expectedValue, err := strconv.ParseFloat(strings.TrimSpace(expected), 64)
	if err != nil {
		return false
	}
	actualValue, err := strconv.ParseFloat(strings.TrimSpace(actual), 64)
	if err != nil {
		return false
	}

	scale := math.Pow10(precision)
	return math.Round(expectedValue*scale) == math.Round(actualValue*scale)
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
