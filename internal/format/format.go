// Package format derives human-readable strings from answer payloads and
// answer keys of unknown shape, and normalizes decimal score strings for
// display. Pure functions, no state.
package format

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Placeholder is rendered where no value could be derived. Never the literal
// "null" or "undefined".
const Placeholder = "—"

// OrPlaceholder returns s when ok, otherwise the neutral placeholder.
func OrPlaceholder(s string, ok bool) string {
	if ok {
		return s
	}
	return Placeholder
}

// ScoreText normalizes a decimal score string for compact display: rounded to
// the nearest integer. Unparsable input is returned verbatim; the underlying
// stored value is never mutated.
func ScoreText(raw string) string {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}
	return strconv.FormatInt(int64(math.Round(parsed)), 10)
}

// Percent computes round(100 * total / max) from two decimal strings. A zero,
// negative, or unparsable max short-circuits to 0; the result is deliberately
// not clamped to 100 when total exceeds max.
func Percent(total, max string) int {
	maxF, err := strconv.ParseFloat(strings.TrimSpace(max), 64)
	if err != nil || maxF <= 0 {
		return 0
	}
	totalF, err := strconv.ParseFloat(strings.TrimSpace(total), 64)
	if err != nil {
		return 0
	}
	return int(math.Round(totalF / maxF * 100))
}

// AnswerPayloadText derives a display string from a student's answer payload:
// a scalar under "value"/"choice"/"id", an array under "values", or a keyed
// mapping under "pairs". ok is false when nothing recognizable is present.
func AnswerPayloadText(payload map[string]any) (string, bool) {
	if payload == nil {
		return "", false
	}
	for _, key := range []string{"value", "choice", "id"} {
		if v, present := payload[key]; present && v != nil {
			return stringify(v), true
		}
	}
	if values, ok := payload["values"].([]any); ok {
		return joinValues(values), true
	}
	if pairs, ok := payload["pairs"].(map[string]any); ok {
		return joinPairs(pairs)
	}
	return "", false
}

// AnswerKeyText derives a display string from an answer key of unknown shape.
// Precedence: a nested "correct" field (scalar, array of acceptable values,
// or keyed mapping), then a bare array, then a bare scalar, then a
// payload-shaped mapping. ok is false for absent or unrecognizable keys.
func AnswerKeyText(key any) (string, bool) {
	if key == nil {
		return "", false
	}
	switch k := key.(type) {
	case []any:
		return joinValues(k), true
	case map[string]any:
		correct, present := k["correct"]
		if !present || correct == nil {
			return AnswerPayloadText(k)
		}
		switch c := correct.(type) {
		case []any:
			return joinValues(c), true
		case map[string]any:
			return joinPairs(c)
		default:
			return stringify(c), true
		}
	default:
		return stringify(k), true
	}
}

// Band classifies a submission result for presentation.
type Band int

const (
	BandCorrect Band = iota
	BandPartial
	BandIncorrect
)

func (b Band) String() string {
	switch b {
	case BandCorrect:
		return "correct"
	case BandPartial:
		return "partial"
	default:
		return "incorrect"
	}
}

// ResultBand derives the correctness band of a result from its decimal score
// strings: full credit is correct, any credit is partial, none is incorrect.
// When either decimal fails to parse, the server's correctness flag decides.
func ResultBand(score, maxScore string, isCorrect bool) Band {
	s, errS := strconv.ParseFloat(strings.TrimSpace(score), 64)
	m, errM := strconv.ParseFloat(strings.TrimSpace(maxScore), 64)
	if errS != nil || errM != nil {
		if isCorrect {
			return BandCorrect
		}
		return BandIncorrect
	}
	switch {
	case s >= m && m > 0:
		return BandCorrect
	case s > 0:
		return BandPartial
	default:
		return BandIncorrect
	}
}

// joinPairs renders a mapping as "key: value" pairs joined with ", ", in
// sorted key order so output is deterministic. Empty mappings report absent.
func joinPairs(pairs map[string]any) (string, bool) {
	if len(pairs) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+stringify(pairs[k]))
	}
	return strings.Join(parts, ", "), true
}

func joinValues(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, stringify(v))
	}
	return strings.Join(parts, ", ")
}

// stringify renders a decoded JSON scalar without a float exponent or
// trailing zeros, so 1.0 displays as "1".
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
