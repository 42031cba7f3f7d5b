// Package normalize maps loosely-typed backend payloads onto the canonical
// tracking types. Every function here is pure and total: unrecognised input
// produces an explicit invalid or empty result, never a panic.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// field is one entry of a fallback chain: a key to look up and the extractor
// that decides whether the value found there is usable.
type field[T any] struct {
	name    string
	extract func(any) (T, bool)
}

// chain builds a fallback chain sharing one extractor.
func chain[T any](extract func(any) (T, bool), names ...string) []field[T] {
	out := make([]field[T], len(names))
	for i, n := range names {
		out[i] = field[T]{name: n, extract: extract}
	}
	return out
}

// first walks the chain in order and returns the first usable value.
func first[T any](obj map[string]any, fields []field[T]) (T, bool) {
	for _, f := range fields {
		v, ok := obj[f.name]
		if !ok || v == nil {
			continue
		}
		if out, ok := f.extract(v); ok {
			return out, true
		}
	}
	var zero T
	return zero, false
}

// number accepts JSON numbers, Go numeric types and numeric strings.
// Only finite values are usable.
func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func text(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

const (
	// epochMillisThreshold separates epoch seconds from epoch milliseconds.
	epochMillisThreshold = 1e12
	// maxEpochMillis is far past any real delivery date and well inside int64.
	maxEpochMillis = 1e15
)

// timestamp accepts the layouts above or a unix epoch number.
func timestamp(v any) (time.Time, bool) {
	if s, ok := text(v); ok {
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		// numeric strings fall through to the epoch branch
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return time.Time{}, false
		}
	}
	f, ok := number(v)
	if !ok || f <= 0 || f > maxEpochMillis {
		return time.Time{}, false
	}
	if f > epochMillisThreshold {
		return time.UnixMilli(int64(f)).UTC(), true
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}
