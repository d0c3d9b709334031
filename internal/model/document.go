package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Documents come back from three stores with different number and time
// encodings: Firestore yields int64 or float64 and time.Time, MySQL JSON
// yields float64 and RFC 3339 strings, the memory store yields whatever was
// written. The helpers below read a field leniently and never fail.

// ParseNumber converts user input to a number. Blank, non-numeric and
// non-finite input all become 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseOptionalNumber is ParseNumber for optional fields: it returns nil
// instead of 0 when the input is blank or not a finite number.
func ParseOptionalNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// FormatNumber renders a number without trailing zeros ("850", "12.5").
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func numberValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	case float32:
		return numberValue(float64(n))
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return numberValue(f)
	case string:
		return ParseNumber(n)
	}
	return 0
}

func optionalNumberValue(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case string:
		return ParseOptionalNumber(n)
	case json.Number:
		return ParseOptionalNumber(n.String())
	}
	f := numberValue(v)
	return &f
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case time.Time:
		return s.UTC().Format(time.DateOnly)
	case float64, float32, int, int32, int64, json.Number:
		return FormatNumber(numberValue(s))
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}

func boolValue(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		ok, _ := strconv.ParseBool(b)
		return ok
	case nil:
		return false
	}
	return numberValue(v) != 0
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", time.DateOnly}

func timeValue(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case *time.Time:
		if t == nil {
			return time.Time{}
		}
		return t.UTC()
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UTC()
			}
		}
	}
	return time.Time{}
}

func stringsValue(v any) []string {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...)
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, stringValue(item))
		}
		return out
	}
	return nil
}

func mapValue(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}
