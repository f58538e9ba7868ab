package render

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Results is the decoded results object of a report. Every accessor treats
// missing or mistyped fields as absent.
type Results map[string]any

// ParseResults decodes raw results; anything other than an object is empty
func ParseResults(raw json.RawMessage) Results {
	if len(raw) == 0 {
		return Results{}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return Results{}
	}
	return out
}

func (r Results) Object(key string) Results {
	if m, ok := r[key].(map[string]any); ok {
		return m
	}
	return Results{}
}

func (r Results) List(key string) []any {
	if l, ok := r[key].([]any); ok {
		return l
	}
	return nil
}

// Number returns the numeric value at key, accepting numeric strings
func (r Results) Number(key string) (float64, bool) {
	return toNumber(r[key])
}

func (r Results) NumberOr(key string, fallback float64) float64 {
	if n, ok := r.Number(key); ok {
		return n
	}
	return fallback
}

func (r Results) String(key string) string {
	return cellText(r[key])
}

// Len counts the entries of a list or object field
func (r Results) Len(key string) int {
	switch v := r[key].(type) {
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	}
	return 0
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(n), "%"), 64)
		return f, err == nil
	}
	return 0, false
}

// rowsOf accepts either a list of objects or an object keyed by name.
// Keyed entries get the key stored under keyField; scalar values are stored
// under valueField.
func rowsOf(v any, keyField, valueField string) []map[string]any {
	switch t := v.(type) {
	case []any:
		rows := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				rows = append(rows, m)
			}
		}
		return rows
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		rows := make([]map[string]any, 0, len(keys))
		for _, k := range keys {
			row := map[string]any{}
			if m, ok := t[k].(map[string]any); ok {
				for mk, mv := range m {
					row[mk] = mv
				}
			} else {
				row[valueField] = t[k]
			}
			row[keyField] = k
			rows = append(rows, row)
		}
		return rows
	}
	return nil
}

// ==================== Formatting ====================

func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return groupThousands(strconv.FormatInt(int64(n), 10))
	}
	return strconv.FormatFloat(n, 'f', 2, 64)
}

func formatPercent(n float64) string {
	return fmt.Sprintf("%.1f%%", n)
}

func groupThousands(digits string) string {
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return formatNumber(t)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, cellText(item))
		}
		return strings.Join(parts, ", ")
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

// textOf renders an insight or recommendation entry
func textOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		m := Results(t)
		title := m.String("title")
		body := m.String("description")
		if body == "" {
			body = m.String("text")
		}
		if body == "" {
			body = m.String("message")
		}
		switch {
		case title != "" && body != "":
			return title + ": " + body
		case title != "":
			return title
		default:
			return body
		}
	}
	return cellText(v)
}

func humanize(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
