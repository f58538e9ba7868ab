package render

import (
	"sort"

	"socialpulse/report-portal-backend/internal/reports/visualization"
)

// column maps a table column onto the first key present in a row
type column struct {
	label   string
	keys    []string
	percent bool
}

func col(label string, keys ...string) column {
	return column{label: label, keys: keys}
}

func pct(label string, keys ...string) column {
	return column{label: label, keys: keys, percent: true}
}

func (c column) cell(row map[string]any) string {
	for _, k := range c.keys {
		v, ok := row[k]
		if !ok || v == nil {
			continue
		}
		if c.percent {
			if n, ok := toNumber(v); ok {
				return formatPercent(n)
			}
		}
		return cellText(v)
	}
	return ""
}

// tableSection builds a table from a list or keyed object, or returns
// false when the field is absent or empty
func tableSection(results Results, field, title, keyField string, columns ...column) (Section, bool) {
	rows := rowsOf(results[field], keyField, "value")
	if len(rows) == 0 {
		return Section{}, false
	}

	table := &Table{
		Columns: make([]string, 0, len(columns)),
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, c := range columns {
		table.Columns = append(table.Columns, c.label)
	}
	for _, row := range rows {
		cells := make([]string, 0, len(columns))
		for _, c := range columns {
			cells = append(cells, c.cell(row))
		}
		table.Rows = append(table.Rows, cells)
	}

	return Section{Kind: SectionTable, Key: field, Title: title, Table: table}, true
}

func metricsSection(cards ...Card) Section {
	return Section{Kind: SectionMetrics, Title: "Summary", Cards: cards}
}

func numberCard(label string, results Results, key string) Card {
	n := results.NumberOr(key, 0)
	return Card{Label: label, Value: formatNumber(n), Raw: n}
}

func percentCard(label string, results Results, key string) Card {
	n := results.NumberOr(key, 0)
	return Card{Label: label, Value: formatPercent(n), Raw: n}
}

func textCard(label, value string) Card {
	if value == "" {
		value = "N/A"
	}
	return Card{Label: label, Value: value}
}

// visualizationSections renders results.visualizations ordered by key.
// A list is rendered in its own order.
func visualizationSections(results Results) []Section {
	var sections []Section
	add := func(key string, raw any) {
		el := visualization.RenderRaw(raw)
		title := el.Title
		if title == "" {
			title = humanize(key)
		}
		sections = append(sections, Section{
			Kind:          SectionVisualization,
			Key:           key,
			Title:         title,
			Visualization: &el,
		})
	}

	switch v := results["visualizations"].(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(k, v[k])
		}
	case []any:
		for _, item := range v {
			add("", item)
		}
	}
	return sections
}

// listSections renders insights and recommendations when present
func listSections(results Results) []Section {
	var sections []Section
	for _, field := range []struct{ key, title string }{
		{"insights", "Key Insights"},
		{"recommendations", "Recommendations"},
	} {
		var items []string
		for _, entry := range results.List(field.key) {
			if text := textOf(entry); text != "" {
				items = append(items, text)
			}
		}
		if len(items) > 0 {
			sections = append(sections, Section{Kind: SectionList, Key: field.key, Title: field.title, Items: items})
		}
	}
	return sections
}
