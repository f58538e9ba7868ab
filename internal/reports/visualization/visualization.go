// Package visualization normalizes chart descriptors found in report results
// into chart elements, or into inline alerts when a descriptor is unusable.
package visualization

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ChartType is the chart kind named by a descriptor
type ChartType string

const (
	ChartTypePie  ChartType = "pie"
	ChartTypeBar  ChartType = "bar"
	ChartTypeLine ChartType = "line"
)

// ElementKind tells the client what to draw
type ElementKind string

const (
	ElementChart   ElementKind = "chart"
	ElementWarning ElementKind = "warning"
	ElementError   ElementKind = "error"
)

// DefaultColors is applied to pie slices when the descriptor has none
var DefaultColors = []string{"#4CAF50", "#FFC107", "#F44336", "#2196F3", "#9C27B0", "#FF9800", "#00BCD4", "#795548"}

var errNotAnObject = errors.New("visualization descriptor is not an object")

// Dataset is one series of a bar or line chart
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
	Color string    `json:"color,omitempty"`
}

// Data is the payload of a descriptor. Nil slices mean the field was absent.
type Data struct {
	Labels   []string  `json:"labels,omitempty"`
	Values   []float64 `json:"values,omitempty"`
	Datasets []Dataset `json:"datasets,omitempty"`
	Colors   []string  `json:"colors,omitempty"`
}

// Descriptor is a {type, title, data} chart description
type Descriptor struct {
	Type  ChartType `json:"type"`
	Title string    `json:"title"`
	Data  Data      `json:"data"`
}

// Element is the normalized output handed to the chart renderer
type Element struct {
	Kind      ElementKind `json:"kind"`
	ChartType ChartType   `json:"chart_type,omitempty"`
	Title     string      `json:"title,omitempty"`
	Labels    []string    `json:"labels,omitempty"`
	Values    []float64   `json:"values,omitempty"`
	Datasets  []Dataset   `json:"datasets,omitempty"`
	Colors    []string    `json:"colors,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// Render turns a descriptor into a chart, or a warning naming the missing
// fields, or an error naming an unsupported type
func Render(d Descriptor) Element {
	switch d.Type {
	case ChartTypePie:
		var missing []string
		if len(d.Data.Labels) == 0 {
			missing = append(missing, "labels")
		}
		if len(d.Data.Values) == 0 {
			missing = append(missing, "values")
		}
		if len(missing) > 0 {
			return warning(d, missing)
		}
		if len(d.Data.Labels) != len(d.Data.Values) {
			return Element{
				Kind:    ElementWarning,
				Title:   d.Title,
				Message: fmt.Sprintf("Pie chart has %d labels but %d values", len(d.Data.Labels), len(d.Data.Values)),
			}
		}
		colors := d.Data.Colors
		if len(colors) == 0 {
			colors = paletteFor(len(d.Data.Values))
		}
		return Element{
			Kind:      ElementChart,
			ChartType: ChartTypePie,
			Title:     d.Title,
			Labels:    d.Data.Labels,
			Values:    d.Data.Values,
			Colors:    colors,
		}

	case ChartTypeBar, ChartTypeLine:
		var missing []string
		if len(d.Data.Labels) == 0 {
			missing = append(missing, "labels")
		}
		if len(d.Data.Datasets) == 0 {
			missing = append(missing, "datasets")
		}
		if len(missing) > 0 {
			return warning(d, missing)
		}
		return Element{
			Kind:      ElementChart,
			ChartType: d.Type,
			Title:     d.Title,
			Labels:    d.Data.Labels,
			Datasets:  d.Data.Datasets,
			Colors:    d.Data.Colors,
		}

	default:
		return Element{
			Kind:    ElementError,
			Title:   d.Title,
			Message: fmt.Sprintf("Unsupported visualization type: %q", string(d.Type)),
		}
	}
}

// RenderRaw parses and renders an arbitrary JSON value
func RenderRaw(raw any) Element {
	d, err := ParseDescriptor(raw)
	if err != nil {
		return Element{Kind: ElementError, Message: err.Error()}
	}
	return Render(d)
}

func warning(d Descriptor, missing []string) Element {
	return Element{
		Kind:    ElementWarning,
		Title:   d.Title,
		Message: fmt.Sprintf("Missing required data for %s chart: %s", d.Type, strings.Join(missing, ", ")),
	}
}

func paletteFor(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		colors[i] = DefaultColors[i%len(DefaultColors)]
	}
	return colors
}

// ParseDescriptor reads a descriptor out of decoded JSON. Fields with the
// wrong shape are treated as absent; only a non-object value is an error.
func ParseDescriptor(raw any) (Descriptor, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Descriptor{}, errNotAnObject
	}

	d := Descriptor{
		Type:  ChartType(strings.ToLower(stringOf(obj["type"]))),
		Title: stringOf(obj["title"]),
	}

	data, ok := obj["data"].(map[string]any)
	if !ok {
		return d, nil
	}

	d.Data.Labels = stringsOf(data["labels"])
	d.Data.Values = numbersOf(data["values"])
	d.Data.Colors = stringsOf(data["colors"])

	if list, ok := data["datasets"].([]any); ok {
		for _, item := range list {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			values := numbersOf(entry["data"])
			if values == nil {
				continue
			}
			ds := Dataset{
				Label: stringOf(entry["label"]),
				Data:  values,
				Color: stringOf(entry["backgroundColor"]),
			}
			if ds.Color == "" {
				ds.Color = stringOf(entry["borderColor"])
			}
			d.Data.Datasets = append(d.Data.Datasets, ds)
		}
	}

	return d, nil
}

func stringOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func stringsOf(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, stringOf(item))
	}
	return out
}

// numbersOf returns nil unless every entry is numeric
func numbersOf(v any) []float64 {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(list))
	for _, item := range list {
		switch n := item.(type) {
		case float64:
			out = append(out, n)
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return nil
			}
			out = append(out, f)
		default:
			return nil
		}
	}
	return out
}
