package usecase

import (
	"fmt"
	"slices"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/entity"
)

const (
	ChartTitle = "Series Temporales"
	XAxisTitle = "Fecha y Hora"
	YAxisTitle = "Valor"

	// EmptySelectionWarning is shown instead of a chart when nothing is selected.
	EmptySelectionWarning = "Selecciona al menos una columna para graficar."

	// NonNumericWarning names selected columns that have nothing to plot.
	NonNumericWarning = "Las columnas sin valores numéricos no se pueden graficar: %s."

	defaultSelectionSize = 3
)

// Selection is the set of columns the user asked to plot. When Explicit is
// false the user has not chosen yet and the default selection applies.
type Selection struct {
	Columns  []string
	Explicit bool
}

// SelectableColumns returns every column name except the timestamp column.
func SelectableColumns(t entity.Table) []string {
	if len(t.Columns) < 2 {
		return []string{}
	}
	return t.ColumnNames()[1:]
}

// DefaultSelection returns the first min(3, N) selectable columns.
func DefaultSelection(t entity.Table) []string {
	selectable := SelectableColumns(t)
	return selectable[:min(defaultSelectionSize, len(selectable))]
}

// ResolveSelection returns the columns to plot: the default when sel is not
// explicit, otherwise the requested columns in request order without repeats.
func ResolveSelection(t entity.Table, sel Selection) ([]string, error) {
	if !sel.Explicit {
		return DefaultSelection(t), nil
	}

	allowed := make(map[string]struct{}, len(t.Columns))
	for _, name := range SelectableColumns(t) {
		allowed[name] = struct{}{}
	}

	resolved := make([]string, 0, len(sel.Columns))
	seen := make(map[string]struct{}, len(sel.Columns))
	for _, name := range sel.Columns {
		if _, ok := allowed[name]; !ok {
			return nil, fmt.Errorf("column %q cannot be plotted", name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		resolved = append(resolved, name)
	}

	return resolved, nil
}

// BuildChart draws one line per column over the timestamp column at index 0.
// It returns nil when columns is empty.
func BuildChart(t entity.Table, columns []string) (*entity.Chart, error) {
	if len(columns) == 0 {
		return nil, nil
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("table has no timestamp column")
	}

	axis := t.Columns[0]
	traces := make([]entity.Trace, 0, len(columns))
	for _, name := range columns {
		i := t.Index(name)
		if i < 1 {
			return nil, fmt.Errorf("column %q cannot be plotted", name)
		}
		traces = append(traces, entity.Trace{
			Name:  name,
			Mode:  entity.TraceModeLines,
			XKind: axis.Kind,
			X:     axis.Values,
			Y:     t.Columns[i].Values,
		})
	}

	return &entity.Chart{
		Title:      ChartTitle,
		XAxisTitle: XAxisTitle,
		YAxisTitle: YAxisTitle,
		Traces:     traces,
		Layout: entity.Layout{
			Legend: entity.Legend{Orientation: "v", X: 1.02, Y: 1.02, FontSize: 10},
			Margin: entity.Margin{Left: 50, Right: 150, Top: 50, Bottom: 50},
		},
	}, nil
}

// nonNumericTraces returns the names of traces without a single numeric value,
// such as text columns written with a decimal comma.
func nonNumericTraces(c *entity.Chart) []string {
	var names []string
	for _, tr := range c.Traces {
		if !slices.ContainsFunc(tr.Y, func(v any) bool {
			_, ok := entity.Float(v)
			return ok
		}) {
			names = append(names, tr.Name)
		}
	}
	return names
}
