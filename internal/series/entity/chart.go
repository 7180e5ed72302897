package entity

// TraceMode is how a trace is drawn.
type TraceMode string

const TraceModeLines TraceMode = "lines"

// Chart is a multi-series line chart sharing one timestamp axis.
type Chart struct {
	Title      string
	XAxisTitle string
	YAxisTitle string
	Traces     []Trace
	Layout     Layout
}

// Trace is one plotted series bound to one table column.
type Trace struct {
	Name string
	Mode TraceMode
	// XKind is the kind of the timestamp column the X values come from.
	XKind ColumnKind
	X     []any
	Y     []any
}

type Layout struct {
	Legend Legend
	Margin Margin
}

// Legend positions are in paper coordinates: 1.0 is the right/top plot edge.
type Legend struct {
	Orientation string
	X           float64
	Y           float64
	FontSize    int
}

type Margin struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}
