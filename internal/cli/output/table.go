package output

import (
	"io"
	"math"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/leapstack-labs/boxoffice/internal/numfmt"
)

// FrameTable is a dataframe converted to display cells.
type FrameTable struct {
	Columns []string
	Rows    [][]any
}

// NewFrameTable converts df into typed cells. Float columns become Money
// values; NaN cells become nil.
func NewFrameTable(df dataframe.DataFrame) FrameTable {
	names := df.Names()
	nrow := df.Nrow()
	rows := make([][]any, nrow)
	for i := range rows {
		rows[i] = make([]any, len(names))
	}

	for j, name := range names {
		col := df.Col(name)
		nan := col.IsNaN()
		switch col.Type() {
		case series.Float:
			for i, v := range col.Float() {
				if !nan[i] && !math.IsNaN(v) {
					rows[i][j] = numfmt.Money(v)
				}
			}
		case series.Int:
			for i, s := range col.Records() {
				if nan[i] {
					continue
				}
				if v, err := strconv.Atoi(s); err == nil {
					rows[i][j] = v
				} else {
					rows[i][j] = s
				}
			}
		case series.Bool:
			for i, s := range col.Records() {
				if !nan[i] {
					rows[i][j] = s == "true"
				}
			}
		default:
			for i, s := range col.Records() {
				if !nan[i] {
					rows[i][j] = s
				}
			}
		}
	}
	return FrameTable{Columns: names, Rows: rows}
}

// Records returns one map per row for JSON output.
func (t FrameTable) Records() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for j, col := range t.Columns {
			rec[col] = row[j]
		}
		out[i] = rec
	}
	return out
}

func (t FrameTable) writer(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)

	header := make(table.Row, len(t.Columns))
	aligns := make([]table.ColumnConfig, 0, len(t.Columns))
	for j, col := range t.Columns {
		header[j] = col
		if t.numeric(j) {
			aligns = append(aligns, table.ColumnConfig{Number: j + 1, Align: text.AlignRight})
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(aligns)

	for _, row := range t.Rows {
		cells := make(table.Row, len(row))
		for j, v := range row {
			if v == nil {
				cells[j] = "NaN"
				continue
			}
			cells[j] = FormatValue(v)
		}
		tw.AppendRow(cells)
	}
	return tw
}

func (t FrameTable) numeric(j int) bool {
	for _, row := range t.Rows {
		switch row[j].(type) {
		case nil:
			continue
		case numfmt.Number, int:
			return true
		default:
			return false
		}
	}
	return false
}

// RenderText writes the table as a box-drawn grid.
func (t FrameTable) RenderText(w io.Writer) {
	t.writer(w).Render()
}

// RenderMarkdown writes the table as a GitHub markdown table.
func (t FrameTable) RenderMarkdown(w io.Writer) {
	t.writer(w).RenderMarkdown()
}

// RenderTable writes t in the renderer's mode. JSON mode writes the rows
// immediately rather than buffering them for Flush.
func (r *Renderer) RenderTable(t FrameTable) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(t.Records())
	case ModeMarkdown:
		t.RenderMarkdown(r.out)
	default:
		t.RenderText(r.out)
	}
	return nil
}
