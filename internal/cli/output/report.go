package output

import (
	"fmt"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/leapstack-labs/boxoffice/internal/movies"
)

type jsonFact struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

type jsonTable struct {
	Title   string           `json:"title,omitempty"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

type jsonSection struct {
	Number  int         `json:"number,omitempty"`
	Title   string      `json:"title"`
	Facts   []jsonFact  `json:"facts,omitempty"`
	Tables  []jsonTable `json:"tables,omitempty"`
	Figures []string    `json:"figures,omitempty"`
}

func (r *Renderer) section() *jsonSection {
	if len(r.doc) == 0 {
		r.doc = append(r.doc, &jsonSection{})
	}
	return r.doc[len(r.doc)-1]
}

// Section starts the output of one numbered step.
func (r *Renderer) Section(number int, title string) {
	switch r.EffectiveMode() {
	case ModeJSON:
		r.doc = append(r.doc, &jsonSection{Number: number, Title: title})
	case ModeMarkdown:
		r.Println(FormatHeader(2, fmt.Sprintf("Challenge %d: %s", number, title)))
		r.Println("")
	default:
		r.Println("")
		r.Println(r.styles.Header1.Render("Challenge: " + title))
	}
}

// Fact writes a labelled value.
func (r *Renderer) Fact(label string, value any) {
	if r.EffectiveMode() == ModeJSON {
		s := r.section()
		s.Facts = append(s.Facts, jsonFact{Label: label, Value: value})
		return
	}
	r.KeyValue(label, FormatValue(value))
}

// Table writes a dataframe.
func (r *Renderer) Table(title string, df dataframe.DataFrame) {
	t := NewFrameTable(df)
	switch r.EffectiveMode() {
	case ModeJSON:
		s := r.section()
		s.Tables = append(s.Tables, jsonTable{Title: title, Columns: t.Columns, Rows: t.Records()})
	case ModeMarkdown:
		if title != "" {
			r.Println(FormatHeader(3, title))
			r.Println("")
		}
		t.RenderMarkdown(r.out)
		r.Println("")
	default:
		if title != "" {
			r.Println(r.styles.Header2.Render(title))
		}
		t.RenderText(r.out)
	}
}

// Columns writes a column summary like pandas' DataFrame.info().
func (r *Renderer) Columns(info []movies.ColumnInfo) {
	if r.EffectiveMode() == ModeJSON {
		rows := make([]map[string]any, len(info))
		for i, c := range info {
			rows[i] = map[string]any{"#": c.Position, "column": c.Name, "non_null": c.NonNull, "dtype": c.Type}
		}
		s := r.section()
		s.Tables = append(s.Tables, jsonTable{
			Title:   "info",
			Columns: []string{"#", "column", "non_null", "dtype"},
			Rows:    rows,
		})
		return
	}

	t := FrameTable{Columns: []string{"#", "Column", "Non-Null Count", "Dtype"}}
	for _, c := range info {
		t.Rows = append(t.Rows, []any{c.Position, c.Name, strconv.Itoa(c.NonNull) + " non-null", c.Type})
	}
	title := fmt.Sprintf("Data columns (total %d columns)", len(info))
	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatHeader(3, title))
		r.Println("")
		t.RenderMarkdown(r.out)
		r.Println("")
		return
	}
	r.Println(r.styles.Header2.Render(title))
	t.RenderText(r.out)
}

// Figure reports a saved chart.
func (r *Renderer) Figure(title, path string) {
	switch r.EffectiveMode() {
	case ModeJSON:
		s := r.section()
		s.Figures = append(s.Figures, path)
	case ModeMarkdown:
		r.Printf("![%s](%s)\n\n", title, path)
	default:
		r.Printf("%s %s\n", r.styles.Muted.Render("Saved figure:"), r.styles.Path.Render(path))
	}
}

// Flush writes the collected JSON document. It is a no-op in other modes.
func (r *Renderer) Flush() error {
	if r.EffectiveMode() != ModeJSON {
		return nil
	}
	doc := r.doc
	if doc == nil {
		doc = []*jsonSection{}
	}
	r.doc = nil
	return r.JSON(doc)
}
