// Package export writes the analysis subsets to an Excel workbook.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-gota/gota/series"
	"github.com/leapstack-labs/boxoffice/internal/challenge"
	"github.com/leapstack-labs/boxoffice/internal/movies"
	"github.com/leapstack-labs/boxoffice/internal/regression"
	"github.com/xuri/excelize/v2"
)

// MoneyFormat is the number format applied to currency cells.
const MoneyFormat = "#,##0.00"

// RegressionSheet is the name of the sheet holding the fitted model.
const RegressionSheet = "Regression"

type sheet struct {
	name  string
	frame *movies.Frame
}

// Workbook collects frames and a regression summary before writing them.
type Workbook struct {
	sheets []sheet
	model  *regression.Model
	subset string
}

// New returns an empty workbook.
func New() *Workbook {
	return &Workbook{}
}

// AddFrame adds f as a sheet called name. Names must be unique and at
// most 31 characters, as Excel requires.
func (w *Workbook) AddFrame(name string, f *movies.Frame) error {
	if err := checkSheetName(name); err != nil {
		return fmt.Errorf("invalid sheet name %q: %w", name, err)
	}
	for _, s := range w.sheets {
		if s.name == name {
			return fmt.Errorf("duplicate sheet %q", name)
		}
	}
	w.sheets = append(w.sheets, sheet{name: name, frame: f})
	return nil
}

// maxSheetNameLength is Excel's limit on sheet name length in characters.
const maxSheetNameLength = 31

func checkSheetName(name string) error {
	switch {
	case name == "":
		return errors.New("name is empty")
	case utf8.RuneCountInString(name) > maxSheetNameLength:
		return fmt.Errorf("name is longer than %d characters", maxSheetNameLength)
	case strings.ContainsAny(name, `:\/?*[]`):
		return errors.New(`name contains one of : \ / ? * [ ]`)
	case strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'"):
		return errors.New("name starts or ends with an apostrophe")
	}
	return nil
}

// SetRegression records the model fitted on subset.
func (w *Workbook) SetRegression(subset string, m *regression.Model) {
	w.subset = subset
	w.model = m
}

// Sheets returns the sheet names in write order.
func (w *Workbook) Sheets() []string {
	names := make([]string, 0, len(w.sheets)+1)
	for _, s := range w.sheets {
		names = append(names, s.name)
	}
	if w.model != nil {
		names = append(names, RegressionSheet)
	}
	return names
}

// Save writes the workbook to path.
func (w *Workbook) Save(path string) error {
	if len(w.sheets) == 0 && w.model == nil {
		return fmt.Errorf("workbook has no sheets")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	for i, name := range w.Sheets() {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	for _, s := range w.sheets {
		if err := writeFrame(f, s.name, s.frame, styles); err != nil {
			return fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}
	if w.model != nil {
		if err := writeRegression(f, w.subset, w.model, styles); err != nil {
			return fmt.Errorf("sheet %s: %w", RegressionSheet, err)
		}
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

type styleIDs struct {
	header int
	money  int
}

func newStyles(f *excelize.File) (styleIDs, error) {
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return styleIDs{}, fmt.Errorf("failed to create header style: %w", err)
	}
	moneyFmt := MoneyFormat
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return styleIDs{}, fmt.Errorf("failed to create money style: %w", err)
	}
	return styleIDs{header: header, money: money}, nil
}

func writeFrame(f *excelize.File, name string, frame *movies.Frame, styles styleIDs) error {
	df := frame.DataFrame()
	cols := df.Names()

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(max(len(cols), 1), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, styles.header); err != nil {
		return err
	}

	nrow := df.Nrow()
	for j, colName := range cols {
		col := df.Col(colName)
		letter, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return err
		}

		values := make([]any, nrow)
		switch col.Type() {
		case series.Float:
			for i, v := range col.Float() {
				values[i] = v
			}
		case series.Int:
			ints, err := col.Int()
			if err != nil {
				return fmt.Errorf("column %s: %w", colName, err)
			}
			for i, v := range ints {
				values[i] = v
			}
		default:
			for i, v := range col.Records() {
				values[i] = v
			}
		}
		for i, v := range values {
			if err := f.SetCellValue(name, fmt.Sprintf("%s%d", letter, i+2), v); err != nil {
				return err
			}
		}

		if col.Type() == series.Float && nrow > 0 {
			if err := f.SetCellStyle(name, letter+"2", fmt.Sprintf("%s%d", letter, nrow+1), styles.money); err != nil {
				return err
			}
		}
		if err := f.SetColWidth(name, letter, letter, columnWidth(colName)); err != nil {
			return err
		}
	}
	return nil
}

func columnWidth(name string) float64 {
	return float64(max(len(name)+2, 14))
}

func writeRegression(f *excelize.File, subset string, m *regression.Model, styles styleIDs) error {
	rows := [][]any{
		{"Statistic", "Value"},
		{"Subset", subset},
		{"Films", m.N},
		{"Intercept", m.Intercept},
		{"Slope", m.Slope},
		{"R-squared", m.RSquared},
		{"Residual standard error", m.ResidualSE},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(RegressionSheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(RegressionSheet, "A1", "B1", styles.header); err != nil {
		return err
	}
	if err := f.SetCellStyle(RegressionSheet, "B4", "B4", styles.money); err != nil {
		return err
	}
	if err := f.SetCellStyle(RegressionSheet, "B7", "B7", styles.money); err != nil {
		return err
	}
	return f.SetColWidth(RegressionSheet, "A", "B", 26)
}

// FromSession builds the standard workbook: one sheet per analysis subset
// and, when it can be fitted, the regression of worldwide gross on budget
// for new films.
func FromSession(s *challenge.Session) (*Workbook, error) {
	cleaned, err := s.Cleaned()
	if err != nil {
		return nil, err
	}
	released, err := s.WithDecades()
	if err != nil {
		return nil, err
	}
	unreleased, err := s.Unreleased()
	if err != nil {
		return nil, err
	}
	oldFilms, err := s.Old()
	if err != nil {
		return nil, err
	}
	newFilms, err := s.New()
	if err != nil {
		return nil, err
	}

	sheets := []sheet{
		{"Released", released},
		{"Zero Domestic", cleaned.WhereEq(movies.ColDomestic, 0.0).SortBy(movies.ColBudget, true)},
		{"Zero Worldwide", cleaned.WhereEq(movies.ColWorldwide, 0.0).SortBy(movies.ColBudget, true)},
		{"International", cleaned.WhereAll(
			movies.Eq(movies.ColDomestic, 0.0),
			movies.Neq(movies.ColWorldwide, 0.0),
		)},
		{"Unreleased", unreleased},
		{"Old Films", oldFilms},
		{"New Films", newFilms},
	}

	w := New()
	for _, sh := range sheets {
		if err := w.AddFrame(sh.name, sh.frame); err != nil {
			return nil, err
		}
	}

	w.fitRegression("new films", newFilms, s.Logger())
	return w, nil
}

// fitRegression adds the regression sheet for f. A subset that cannot be
// fitted leaves the sheet out.
func (w *Workbook) fitRegression(subset string, f *movies.Frame, logger *slog.Logger) {
	m, err := challenge.FitBudgetRevenue(f)
	if err != nil {
		logger.Warn("skipping regression sheet",
			slog.String("subset", subset),
			slog.Any("error", err))
		return
	}
	w.SetRegression(subset, m)
}
