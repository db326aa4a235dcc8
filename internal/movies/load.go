package movies

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
)

// MissingValues are the cell contents read as missing. Blank cells count,
// so HasNaN and Info see gaps in the file.
var MissingValues = []string{"", "NA", "NaN", "<nil>"}

// Load reads the raw dataset from CSV. Column types are detected, so the
// currency columns stay strings until Clean runs.
func Load(r io.Reader) (*Frame, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(MissingValues),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", df.Err)
	}

	f := &Frame{df: df}
	var missing []string
	for _, col := range RequiredColumns {
		if !f.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("dataset is missing required columns %v", missing)
	}
	return f, nil
}

// LoadFile reads the raw dataset from a CSV file on disk.
func LoadFile(path string) (*Frame, error) {
	file, err := os.Open(path) //nolint:gosec // path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() { _ = file.Close() }()

	f, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
