package adapter

import (
	"context"
	"database/sql"
	"fmt"
)

// Column describes one column of a stored table.
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Position int    `json:"position"`
}

// TableMetadata describes a stored table.
type TableMetadata struct {
	Name     string   `json:"name"`
	Columns  []Column `json:"columns"`
	RowCount int64    `json:"row_count"`
}

// ListTables returns the user tables and views in the store, sorted by name.
func ListTables(ctx context.Context, a Adapter) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema NOT IN ('information_schema', 'pg_catalog')
		ORDER BY table_name
	`
	if a.DialectName() == "sqlite" {
		query = `
			SELECT name FROM sqlite_master
			WHERE type IN ('table', 'view')
			AND name NOT LIKE 'sqlite_%'
			ORDER BY name
		`
	}

	rows, err := a.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return names, nil
}

// GetTableMetadata returns the columns and row count of table.
func GetTableMetadata(ctx context.Context, a Adapter, table string) (*TableMetadata, error) {
	var (
		columns []Column
		err     error
	)
	if a.DialectName() == "sqlite" {
		columns, err = sqliteColumns(ctx, a, table)
	} else {
		columns, err = informationSchemaColumns(ctx, a, table)
	}
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	var rowCount int64
	//nolint:gosec // table is quoted and was found in the catalog above
	if err := a.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+QuoteIdent(table)).Scan(&rowCount); err != nil {
		rowCount = 0
	}

	return &TableMetadata{Name: table, Columns: columns, RowCount: rowCount}, nil
}

func informationSchemaColumns(ctx context.Context, a Adapter, table string) ([]Column, error) {
	//nolint:gosec // placeholders come from the adapter
	query := fmt.Sprintf(`
		SELECT column_name, data_type, is_nullable, ordinal_position
		FROM information_schema.columns
		WHERE table_name = %s
		AND table_schema NOT IN ('information_schema', 'pg_catalog')
		ORDER BY ordinal_position
	`, a.Placeholder(1))

	rows, err := a.Query(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	return columns, nil
}

func sqliteColumns(ctx context.Context, a Adapter, table string) ([]Column, error) {
	rows, err := a.Query(ctx, "SELECT cid, name, type, \"notnull\" FROM pragma_table_info("+a.Placeholder(1)+")", table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var (
			cid     int
			col     Column
			notNull int
			colType sql.NullString
		)
		if err := rows.Scan(&cid, &col.Name, &colType, &notNull); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Type = colType.String
		col.Nullable = notNull == 0
		col.Position = cid + 1
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	return columns, nil
}
