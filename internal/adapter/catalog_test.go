package adapter

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/boxoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_SQLite(t *testing.T) {
	ctx := context.Background()
	a, err := NewAdapter(Config{Type: "sqlite"}, testutil.NewTestLogger(t))
	require.NoError(t, err)
	require.NoError(t, a.Connect(ctx, Config{Type: "sqlite"}))
	defer func() { _ = a.Close() }()

	require.NoError(t, LoadMovies(ctx, a, DefaultTable, sampleMovies()))

	tables, err := ListTables(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultTable}, tables)

	meta, err := GetTableMetadata(ctx, a, DefaultTable)
	require.NoError(t, err)
	assert.Equal(t, int64(3), meta.RowCount)
	require.Len(t, meta.Columns, 7)
	assert.Equal(t, "Rank", meta.Columns[0].Name)
	assert.Equal(t, 1, meta.Columns[0].Position)
	assert.Equal(t, "Decade", meta.Columns[6].Name)

	_, err = GetTableMetadata(ctx, a, "missing")
	assert.ErrorContains(t, err, "table missing not found")
}

func TestCatalog_InformationSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	a := NewPostgresAdapter(nil)
	a.Conn = db

	mock.ExpectQuery("FROM information_schema.tables").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("movies"))
	mock.ExpectQuery(`FROM information_schema.columns\s+WHERE table_name = \$1`).
		WithArgs("movies").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
			AddRow("Rank", "bigint", "YES", 1).
			AddRow("Movie_Title", "character varying", "NO", 2))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "movies"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	ctx := context.Background()
	tables, err := ListTables(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []string{"movies"}, tables)

	meta, err := GetTableMetadata(ctx, a, "movies")
	require.NoError(t, err)
	assert.Equal(t, int64(42), meta.RowCount)
	assert.Equal(t, []Column{
		{Name: "Rank", Type: "bigint", Nullable: true, Position: 1},
		{Name: "Movie_Title", Type: "character varying", Nullable: false, Position: 2},
	}, meta.Columns)
	assert.NoError(t, mock.ExpectationsWereMet())
}
