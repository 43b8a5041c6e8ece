package postgres

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"bubbleviz/domain/table"
	"bubbleviz/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens a Postgres connection pool for result set queries
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required for SQL sources")
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	return db, nil
}

// QuerySource turns the result set of a read-only query into a table, the way
// a notebook SQL interpreter hands results to a visualization.
type QuerySource struct {
	db    *sqlx.DB
	query string
	args  []interface{}
}

// NewQuerySource binds a query and its arguments to db
func NewQuerySource(db *sqlx.DB, query string, args ...interface{}) *QuerySource {
	return &QuerySource{db: db, query: query, args: args}
}

// Fetch runs the query inside a read-only transaction
func (s *QuerySource) Fetch(ctx context.Context) (*table.Table, error) {
	start := time.Now()
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SET TRANSACTION READ ONLY"); err != nil {
		return nil, errors.DatabaseError("failed to set read only", err)
	}

	rows, err := tx.QueryxContext(ctx, s.query, s.args...)
	if err != nil {
		return nil, errors.DatabaseError("query failed", err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, errors.DatabaseError("failed to read columns", err)
	}

	var data [][]string
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, errors.DatabaseError("failed to scan row", err)
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = CellString(v)
		}
		data = append(data, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("failed to iterate rows", err)
	}

	log.Printf("[QuerySource] %d rows x %d columns in %v", len(data), len(header), time.Since(start))
	return table.New(header, data), nil
}

// CellString renders a scanned database value as a table cell. NULL becomes
// the empty string.
func CellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
