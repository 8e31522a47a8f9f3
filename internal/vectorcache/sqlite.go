package vectorcache

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the matrix in a single-row SQLite table.
type SQLiteStore struct {
	db *sqlx.DB
}

type matrixRow struct {
	Fingerprint string `db:"fingerprint"`
	Model       string `db:"model"`
	Dimension   int    `db:"dimension"`
	RowCount    int    `db:"row_count"`
	Data        []byte `db:"data"`
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS embedding_matrix (
			id          INTEGER PRIMARY KEY CHECK (id = 1),
			fingerprint TEXT NOT NULL,
			model       TEXT NOT NULL,
			dimension   INTEGER NOT NULL,
			row_count   INTEGER NOT NULL,
			data        BLOB NOT NULL,
			updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) (*Matrix, error) {
	var row matrixRow
	err := s.db.GetContext(ctx, &row,
		`SELECT fingerprint, model, dimension, row_count, data FROM embedding_matrix WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load matrix: %w", err)
	}
	rows, err := decodeRows(row.Data, row.RowCount, row.Dimension)
	if err != nil {
		return nil, err
	}
	return &Matrix{Fingerprint: row.Fingerprint, Model: row.Model, Dimension: row.Dimension, Rows: rows}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, m *Matrix) error {
	data, err := encodeRows(m.Rows, m.Dimension)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO embedding_matrix (id, fingerprint, model, dimension, row_count, data, updated_at)
		VALUES (1, :fingerprint, :model, :dimension, :row_count, :data, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			model = excluded.model,
			dimension = excluded.dimension,
			row_count = excluded.row_count,
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP`,
		matrixRow{Fingerprint: m.Fingerprint, Model: m.Model, Dimension: m.Dimension, RowCount: len(m.Rows), Data: data})
	if err != nil {
		return fmt.Errorf("save matrix: %w", err)
	}
	return tx.Commit()
}

func encodeRows(rows [][]float32, dim int) ([]byte, error) {
	buf := make([]byte, 0, len(rows)*dim*4)
	for i, r := range rows {
		if len(r) != dim {
			return nil, fmt.Errorf("row %d has dimension %d, want %d", i, len(r), dim)
		}
		for _, x := range r {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(x))
		}
	}
	return buf, nil
}

func decodeRows(data []byte, n, dim int) ([][]float32, error) {
	if len(data) != n*dim*4 {
		return nil, fmt.Errorf("matrix blob has %d bytes, want %d", len(data), n*dim*4)
	}
	rows := make([][]float32, n)
	for i := range rows {
		row := make([]float32, dim)
		for j := range row {
			off := (i*dim + j) * 4
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
		}
		rows[i] = row
	}
	return rows, nil
}
