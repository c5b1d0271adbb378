package archive

import (
	"context"
	"database/sql"
	"fmt"

	"sjsage522/prisagent/logger"
	apperrors "sjsage522/prisagent/pkg/errors"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS "product_results" (
	"run_id" TEXT NOT NULL,
	"rank" INTEGER NOT NULL,
	"product_id" TEXT,
	"url" TEXT NOT NULL,
	"title" TEXT,
	"min_3m_price" REAL,
	"min_3m_date" TEXT,
	"now_price" REAL,
	"min_30_price" REAL,
	"delta_3m" REAL,
	"pct_3m" REAL,
	"delta_30d" REAL,
	"pct_30d" REAL,
	"suspicious" INTEGER NOT NULL,
	"notes" TEXT,
	"collected_at" TEXT NOT NULL,
	PRIMARY KEY ("run_id", "url")
)`

const sqliteIndex = `CREATE INDEX IF NOT EXISTS idx_product_results_product_id ON product_results(product_id)`

const sqliteInsert = `INSERT OR IGNORE INTO "product_results"
	("run_id", "rank", "product_id", "url", "title", "min_3m_price", "min_3m_date", "now_price",
	 "min_30_price", "delta_3m", "pct_3m", "delta_30d", "pct_30d", "suspicious", "notes", "collected_at")
	VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`

// SQLiteArchive keeps a local history of runs in a single SQLite file
type SQLiteArchive struct {
	db   *sql.DB
	path string
}

// NewSQLiteArchive opens (creating if needed) the archive at path
func NewSQLiteArchive(path string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.NewSink(path, "open sqlite", err)
	}

	for _, stmt := range []string{sqliteSchema, sqliteIndex} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, apperrors.NewSink(path, "create sqlite schema", err)
		}
	}

	return &SQLiteArchive{db: db, path: path}, nil
}

// Save inserts rows in one transaction. Rows already stored for the run are skipped.
func (a *SQLiteArchive) Save(ctx context.Context, rows []Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.NewSink(a.path, "begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, sqliteInsert)
	if err != nil {
		return 0, apperrors.NewSink(a.path, "prepare insert", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, row := range rows {
		r := row.Result
		res, err := stmt.ExecContext(ctx,
			row.RunID, row.Rank, r.ProductID(), r.URL, r.Title,
			r.Min3MPrice.Ptr(), r.Min3MDate.Ptr(), r.NowPrice.Ptr(), r.Min30Price.Ptr(),
			r.Delta3M.Ptr(), r.Pct3M.Ptr(), r.Delta30D.Ptr(), r.Pct30D.Ptr(),
			r.Suspicious, r.Notes, row.CollectedAt.Format("2006-01-02T15:04:05Z07:00"),
		)
		if err != nil {
			return inserted, apperrors.NewSink(a.path, fmt.Sprintf("insert %s", r.URL), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.NewSink(a.path, "commit", err)
	}

	logger.ForArchive().Debug().Str("path", a.path).Int("rows", inserted).Msg("saved to sqlite")
	return inserted, nil
}

// Close closes the database
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}
