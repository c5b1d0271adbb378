package archive

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"sjsage522/prisagent/logger"
	apperrors "sjsage522/prisagent/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	postgresMaxConns  = 2
	postgresBatchSize = 200
)

// tableNameRe accepts "table" or "schema.table"
var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PostgresArchive stores ranked results in a shared Postgres table
type PostgresArchive struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresArchive connects to dsn and makes sure the table exists
func NewPostgresArchive(ctx context.Context, dsn, table string) (*PostgresArchive, error) {
	quoted, err := quoteTable(table)
	if err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, apperrors.NewConfiguration("invalid PG_DSN", err)
	}
	cfg.MaxConns = postgresMaxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, apperrors.NewSink(table, "connect postgres", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.NewSink(table, "ping postgres", err)
	}

	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+quoted+` (
		run_id TEXT NOT NULL,
		rank INTEGER NOT NULL,
		product_id TEXT,
		url TEXT NOT NULL,
		title TEXT,
		min_3m_price DOUBLE PRECISION,
		min_3m_date DATE,
		now_price DOUBLE PRECISION,
		min_30_price DOUBLE PRECISION,
		delta_3m DOUBLE PRECISION,
		pct_3m DOUBLE PRECISION,
		delta_30d DOUBLE PRECISION,
		pct_30d DOUBLE PRECISION,
		suspicious BOOLEAN NOT NULL,
		notes TEXT,
		collected_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (run_id, url)
	)`)
	if err != nil {
		pool.Close()
		return nil, apperrors.NewSink(table, "create postgres table", err)
	}

	return &PostgresArchive{pool: pool, table: quoted}, nil
}

// quoteTable validates and quotes a table name given as "table" or "schema.table"
func quoteTable(table string) (string, error) {
	if !tableNameRe.MatchString(table) {
		return "", apperrors.NewConfiguration(fmt.Sprintf("invalid table name %q", table), nil)
	}
	return pgx.Identifier(strings.Split(table, ".")).Sanitize(), nil
}

// Save inserts rows in batches; rows already stored for the run are left alone
func (a *PostgresArchive) Save(ctx context.Context, rows []Row) (int, error) {
	total := 0

	for i := 0; i < len(rows); i += postgresBatchSize {
		j := min(i+postgresBatchSize, len(rows))

		b := &pgx.Batch{}
		for _, row := range rows[i:j] {
			r := row.Result
			b.Queue(
				`INSERT INTO `+a.table+`
				(run_id, rank, product_id, url, title, min_3m_price, min_3m_date, now_price,
				 min_30_price, delta_3m, pct_3m, delta_30d, pct_30d, suspicious, notes, collected_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
				ON CONFLICT (run_id, url) DO NOTHING`,
				row.RunID, row.Rank, r.ProductID(), r.URL, r.Title,
				r.Min3MPrice.Ptr(), min3MTime(r), r.NowPrice.Ptr(), r.Min30Price.Ptr(),
				r.Delta3M.Ptr(), r.Pct3M.Ptr(), r.Delta30D.Ptr(), r.Pct30D.Ptr(),
				r.Suspicious, r.Notes, row.CollectedAt,
			)
		}

		br := a.pool.SendBatch(ctx, b)
		for k := 0; k < j-i; k++ {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return total, apperrors.NewSink(a.table, "insert batch", err)
			}
			total += int(tag.RowsAffected())
		}
		if err := br.Close(); err != nil {
			return total, apperrors.NewSink(a.table, "close batch", err)
		}
	}

	logger.ForArchive().Debug().Str("table", a.table).Int("rows", total).Msg("saved to postgres")
	return total, nil
}

// Close closes the connection pool
func (a *PostgresArchive) Close() error {
	a.pool.Close()
	return nil
}
