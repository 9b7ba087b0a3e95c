package stats

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	// database drivers
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	// SQLiteDriver is the driver name for SQLite database files.
	SQLiteDriver = "sqlite"

	// PostgresDriver is the driver name for PostgreSQL servers.
	PostgresDriver = "postgres"
)

var schema = map[string]string{
	SQLiteDriver: `CREATE TABLE IF NOT EXISTS proxy_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		size BIGINT NOT NULL
	)`,
	PostgresDriver: `CREATE TABLE IF NOT EXISTS proxy_log (
		id SERIAL PRIMARY KEY,
		url TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		size BIGINT NOT NULL
	)`,
}

const (
	insertQuery     = `INSERT INTO proxy_log (url, status_code, size) VALUES (?, ?, ?)`
	totalBytesQuery = `SELECT COALESCE(SUM(size), 0) FROM proxy_log WHERE size > 0`
)

// SQLStore is a Store backed by an SQL database.
type SQLStore struct {
	db         *sql.DB
	insert     *sql.Stmt
	totalBytes *sql.Stmt
}

// OpenSQLStore opens the database named by dsn using the given driver, and
// creates the log table if it does not already exist.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	ddl, ok := schema[driver]
	if !ok {
		return nil, errors.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s database", driver)
	}

	store, err := prepare(ctx, db, driver, ddl)
	if err != nil {
		return nil, multierr.Append(err, db.Close())
	}

	return store, nil
}

func prepare(ctx context.Context, db *sql.DB, driver, ddl string) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, errors.Wrap(err, "could not create log table")
	}

	rebind := func(q string) string { return q }
	if driver == PostgresDriver {
		rebind = replacePlaceHolders
	}

	insert, err := db.PrepareContext(ctx, rebind(insertQuery))
	if err != nil {
		return nil, errors.Wrap(err, "could not prepare insert statement")
	}

	totalBytes, err := db.PrepareContext(ctx, totalBytesQuery)
	if err != nil {
		return nil, multierr.Append(
			errors.Wrap(err, "could not prepare total statement"),
			insert.Close(),
		)
	}

	return &SQLStore{
		db:         db,
		insert:     insert,
		totalBytes: totalBytes,
	}, nil
}

// Record appends an entry to the log.
func (store *SQLStore) Record(ctx context.Context, entry Entry) error {
	_, err := store.insert.ExecContext(
		ctx,
		entry.URL,
		entry.StatusCode,
		entry.Size,
	)

	return errors.Wrap(err, "could not insert log entry")
}

// TotalBytes returns the sum of the sizes of all logged responses.
func (store *SQLStore) TotalBytes(ctx context.Context) (total int64, err error) {
	err = store.totalBytes.QueryRowContext(ctx).Scan(&total)
	err = errors.Wrap(err, "could not query total bytes")
	return
}

// Ping checks that the database is reachable.
func (store *SQLStore) Ping(ctx context.Context) error {
	return store.db.PingContext(ctx)
}

// Close closes the prepared statements and the database.
func (store *SQLStore) Close() error {
	return multierr.Combine(
		store.insert.Close(),
		store.totalBytes.Close(),
		store.db.Close(),
	)
}

var qmark = regexp.MustCompile(`\?`)

// replacePlaceHolders rewrites ? placeholders as the $n form used by postgres.
func replacePlaceHolders(query string) string {
	i := 0
	return qmark.ReplaceAllStringFunc(query, func(string) string {
		i++
		return fmt.Sprintf("$%d", i)
	})
}
