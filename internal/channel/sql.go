package channel

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQLChannel keeps the shared value in a single-table key-value store.
type SQLChannel struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLChannel opens dsn with the driver for dialect and migrates the schema.
func OpenSQLChannel(dialect Dialect, dsn string) (*SQLChannel, error) {
	if dialect != DialectSQLite && dialect != DialectPostgres {
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	// modernc registers itself as "sqlite", lib/pq as "postgres"
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if dialect == DialectSQLite {
		// one writer at a time; several processes may still open the file
		db.SetMaxOpenConns(1)
	}

	c := &SQLChannel{db: db, dialect: dialect}
	if err := c.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLChannel) RunMigrations() error {
	var (
		driver database.Driver
		err    error
	)
	switch c.dialect {
	case DialectSQLite:
		driver, err = sqlite.WithInstance(c.db, &sqlite.Config{})
	case DialectPostgres:
		driver, err = postgres.WithInstance(c.db, &postgres.Config{})
	default:
		return fmt.Errorf("unsupported dialect %q", c.dialect)
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+string(c.dialect))
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(c.dialect), driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func (c *SQLChannel) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.QueryRowContext(ctx,
		"SELECT value FROM shared_channel WHERE key = "+c.placeholder(1), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sql get failed: %w", err)
	}
	return value, nil
}

func (c *SQLChannel) Set(ctx context.Context, key string, value []byte) error {
	query := fmt.Sprintf(`INSERT INTO shared_channel (key, value, updated_at) VALUES (%s, %s, %s)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		c.placeholder(1), c.placeholder(2), c.placeholder(3))

	if _, err := c.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("sql set failed: %w", err)
	}
	return nil
}

func (c *SQLChannel) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx,
		"DELETE FROM shared_channel WHERE key = "+c.placeholder(1), key); err != nil {
		return fmt.Errorf("sql delete failed: %w", err)
	}
	return nil
}

func (c *SQLChannel) Close() error {
	return c.db.Close()
}

func (c *SQLChannel) placeholder(n int) string {
	if c.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
