// Package postgres opens the read and write pools behind every repository.
package postgres

//nolint:revive
import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"aspen/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	driverName = "postgres"
	readName   = "read"
	writeName  = "write"
)

type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(cfg *config.Config) *Connection {
	return &Connection{
		Read:  connect(cfg, readName, cfg.DB.Postgres.Read),
		Write: connect(cfg, writeName, cfg.DB.Postgres.Write),
	}
}

// Ping checks both pools.
func (c *Connection) Ping(ctx context.Context) error {
	for name, db := range map[string]*sqlx.DB{readName: c.Read, writeName: c.Write} {
		if db == nil {
			return fmt.Errorf("postgres %s pool is not connected", name)
		}

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to ping postgres %s pool: %w", name, err)
		}
	}

	return nil
}

// DatabaseName applies the optional environment prefix, e.g. "staging_aspen".
func DatabaseName(cfg *config.Config, base string) string {
	return cfg.DB.Postgres.Prefix + base
}

// DSN builds a postgres URL for server. Extra query values are appended as-is.
func DSN(cfg *config.Config, server config.PostgresServer, extra url.Values) string {
	query := url.Values{}
	if server.SSLMode != "" {
		query.Set("sslmode", server.SSLMode)
	}

	if server.Timezone != "" {
		query.Set("timezone", server.Timezone)
	}

	for key, values := range extra {
		for _, v := range values {
			query.Add(key, v)
		}
	}

	dsn := url.URL{
		Scheme:   driverName,
		User:     url.UserPassword(server.Username, server.Password),
		Host:     net.JoinHostPort(server.Host, server.Port),
		Path:     "/" + DatabaseName(cfg, server.Name),
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

// connect retries MaxRetry times and returns nil when every attempt fails.
func connect(cfg *config.Config, name string, server config.PostgresServer) *sqlx.DB {
	pg := cfg.DB.Postgres
	dbName := DatabaseName(cfg, server.Name)
	logger := log.With().
		Str("name", name).
		Str("host", server.Host).
		Str("port", server.Port).
		Str("dbName", dbName).
		Logger()

	for retry := range max(pg.MaxRetry, 1) {
		db, err := sqlx.Connect(driverName, DSN(cfg, server, nil))
		if err == nil {
			db.SetMaxOpenConns(pg.MaxOpenConns)
			db.SetMaxIdleConns(pg.MaxIdleConns)
			db.SetConnMaxLifetime(time.Duration(pg.ConnMaxLifetime) * time.Second)

			logger.Info().Int("maxOpen", pg.MaxOpenConns).Msg("Connected to database")

			return db
		}

		logger.Error().Err(err).Int("attempt", retry+1).Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(pg.RetryWaitTime) * time.Second)
	}

	return nil
}
