//go:build integration

package helper_test

import (
	"context"
	"testing"
	"time"

	"aspen/config"
	"aspen/helper"
	"aspen/infras/postgres"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startPostgres(t *testing.T) *config.Config {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	pool.MaxWait = 2 * time.Minute

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=aspen",
			"POSTGRES_PASSWORD=s3cr3t:with@chars",
			"POSTGRES_DB=aspen",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })

	cfg := &config.Config{}
	cfg.DB.Postgres.MaxRetry = 1
	cfg.DB.Postgres.MaxOpenConns = 4
	cfg.DB.Postgres.MaxIdleConns = 4
	cfg.DB.Postgres.MigrationTable = "schema_migrations"
	cfg.DB.Postgres.Write = config.PostgresServer{
		Host:     "127.0.0.1",
		Port:     resource.GetPort("5432/tcp"),
		Username: "aspen",
		Password: "s3cr3t:with@chars",
		Name:     "aspen",
		SSLMode:  "disable",
		Timezone: "UTC",
	}
	cfg.DB.Postgres.Read = cfg.DB.Postgres.Write

	require.NoError(t, pool.Retry(func() error {
		conn := postgres.New(cfg)

		return conn.Ping(context.Background())
	}))

	return cfg
}

func TestRunner_AgainstPostgres(t *testing.T) {
	cfg := startPostgres(t)

	require.NoError(t, helper.Runner(cfg, helper.ActionUp))
	require.NoError(t, helper.Runner(cfg, helper.ActionUp), "second up is a no-op")
	require.NoError(t, helper.Runner(cfg, helper.ActionVersion))

	conn := postgres.New(cfg)
	require.NoError(t, conn.Ping(context.Background()))

	var hotels int
	require.NoError(t, conn.Read.Get(&hotels, `SELECT COUNT(*) FROM hotels WHERE name = 'ASPEN GRAND HOTELS'`))
	assert.Equal(t, 1, hotels)

	require.NoError(t, helper.Runner(cfg, helper.ActionDown))

	var exists bool
	require.NoError(t, conn.Read.Get(&exists, `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'bookings')`))
	assert.False(t, exists)

	require.ErrorIs(t, helper.Runner(cfg, "sideways"), helper.ErrUnknownAction)
}
