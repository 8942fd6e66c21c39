package router_test

import (
	"net/http"
	"testing"

	"aspen/permissions"
	"aspen/transport/http/router"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRoutes_EveryRouteHasPermissions(t *testing.T) {
	table := permissions.Get()
	require.NotNil(t, table)

	r := router.New(router.DomainHandlers{})
	mux := chi.NewRouter()
	r.SetupRoutes(mux)

	var count int

	err := chi.Walk(mux, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		count++

		entry := table.FindPermissions(route, method)
		assert.NotEmpty(t, entry.Path, "%s %s has no permissions entry", method, route)

		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, len(table.Endpoints), count)
}
