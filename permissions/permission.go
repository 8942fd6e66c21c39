// Package permissions maps routes to the roles allowed to call them.
package permissions

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"aspen/shared/constant"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

// Allows reports whether role may call the route. An empty role list
// admits any authenticated caller.
func (p Permission) Allows(role string) bool {
	return p.Skip || len(p.Permissions) == 0 || slices.Contains(p.Permissions, role)
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`

	index map[string]Permission
}

// FindPermissions returns the entry for a chi route pattern. Trailing
// slashes and method case are ignored.
func (r *PermissionData) FindPermissions(path, method string) Permission {
	return r.index[routeKey(path, method)]
}

func routeKey(path, method string) string {
	path = strings.TrimRight(path, "/")
	if path == constant.Empty {
		path = "/"
	}

	return strings.ToUpper(method) + " " + path
}

// Parse decodes the table and rejects duplicate routes and unknown roles.
func Parse(data []byte) (*PermissionData, error) {
	var permissions PermissionData

	if err := json.Unmarshal(data, &permissions); err != nil {
		return nil, fmt.Errorf("failed to decode permissions: %w", err)
	}

	permissions.index = make(map[string]Permission, len(permissions.Endpoints))

	var errs []error

	for _, endpoint := range permissions.Endpoints {
		key := routeKey(endpoint.Path, endpoint.Method)
		if _, dup := permissions.index[key]; dup {
			errs = append(errs, fmt.Errorf("duplicate route %s", key))
		}

		for _, role := range endpoint.Permissions {
			if !slices.Contains(constant.Roles, role) {
				errs = append(errs, fmt.Errorf("route %s: unknown role %q", key, role))
			}
		}

		permissions.index[key] = endpoint
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &permissions, nil
}

// Get loads the embedded table. A broken table yields nil, which the RBAC
// middleware treats as deny-all.
func Get() *PermissionData {
	permissions, err := Parse(permissionsData)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load embedded permissions")

		return nil
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Successfully loaded embedded permissions")

	return permissions
}
