package rbac

import (
	"context"
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrLoadRoles is returned when a role definition file cannot be read or
// parsed.
var ErrLoadRoles = errors.New("rbac.load_roles")

// yamlSource loads role definitions from a YAML file of the shape:
//
//	agent:
//	  inherits: [user]
//	  permissions:
//	    - tickets.triage
//	    - tickets.resolve
type yamlSource struct {
	path string
}

// NewYAMLSource creates a RoleSource reading the given file on every Load,
// so a restart picks up edited role definitions.
func NewYAMLSource(path string) RoleSource {
	return &yamlSource{path: path}
}

func (s *yamlSource) Load(ctx context.Context) (map[string]Role, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrLoadRoles, err)
	}

	roles := make(map[string]Role)
	if err := yaml.Unmarshal(raw, &roles); err != nil {
		return nil, errors.Join(ErrLoadRoles, err)
	}
	return roles, nil
}
