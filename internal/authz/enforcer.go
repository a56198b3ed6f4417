package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Enforcer wraps a casbin SyncedEnforcer holding the static role ->
// permission policy. It is the single place that answers "can this role
// do this" — per-user extra grants live on the session
// (internal/useraccount) and are checked alongside it by
// RequirePermission, not inside the enforcer itself.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds the enforcer from the embedded model and policy.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	if err := loadEmbeddedPolicy(e, embeddedPolicy); err != nil {
		return nil, err
	}
	return &Enforcer{enforcer: e}, nil
}

func loadEmbeddedPolicy(e *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 3 || strings.TrimSpace(parts[0]) != "p" {
			continue
		}
		role := strings.TrimSpace(parts[1])
		perm := strings.TrimSpace(parts[2])
		if _, err := e.AddPolicy(role, perm); err != nil {
			return fmt.Errorf("add policy %s/%s: %w", role, perm, err)
		}
	}
	return nil
}

// Allows reports whether role grants permission per the static policy.
func (e *Enforcer) Allows(role string, permission Permission) (bool, error) {
	allowed, err := e.enforcer.Enforce(role, string(permission))
	if err != nil {
		return false, fmt.Errorf("enforce %s/%s: %w", role, permission, err)
	}
	return allowed, nil
}
