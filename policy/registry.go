// Package policy provides the tool policy table and the authorization engine.
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/contentstudio-dev/gateway/internal/domain"
)

// Registry is the immutable tool policy table. It is built once at startup
// and is safe for unlimited concurrent readers.
type Registry struct {
	byID  map[string]domain.ToolPolicy
	order []string
}

// defaultPolicies mirrors the product's seed tool table.
var defaultPolicies = []domain.ToolPolicy{
	{
		ID:               "fs.read",
		Description:      "Read files from the repo within allowed paths",
		RolesAllowed:     []string{"owner", "assistant", "content"},
		ApprovalRequired: false,
		RateLimit:        domain.RateLimit{Limit: 30, WindowSec: 60},
		Execution:        domain.ExecutionTargetLocal,
	},
	{
		ID:               "code.proposeEdit",
		Description:      "Propose code edits with diffs and apply after approval",
		RolesAllowed:     []string{"owner", "assistant"},
		ApprovalRequired: true,
		RateLimit:        domain.RateLimit{Limit: 10, WindowSec: 60},
		Execution:        domain.ExecutionTargetSandboxed,
	},
	{
		ID:               "cms.createPost",
		Description:      "Create a post via CMS API",
		RolesAllowed:     []string{"marketing", "owner"},
		ApprovalRequired: true,
		RateLimit:        domain.RateLimit{Limit: 5, WindowSec: 60},
		Execution:        domain.ExecutionTargetRemote,
	},
	{
		ID:               "bridge.message",
		Description:      "Send a message to the website agent",
		RolesAllowed:     []string{"owner", "assistant"},
		ApprovalRequired: false,
		RateLimit:        domain.RateLimit{Limit: 20, WindowSec: 60},
		Execution:        domain.ExecutionTargetRemote,
	},
}

type policyFile struct {
	Tools []domain.ToolPolicy `yaml:"tools"`
}

// NewRegistry builds a registry from the given policies.
func NewRegistry(policies []domain.ToolPolicy) (*Registry, error) {
	r := &Registry{byID: make(map[string]domain.ToolPolicy, len(policies))}
	for _, p := range policies {
		if p.ID == "" {
			return nil, fmt.Errorf("tool policy with empty id")
		}
		if _, exists := r.byID[p.ID]; exists {
			return nil, fmt.Errorf("duplicate tool policy: %s", p.ID)
		}
		if p.RateLimit.Limit <= 0 || p.RateLimit.WindowSec <= 0 {
			return nil, fmt.Errorf("tool policy %s: rate limit and window must be positive", p.ID)
		}
		switch p.Execution {
		case domain.ExecutionTargetLocal, domain.ExecutionTargetSandboxed, domain.ExecutionTargetRemote:
		default:
			return nil, fmt.Errorf("tool policy %s: unknown execution target %q", p.ID, p.Execution)
		}
		r.byID[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	return r, nil
}

// LoadRegistry builds a registry from a YAML policy file. An empty path loads
// the built-in defaults.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(defaultPolicies)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	var pf policyFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}
	if len(pf.Tools) == 0 {
		return nil, fmt.Errorf("policy file %s defines no tools", path)
	}
	return NewRegistry(pf.Tools)
}

// Lookup returns the policy for a tool id, or false when the tool is unknown.
func (r *Registry) Lookup(toolID string) (domain.ToolPolicy, bool) {
	p, ok := r.byID[toolID]
	return p, ok
}

// Authorize reports whether the policy exists and permits the role.
func (r *Registry) Authorize(toolID, role string) bool {
	p, ok := r.byID[toolID]
	return ok && p.AllowsRole(role)
}

// List returns all policies in declaration order.
func (r *Registry) List() []domain.ToolPolicy {
	out := make([]domain.ToolPolicy, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
