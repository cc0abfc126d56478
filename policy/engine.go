package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"

	"github.com/contentstudio-dev/gateway/internal/domain"
)

// Engine evaluates authorization decisions over the policy table via OPA.
type Engine struct {
	registry *Registry
	query    rego.PreparedEvalQuery
}

// NewEngine prepares the rego query against the given registry.
func NewEngine(ctx context.Context, registry *Registry) (*Engine, error) {
	r := rego.New(
		rego.Query("data.tool_policy.decision"),
		rego.Module("tool_policy.rego", decisionPolicy),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{registry: registry, query: query}, nil
}

// Evaluate returns the decision for a (toolID, role) pair: allow,
// require_approval, forbidden, or unknown_tool.
func (e *Engine) Evaluate(ctx context.Context, toolID, role string) (domain.Decision, error) {
	input := map[string]interface{}{
		"tool_id": toolID,
		"role":    role,
		"known":   false,
	}
	if p, ok := e.registry.Lookup(toolID); ok {
		input["known"] = true
		input["roles_allowed"] = p.RolesAllowed
		input["approval_required"] = p.ApprovalRequired
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return "", fmt.Errorf("policy produced no decision for %s", toolID)
	}

	s, ok := results[0].Expressions[0].Value.(string)
	if !ok {
		return "", fmt.Errorf("policy returned non-string decision for %s", toolID)
	}
	return domain.Decision(s), nil
}

// decisionPolicy maps the policy table onto the gateway's decision set.
// An unlisted tool is a hard rejection, never a silent allow.
const decisionPolicy = `
package tool_policy

default decision = "forbidden"

decision = "unknown_tool" {
	not input.known
}

role_allowed {
	input.roles_allowed[_] == input.role
}

decision = "require_approval" {
	input.known
	role_allowed
	input.approval_required
}

decision = "allow" {
	input.known
	role_allowed
	not input.approval_required
}
`
