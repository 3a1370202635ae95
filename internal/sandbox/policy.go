package sandbox

import (
	"fmt"

	"github.com/marcus-qen/aivcs/internal/metrics"
)

// PolicyVerdict is the outcome of evaluating a ToolRequest against a
// ToolPolicySet.
type PolicyVerdict struct {
	Allowed          bool
	RequiresApproval bool
	Reason           string
}

// IsAllowed reports whether the verdict is a plain allow.
func (v PolicyVerdict) IsAllowed() bool { return v.Allowed }

// ToolRequest is a request to invoke a tool, submitted by a role.
type ToolRequest struct {
	ToolName       string
	Capability     ToolCapability
	Params         any
	RequestingRole AgentRole
}

// ruleKind distinguishes the three ToolPolicyRule shapes.
type ruleKind int

const (
	ruleAllow ruleKind = iota
	ruleDeny
	ruleRequireApproval
)

// ToolPolicyRule matches a (role, capability) pair and yields a verdict.
type ToolPolicyRule struct {
	kind       ruleKind
	role       AgentRole
	capability ToolCapability
	reason     string
}

// AllowRule permits role to exercise capability.
func AllowRule(role AgentRole, capability ToolCapability) ToolPolicyRule {
	return ToolPolicyRule{kind: ruleAllow, role: role, capability: capability}
}

// DenyRule forbids role from exercising capability, with reason.
func DenyRule(role AgentRole, capability ToolCapability, reason string) ToolPolicyRule {
	return ToolPolicyRule{kind: ruleDeny, role: role, capability: capability, reason: reason}
}

// RequireApprovalRule routes role's use of capability to human approval.
func RequireApprovalRule(role AgentRole, capability ToolCapability, reason string) ToolPolicyRule {
	return ToolPolicyRule{kind: ruleRequireApproval, role: role, capability: capability, reason: reason}
}

// Matches reports whether this rule applies to (role, capability).
func (r ToolPolicyRule) Matches(role AgentRole, capability ToolCapability) bool {
	return r.role == role && r.capability == capability
}

// Verdict returns the verdict this rule produces when it matches.
func (r ToolPolicyRule) Verdict() PolicyVerdict {
	switch r.kind {
	case ruleAllow:
		return PolicyVerdict{Allowed: true}
	case ruleDeny:
		return PolicyVerdict{Reason: r.reason}
	case ruleRequireApproval:
		return PolicyVerdict{RequiresApproval: true, Reason: r.reason}
	default:
		return PolicyVerdict{Reason: "unrecognised rule kind"}
	}
}

// ToolPolicySet is an ordered set of rules evaluated first-match-wins. No
// match falls through to default-deny.
type ToolPolicySet struct {
	Rules []ToolPolicyRule
}

// EmptyPolicySet denies every request (default-deny with no rules).
func EmptyPolicySet() ToolPolicySet {
	return ToolPolicySet{}
}

// WithRule appends rule and returns the updated set.
func (p ToolPolicySet) WithRule(rule ToolPolicyRule) ToolPolicySet {
	p.Rules = append(append([]ToolPolicyRule{}, p.Rules...), rule)
	return p
}

// StandardDevPolicy is the standard developer-mode policy:
//
//	role      | FileRead | FileWrite | GitRead | GitWrite | Shell | HttpFetch
//	Planner   |    yes   |    no     |   yes   |    no    |  no   |    no
//	Coder     |    yes   |    yes    |   yes   |    yes   |  yes  |    no
//	Reviewer  |    yes   |    no     |   yes   |    no    |  no   |    no
//	Tester    |    yes   |    no     |   yes   |    no    |  yes  |    no
//	Fixer     |    yes   |    yes    |   yes   |    yes   |  yes  |    no
func StandardDevPolicy() ToolPolicySet {
	var rules []ToolPolicyRule
	allow := func(role AgentRole, caps ...ToolCapability) {
		for _, c := range caps {
			rules = append(rules, AllowRule(role, c))
		}
	}

	readOnly := []ToolCapability{CapabilityFileRead, CapabilityGitRead}
	fullAccess := []ToolCapability{CapabilityFileRead, CapabilityFileWrite, CapabilityGitRead, CapabilityGitWrite, CapabilityShell}

	allow(RolePlanner, readOnly...)
	allow(RoleCoder, fullAccess...)
	allow(RoleReviewer, readOnly...)
	allow(RoleTester, CapabilityFileRead, CapabilityGitRead, CapabilityShell)
	allow(RoleFixer, fullAccess...)

	return ToolPolicySet{Rules: rules}
}

// EvaluateToolRequest checks request against policy's rules in order. The
// first matching rule's verdict is returned; if nothing matches, the
// request is denied.
func EvaluateToolRequest(policy ToolPolicySet, request ToolRequest) PolicyVerdict {
	for _, rule := range policy.Rules {
		if rule.Matches(request.RequestingRole, request.Capability) {
			verdict := rule.Verdict()
			if !verdict.Allowed {
				metrics.RecordSandboxDeny(string(request.RequestingRole), request.Capability.String())
			}
			return verdict
		}
	}
	metrics.RecordSandboxDeny(string(request.RequestingRole), request.Capability.String())
	return PolicyVerdict{Reason: fmt.Sprintf("no policy rule matched role=%s capability=%s", request.RequestingRole, request.Capability)}
}
