// Package gates implements the three structurally-identical pure rule
// evaluators — compat, publish, and eval — plus the auxiliary quality
// guardrails check, all driving release-promotion decisions.
package gates

import (
	"context"
	"fmt"

	"github.com/marcus-qen/aivcs/internal/domain"
	"github.com/marcus-qen/aivcs/internal/metrics"
	"github.com/marcus-qen/aivcs/internal/telemetry"
)

// CompatRule names a compatibility check evaluated during promotion.
type CompatRule string

const (
	RuleSpecDigestValid    CompatRule = "SpecDigestValid"
	RuleRequireToolsDigest CompatRule = "RequireToolsDigest"
	RuleRequireGraphDigest CompatRule = "RequireGraphDigest"
	RuleNoToolsChange      CompatRule = "NoToolsChange"
	RuleNoGraphChange      CompatRule = "NoGraphChange"
)

// CompatRuleSet is an ordered list of compat rules to evaluate.
type CompatRuleSet struct {
	Rules    []CompatRule
	FailFast bool
}

// StandardCompatRuleSet is the default compatibility rule set applied to
// promotions.
func StandardCompatRuleSet() CompatRuleSet {
	return CompatRuleSet{Rules: []CompatRule{
		RuleSpecDigestValid,
		RuleRequireToolsDigest,
		RuleRequireGraphDigest,
	}}
}

// PromoteContext carries the candidate spec being promoted and, if one
// exists, the currently-promoted spec to compare against. AgentName is
// optional and used only to label observability emitted by EvaluateCompat.
type PromoteContext struct {
	Candidate domain.AgentSpec
	Current   *domain.AgentSpec
	AgentName string
}

// CompatViolation names a failed rule with a human-readable reason.
type CompatViolation struct {
	Rule   CompatRule
	Reason string
}

// CompatVerdict is the outcome of evaluating a CompatRuleSet.
type CompatVerdict struct {
	Violations []CompatViolation
}

// Passed reports whether the verdict carries no violations.
func (v CompatVerdict) Passed() bool { return len(v.Violations) == 0 }

// EvaluateCompat evaluates every rule in ruleSet against ctx, in order,
// stopping early when ruleSet.FailFast is set and a violation is found.
func EvaluateCompat(ruleSet CompatRuleSet, ctx PromoteContext) CompatVerdict {
	_, span := telemetry.StartGateSpan(context.Background(), "compat", ctx.AgentName)

	var violations []CompatViolation
	for _, rule := range ruleSet.Rules {
		if v := checkCompatRule(rule, ctx); v != nil {
			violations = append(violations, *v)
			metrics.RecordGateBlock(string(rule), ctx.AgentName)
			if ruleSet.FailFast {
				break
			}
		}
	}

	verdict := CompatVerdict{Violations: violations}
	telemetry.EndGateSpan(span, verdict.Passed(), len(violations))
	return verdict
}

func checkCompatRule(rule CompatRule, ctx PromoteContext) *CompatViolation {
	switch rule {
	case RuleSpecDigestValid:
		if !domain.IsValidHexDigest(ctx.Candidate.SpecDigest) {
			return &CompatViolation{Rule: rule, Reason: fmt.Sprintf("spec_digest %q is not a valid 64-char hex digest", ctx.Candidate.SpecDigest)}
		}
	case RuleRequireToolsDigest:
		if ctx.Candidate.ToolsDigest == "" {
			return &CompatViolation{Rule: rule, Reason: "tools_digest is empty"}
		}
	case RuleRequireGraphDigest:
		if ctx.Candidate.GraphDigest == "" {
			return &CompatViolation{Rule: rule, Reason: "graph_digest is empty"}
		}
	case RuleNoToolsChange:
		if ctx.Current != nil && ctx.Current.ToolsDigest != ctx.Candidate.ToolsDigest {
			return &CompatViolation{Rule: rule, Reason: fmt.Sprintf("tools_digest changed from %s to %s", ctx.Current.ToolsDigest, ctx.Candidate.ToolsDigest)}
		}
	case RuleNoGraphChange:
		if ctx.Current != nil && ctx.Current.GraphDigest != ctx.Candidate.GraphDigest {
			return &CompatViolation{Rule: rule, Reason: fmt.Sprintf("graph_digest changed from %s to %s", ctx.Current.GraphDigest, ctx.Candidate.GraphDigest)}
		}
	}
	return nil
}
