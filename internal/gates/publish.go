package gates

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/marcus-qen/aivcs/internal/metrics"
	"github.com/marcus-qen/aivcs/internal/telemetry"
)

// PublishRule names a check evaluated before a new version is published.
type PublishRule string

const (
	RuleSemverFormat      PublishRule = "SemverFormat"
	RuleVersionBump       PublishRule = "VersionBump"
	RuleUniqueVersion     PublishRule = "UniqueVersion"
	RuleRequireNotes      PublishRule = "RequireNotes"
	RuleRequireSpecDigest PublishRule = "RequireSpecDigest"
)

// PublishRuleSet is an ordered list of publish rules to evaluate.
type PublishRuleSet struct {
	Rules    []PublishRule
	FailFast bool
}

// StandardPublishRuleSet is the default rule set applied before publish.
func StandardPublishRuleSet() PublishRuleSet {
	return PublishRuleSet{Rules: []PublishRule{
		RuleSemverFormat,
		RuleVersionBump,
		RuleRequireSpecDigest,
	}}
}

// PublishContext carries the candidate version and publication metadata.
// AgentName is optional and used only to label observability emitted by
// EvaluatePublish.
type PublishContext struct {
	CandidateVersion string
	PreviousVersion  string // empty when there is no previous version
	ExistingVersions []string
	Notes            string
	SpecDigest       string
	AgentName        string
}

// PublishViolation names a failed rule with a human-readable reason.
type PublishViolation struct {
	Rule   PublishRule
	Reason string
}

// PublishVerdict is the outcome of evaluating a PublishRuleSet.
type PublishVerdict struct {
	Violations []PublishViolation
}

// Passed reports whether the verdict carries no violations.
func (v PublishVerdict) Passed() bool { return len(v.Violations) == 0 }

// EvaluatePublish evaluates every rule in ruleSet against ctx, in order.
func EvaluatePublish(ruleSet PublishRuleSet, ctx PublishContext) PublishVerdict {
	_, span := telemetry.StartGateSpan(context.Background(), "publish", ctx.AgentName)

	var violations []PublishViolation
	for _, rule := range ruleSet.Rules {
		if v := checkPublishRule(rule, ctx); v != nil {
			violations = append(violations, *v)
			metrics.RecordGateBlock(string(rule), ctx.AgentName)
			if ruleSet.FailFast {
				break
			}
		}
	}

	verdict := PublishVerdict{Violations: violations}
	telemetry.EndGateSpan(span, verdict.Passed(), len(violations))
	return verdict
}

func checkPublishRule(rule PublishRule, ctx PublishContext) *PublishViolation {
	switch rule {
	case RuleSemverFormat:
		if _, err := semver.NewVersion(ctx.CandidateVersion); err != nil {
			return &PublishViolation{Rule: rule, Reason: fmt.Sprintf("version %q is not valid semver: %v", ctx.CandidateVersion, err)}
		}
	case RuleVersionBump:
		if ctx.PreviousVersion == "" {
			return nil // vacuous when no previous version
		}
		candidate, err := semver.NewVersion(ctx.CandidateVersion)
		if err != nil {
			return &PublishViolation{Rule: rule, Reason: fmt.Sprintf("candidate version %q is not valid semver", ctx.CandidateVersion)}
		}
		previous, err := semver.NewVersion(ctx.PreviousVersion)
		if err != nil {
			return &PublishViolation{Rule: rule, Reason: fmt.Sprintf("previous version %q is not valid semver", ctx.PreviousVersion)}
		}
		if !candidate.GreaterThan(previous) {
			return &PublishViolation{Rule: rule, Reason: fmt.Sprintf("candidate version %s does not exceed previous version %s", ctx.CandidateVersion, ctx.PreviousVersion)}
		}
	case RuleUniqueVersion:
		for _, v := range ctx.ExistingVersions {
			if v == ctx.CandidateVersion {
				return &PublishViolation{Rule: rule, Reason: fmt.Sprintf("version %s already published", ctx.CandidateVersion)}
			}
		}
	case RuleRequireNotes:
		if ctx.Notes == "" {
			return &PublishViolation{Rule: rule, Reason: "release notes are required"}
		}
	case RuleRequireSpecDigest:
		if ctx.SpecDigest == "" {
			return &PublishViolation{Rule: rule, Reason: "spec_digest is required"}
		}
	}
	return nil
}
