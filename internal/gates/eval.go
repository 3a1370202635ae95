package gates

import (
	"context"
	"fmt"

	"github.com/marcus-qen/aivcs/internal/metrics"
	"github.com/marcus-qen/aivcs/internal/telemetry"
)

// CaseResult is the outcome of a single evaluation case.
type CaseResult struct {
	CaseID string   `json:"case_id"`
	Score  float64  `json:"score"`
	Passed bool     `json:"passed"`
	Tags   []string `json:"tags,omitempty"`
}

// EvalReport summarises an evaluation suite run.
type EvalReport struct {
	CaseResults      []CaseResult `json:"case_results"`
	PassRate         float64      `json:"pass_rate"`
	BaselinePassRate *float64     `json:"baseline_pass_rate,omitempty"`
}

// EvalRule names a check evaluated against an EvalReport.
type EvalRule string

const (
	RuleMinPassRate   EvalRule = "MinPassRate"
	RuleMaxRegression EvalRule = "MaxRegression"
	RuleRequireTag    EvalRule = "RequireTag"
)

// EvalThresholds parameterises the eval rule set.
type EvalThresholds struct {
	MinPassRate   float64
	MaxRegression float64
}

// EvalRuleSet is an ordered list of eval rules with thresholds and an
// optional required tag for RuleRequireTag. AgentName is optional and
// used only to label observability emitted by EvaluateGate.
type EvalRuleSet struct {
	Rules       []EvalRule
	Thresholds  EvalThresholds
	RequiredTag string
	FailFast    bool
	AgentName   string
}

// StandardEvalRuleSet returns [MinPassRate, MaxRegression] with the given
// thresholds.
func StandardEvalRuleSet(thresholds EvalThresholds) EvalRuleSet {
	return EvalRuleSet{
		Rules:      []EvalRule{RuleMinPassRate, RuleMaxRegression},
		Thresholds: thresholds,
	}
}

// EvalViolation names a failed rule with a human-readable reason.
type EvalViolation struct {
	Rule   EvalRule
	Reason string
}

// EvalVerdict is the outcome of evaluating an EvalRuleSet.
type EvalVerdict struct {
	Violations []EvalViolation
}

// Passed reports whether the verdict carries no violations.
func (v EvalVerdict) Passed() bool { return len(v.Violations) == 0 }

// EvaluateGate evaluates every rule in ruleSet against report, in order.
func EvaluateGate(ruleSet EvalRuleSet, report EvalReport) EvalVerdict {
	_, span := telemetry.StartGateSpan(context.Background(), "eval", ruleSet.AgentName)

	var violations []EvalViolation
	for _, rule := range ruleSet.Rules {
		if v := checkEvalRule(rule, ruleSet, report); v != nil {
			violations = append(violations, *v)
			metrics.RecordGateBlock(string(rule), ruleSet.AgentName)
			if ruleSet.FailFast {
				break
			}
		}
	}

	verdict := EvalVerdict{Violations: violations}
	telemetry.EndGateSpan(span, verdict.Passed(), len(violations))
	return verdict
}

func checkEvalRule(rule EvalRule, ruleSet EvalRuleSet, report EvalReport) *EvalViolation {
	switch rule {
	case RuleMinPassRate:
		if report.PassRate < ruleSet.Thresholds.MinPassRate {
			return &EvalViolation{Rule: rule, Reason: fmt.Sprintf("pass rate %.4f below minimum %.4f", report.PassRate, ruleSet.Thresholds.MinPassRate)}
		}
	case RuleMaxRegression:
		if report.BaselinePassRate == nil {
			return nil // vacuous without a baseline
		}
		regression := *report.BaselinePassRate - report.PassRate
		if regression > ruleSet.Thresholds.MaxRegression {
			return &EvalViolation{Rule: rule, Reason: fmt.Sprintf("regression %.4f exceeds maximum %.4f", regression, ruleSet.Thresholds.MaxRegression)}
		}
	case RuleRequireTag:
		for _, c := range report.CaseResults {
			if !hasTag(c.Tags, ruleSet.RequiredTag) {
				continue
			}
			if !c.Passed {
				return &EvalViolation{Rule: rule, Reason: fmt.Sprintf("case %s tagged %q failed", c.CaseID, ruleSet.RequiredTag)}
			}
		}
	}
	return nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
