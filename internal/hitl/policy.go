package hitl

import "strings"

// ApprovalRule maps a label substring pattern to a risk tier, evaluated
// first-match-wins against checkpoint labels.
type ApprovalRule struct {
	LabelPattern string
	RiskTier     RiskTier
	TimeoutSecs  *uint64
}

// NewApprovalRule builds a rule matching labelPattern as a substring.
func NewApprovalRule(labelPattern string, riskTier RiskTier, timeoutSecs *uint64) ApprovalRule {
	return ApprovalRule{LabelPattern: labelPattern, RiskTier: riskTier, TimeoutSecs: timeoutSecs}
}

// Matches reports whether label contains this rule's pattern.
func (r ApprovalRule) Matches(label string) bool {
	return strings.Contains(label, r.LabelPattern)
}

// ApprovalPolicy is an ordered set of rules evaluated first-match-wins. A
// label matching nothing defaults to RiskLow.
type ApprovalPolicy struct {
	Rules              []ApprovalRule
	DefaultTimeoutSecs *uint64
}

// PermissiveApprovalPolicy has no rules; everything defaults to RiskLow.
func PermissiveApprovalPolicy() ApprovalPolicy {
	return ApprovalPolicy{}
}

// WithRule appends rule and returns the updated policy.
func (p ApprovalPolicy) WithRule(rule ApprovalRule) ApprovalPolicy {
	p.Rules = append(append([]ApprovalRule{}, p.Rules...), rule)
	return p
}

// EvaluateRisk returns the first matching rule's tier and effective
// timeout (falling back to the policy's default), or RiskLow with the
// default timeout if nothing matches.
func (p ApprovalPolicy) EvaluateRisk(label string) (RiskTier, *uint64) {
	for _, rule := range p.Rules {
		if rule.Matches(label) {
			if rule.TimeoutSecs != nil {
				return rule.RiskTier, rule.TimeoutSecs
			}
			return rule.RiskTier, p.DefaultTimeoutSecs
		}
	}
	return RiskLow, p.DefaultTimeoutSecs
}

func secs(n uint64) *uint64 { return &n }

// StandardApprovalPolicy carries production-sensible defaults:
//
//	deploy-prod       -> Critical, 600s
//	deploy-staging    -> High,     300s
//	publish           -> High,     300s
//	schema-migration  -> Critical, 900s
//	rollback          -> High,     180s
func StandardApprovalPolicy() ApprovalPolicy {
	return ApprovalPolicy{
		Rules: []ApprovalRule{
			NewApprovalRule("deploy-prod", RiskCritical, secs(600)),
			NewApprovalRule("deploy-staging", RiskHigh, secs(300)),
			NewApprovalRule("publish", RiskHigh, secs(300)),
			NewApprovalRule("schema-migration", RiskCritical, secs(900)),
			NewApprovalRule("rollback", RiskHigh, secs(180)),
		},
		DefaultTimeoutSecs: secs(300),
	}
}
