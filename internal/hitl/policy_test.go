package hitl

import "testing"

func TestPermissiveApprovalPolicyDefaultsToLow(t *testing.T) {
	tier, timeout := PermissiveApprovalPolicy().EvaluateRisk("anything")
	if tier != RiskLow {
		t.Fatalf("tier = %v, want low", tier)
	}
	if timeout != nil {
		t.Fatal("permissive policy should carry no default timeout")
	}
}

func TestStandardApprovalPolicyRouting(t *testing.T) {
	policy := StandardApprovalPolicy()

	cases := []struct {
		label       string
		wantTier    RiskTier
		wantTimeout uint64
	}{
		{"deploy-prod-agent-x", RiskCritical, 600},
		{"deploy-staging-agent-x", RiskHigh, 300},
		{"publish-agent-x", RiskHigh, 300},
		{"schema-migration-001", RiskCritical, 900},
		{"rollback-agent-x", RiskHigh, 180},
		{"no-match-here", RiskLow, 300},
	}
	for _, tc := range cases {
		tier, timeout := policy.EvaluateRisk(tc.label)
		if tier != tc.wantTier {
			t.Errorf("label %q: tier = %v, want %v", tc.label, tier, tc.wantTier)
		}
		if timeout == nil || *timeout != tc.wantTimeout {
			t.Errorf("label %q: timeout = %v, want %d", tc.label, timeout, tc.wantTimeout)
		}
	}
}

func TestApprovalPolicyFirstMatchWins(t *testing.T) {
	highTimeout := uint64(300)
	criticalTimeout := uint64(600)
	policy := PermissiveApprovalPolicy().
		WithRule(NewApprovalRule("deploy", RiskHigh, &highTimeout)).
		WithRule(NewApprovalRule("deploy-prod", RiskCritical, &criticalTimeout))

	tier, timeout := policy.EvaluateRisk("deploy-prod-agent")
	if tier != RiskHigh || *timeout != 300 {
		t.Fatalf("expected first matching rule to win, got tier=%v timeout=%v", tier, timeout)
	}
}

func TestApprovalRuleMatchesSubstring(t *testing.T) {
	rule := NewApprovalRule("rollback", RiskHigh, nil)
	if !rule.Matches("rollback-agent-7") {
		t.Fatal("expected substring match")
	}
	if rule.Matches("deploy-prod") {
		t.Fatal("unexpected match")
	}
}
