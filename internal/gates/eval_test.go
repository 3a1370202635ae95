package gates

import "testing"

func reportWithRate(rate float64) EvalReport {
	return EvalReport{PassRate: rate}
}

func TestEvalMinPassRatePasses(t *testing.T) {
	ruleSet := StandardEvalRuleSet(EvalThresholds{MinPassRate: 0.9})
	verdict := EvaluateGate(ruleSet, reportWithRate(0.95))
	if !verdict.Passed() {
		t.Fatalf("expected pass, got %+v", verdict.Violations)
	}
}

func TestEvalMinPassRateRejectsBelowThreshold(t *testing.T) {
	ruleSet := StandardEvalRuleSet(EvalThresholds{MinPassRate: 0.9})
	verdict := EvaluateGate(ruleSet, reportWithRate(0.5))
	if verdict.Passed() {
		t.Fatal("expected failure below minimum pass rate")
	}
}

func TestEvalMaxRegressionVacuousWithoutBaseline(t *testing.T) {
	ruleSet := StandardEvalRuleSet(EvalThresholds{MaxRegression: 0.05})
	verdict := EvaluateGate(ruleSet, reportWithRate(0.5))
	for _, v := range verdict.Violations {
		if v.Rule == RuleMaxRegression {
			t.Fatal("expected MaxRegression to be vacuous without a baseline")
		}
	}
}

func TestEvalMaxRegressionRejectsExcessDrop(t *testing.T) {
	baseline := 0.9
	ruleSet := StandardEvalRuleSet(EvalThresholds{MaxRegression: 0.05})
	report := EvalReport{PassRate: 0.7, BaselinePassRate: &baseline}
	verdict := EvaluateGate(ruleSet, report)
	if verdict.Passed() {
		t.Fatal("expected failure for regression beyond max")
	}
}

func TestEvalRequireTagFlagsTaggedFailure(t *testing.T) {
	ruleSet := EvalRuleSet{Rules: []EvalRule{RuleRequireTag}, RequiredTag: "critical"}
	report := EvalReport{CaseResults: []CaseResult{
		{CaseID: "c1", Passed: false, Tags: []string{"critical"}},
		{CaseID: "c2", Passed: false, Tags: []string{"optional"}},
	}}
	verdict := EvaluateGate(ruleSet, report)
	if verdict.Passed() {
		t.Fatal("expected failure for failed case tagged as required")
	}
	if len(verdict.Violations) != 1 {
		t.Fatalf("expected exactly one violation, got %d", len(verdict.Violations))
	}
}

func TestEvalFailFastStopsAtFirstViolation(t *testing.T) {
	ruleSet := EvalRuleSet{
		Rules:       []EvalRule{RuleMinPassRate, RuleRequireTag},
		Thresholds:  EvalThresholds{MinPassRate: 0.9},
		RequiredTag: "critical",
		FailFast:    true,
	}
	report := EvalReport{PassRate: 0.1, CaseResults: []CaseResult{
		{CaseID: "c1", Passed: false, Tags: []string{"critical"}},
	}}
	verdict := EvaluateGate(ruleSet, report)
	if len(verdict.Violations) != 1 {
		t.Fatalf("expected exactly one violation with fail-fast, got %d", len(verdict.Violations))
	}
}
