package gates

import "testing"

func TestPublishStandardRuleSetPasses(t *testing.T) {
	ctx := PublishContext{CandidateVersion: "1.0.0", SpecDigest: "abc"}
	verdict := EvaluatePublish(StandardPublishRuleSet(), ctx)
	if !verdict.Passed() {
		t.Fatalf("expected pass, got %+v", verdict.Violations)
	}
}

func TestPublishRejectsMalformedSemver(t *testing.T) {
	ctx := PublishContext{CandidateVersion: "not-a-version", SpecDigest: "abc"}
	verdict := EvaluatePublish(StandardPublishRuleSet(), ctx)
	if verdict.Passed() {
		t.Fatal("expected failure for malformed semver")
	}
}

func TestPublishVersionBumpVacuousWithoutPrevious(t *testing.T) {
	ruleSet := PublishRuleSet{Rules: []PublishRule{RuleVersionBump}}
	verdict := EvaluatePublish(ruleSet, PublishContext{CandidateVersion: "1.0.0"})
	if !verdict.Passed() {
		t.Fatal("expected VersionBump to be vacuous without a previous version")
	}
}

func TestPublishVersionBumpRejectsNonIncreasing(t *testing.T) {
	ruleSet := PublishRuleSet{Rules: []PublishRule{RuleVersionBump}}
	ctx := PublishContext{CandidateVersion: "1.0.0", PreviousVersion: "1.1.0"}
	verdict := EvaluatePublish(ruleSet, ctx)
	if verdict.Passed() {
		t.Fatal("expected failure for non-increasing version")
	}
}

func TestPublishUniqueVersionRejectsDuplicate(t *testing.T) {
	ruleSet := PublishRuleSet{Rules: []PublishRule{RuleUniqueVersion}}
	ctx := PublishContext{CandidateVersion: "1.0.0", ExistingVersions: []string{"0.9.0", "1.0.0"}}
	verdict := EvaluatePublish(ruleSet, ctx)
	if verdict.Passed() {
		t.Fatal("expected failure for already-published version")
	}
}

func TestPublishRequireSpecDigestRejectsEmpty(t *testing.T) {
	ctx := PublishContext{CandidateVersion: "1.0.0"}
	verdict := EvaluatePublish(StandardPublishRuleSet(), ctx)
	if verdict.Passed() {
		t.Fatal("expected failure for missing spec_digest")
	}
}

func TestPublishRequireNotesRejectsEmpty(t *testing.T) {
	ruleSet := PublishRuleSet{Rules: []PublishRule{RuleRequireNotes}}
	verdict := EvaluatePublish(ruleSet, PublishContext{CandidateVersion: "1.0.0"})
	if verdict.Passed() {
		t.Fatal("expected failure for missing notes")
	}
}
