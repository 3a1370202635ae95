package gates

import "time"

// QualityCheck names a required quality check.
type QualityCheck string

const (
	CheckFmt          QualityCheck = "Fmt"
	CheckLint         QualityCheck = "Lint"
	CheckTest         QualityCheck = "Test"
	CheckVerification QualityCheck = "Verification"
)

// QualitySeverity orders finding severity from least to most urgent.
type QualitySeverity int

const (
	SeverityInfo QualitySeverity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// CheckFinding is an actionable finding produced by a quality check.
type CheckFinding struct {
	Severity QualitySeverity
	Message  string
	FilePath string
	Line     *uint32
}

// CheckResult is the result of one quality check.
type CheckResult struct {
	Check    QualityCheck
	Passed   bool
	Findings []CheckFinding
}

// ReleaseAction names the release decision being guarded.
type ReleaseAction string

const (
	ActionPromote ReleaseAction = "Promote"
	ActionPublish ReleaseAction = "Publish"
)

// isHighRisk reports whether action requires explicit approval regardless
// of check outcomes.
func (a ReleaseAction) isHighRisk() bool { return a == ActionPublish }

// GuardrailPolicyProfile names the required checks and the severity that
// blocks a release.
type GuardrailPolicyProfile struct {
	Name            string
	RequiredChecks  []QualityCheck
	BlockOnSeverity QualitySeverity
}

// StandardGuardrailProfile requires fmt, lint, and test, blocking on High.
func StandardGuardrailProfile() GuardrailPolicyProfile {
	return GuardrailPolicyProfile{
		Name:            "standard",
		RequiredChecks:  []QualityCheck{CheckFmt, CheckLint, CheckTest},
		BlockOnSeverity: SeverityHigh,
	}
}

// StrictGuardrailProfile additionally requires verification and blocks on
// Medium.
func StrictGuardrailProfile() GuardrailPolicyProfile {
	return GuardrailPolicyProfile{
		Name:            "strict",
		RequiredChecks:  []QualityCheck{CheckFmt, CheckLint, CheckTest, CheckVerification},
		BlockOnSeverity: SeverityMedium,
	}
}

// GuardrailCoverage reports how many of the profile's required checks were
// executed and how many of those passed.
type GuardrailCoverage struct {
	RequiredChecks         int
	ExecutedRequiredChecks int
	PassedRequiredChecks   int
}

// GuardrailVerdict is the outcome of evaluating a GuardrailPolicyProfile
// against a set of check results.
type GuardrailVerdict struct {
	Passed                bool
	BlockedChecks         []QualityCheck
	MissingRequiredChecks []QualityCheck
	BlockingFindings      []CheckFinding
	RequiresApproval      bool
	Coverage              GuardrailCoverage
	EvaluatedAt           time.Time
}

// GuardrailArtifact is the auditable record of a guardrail evaluation.
// This package does not write it to any store.
type GuardrailArtifact struct {
	RunID        string
	ProfileName  string
	CheckResults []CheckResult
	Verdict      GuardrailVerdict
}

// EvaluateQualityGuardrails checks results against profile's required
// checks, blocking on any required check that failed, any required check
// that is missing, any finding at or above BlockOnSeverity, or a high-risk
// action lacking explicitApproval.
func EvaluateQualityGuardrails(profile GuardrailPolicyProfile, results []CheckResult, action ReleaseAction, explicitApproval bool, now time.Time) GuardrailVerdict {
	byCheck := make(map[QualityCheck]CheckResult, len(results))
	for _, r := range results {
		byCheck[r.Check] = r
	}

	var (
		blockedChecks         []QualityCheck
		missingRequiredChecks []QualityCheck
		blockingFindings      []CheckFinding
		executedRequired      int
		passedRequired        int
		seenBlocked           = make(map[QualityCheck]bool)
	)

	for _, required := range profile.RequiredChecks {
		result, ok := byCheck[required]
		if !ok {
			missingRequiredChecks = append(missingRequiredChecks, required)
			continue
		}
		executedRequired++
		if result.Passed {
			passedRequired++
		} else if !seenBlocked[required] {
			blockedChecks = append(blockedChecks, required)
			seenBlocked[required] = true
		}
		for _, f := range result.Findings {
			if f.Severity >= profile.BlockOnSeverity {
				blockingFindings = append(blockingFindings, f)
			}
		}
	}

	requiresApproval := action.isHighRisk() && !explicitApproval
	passed := len(blockedChecks) == 0 &&
		len(missingRequiredChecks) == 0 &&
		len(blockingFindings) == 0 &&
		!requiresApproval

	return GuardrailVerdict{
		Passed:                passed,
		BlockedChecks:         blockedChecks,
		MissingRequiredChecks: missingRequiredChecks,
		BlockingFindings:      blockingFindings,
		RequiresApproval:      requiresApproval,
		Coverage: GuardrailCoverage{
			RequiredChecks:         len(profile.RequiredChecks),
			ExecutedRequiredChecks: executedRequired,
			PassedRequiredChecks:   passedRequired,
		},
		EvaluatedAt: now,
	}
}

// ReleaseBlockReason returns a short human-readable reason the release was
// blocked, or "" when verdict passed.
func ReleaseBlockReason(verdict GuardrailVerdict) string {
	if verdict.Passed {
		return ""
	}
	switch {
	case verdict.RequiresApproval:
		return "high-risk action requires explicit approval"
	case len(verdict.MissingRequiredChecks) > 0:
		return "required checks missing"
	case len(verdict.BlockedChecks) > 0:
		return "required checks failed"
	case len(verdict.BlockingFindings) > 0:
		return "blocking findings present"
	default:
		return "quality guardrail blocked"
	}
}
