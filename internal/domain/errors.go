package domain

import "fmt"

// InvalidDigestError reports a malformed hex digest string.
type InvalidDigestError struct {
	Hex string
}

func (e *InvalidDigestError) Error() string {
	return fmt.Sprintf("invalid digest: %q", e.Hex)
}

// InvalidAgentSpecError reports a rejected AgentSpec or CIRunSpec
// construction (empty git_sha, empty stages, ...).
type InvalidAgentSpecError struct {
	Reason string
}

func (e *InvalidAgentSpecError) Error() string {
	return fmt.Sprintf("invalid agent spec: %s", e.Reason)
}

// DigestMismatchError reports a verify_digest failure: the stored digest
// does not match the one recomputed from the object's own fields.
type DigestMismatchError struct {
	Expected string
	Actual   string
}

func (e *DigestMismatchError) Error() string {
	return fmt.Sprintf("digest mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// EmptyKindError reports an event with an empty kind string.
type EmptyKindError struct{}

func (e *EmptyKindError) Error() string { return "event kind is empty" }

// UnknownEventKindError reports an event kind that is neither a known
// structured kind nor prefixed Custom:.
type UnknownEventKindError struct {
	Kind string
}

func (e *UnknownEventKindError) Error() string {
	return fmt.Sprintf("unknown event kind: %q", e.Kind)
}

// MissingPayloadFieldError reports a structured event missing one of its
// required payload fields.
type MissingPayloadFieldError struct {
	Kind  string
	Field string
}

func (e *MissingPayloadFieldError) Error() string {
	return fmt.Sprintf("event kind %q missing required payload field %q", e.Kind, e.Field)
}

// OutOfOrderError reports an append_event call whose seq does not equal
// the next expected sequence number for the run.
type OutOfOrderError struct {
	Expected uint64
	Got      uint64
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("out of order event: expected seq %d, got %d", e.Expected, e.Got)
}

// DuplicateSeqError reports an append_event call for a (run_id, seq) pair
// that already exists.
type DuplicateSeqError struct {
	RunID string
	Seq   uint64
}

func (e *DuplicateSeqError) Error() string {
	return fmt.Sprintf("duplicate event seq %d for run %s", e.Seq, e.RunID)
}

// RunTerminalError reports an append or lifecycle transition attempted
// against a run that has already reached a terminal status.
type RunTerminalError struct {
	Status string
}

func (e *RunTerminalError) Error() string {
	return fmt.Sprintf("run is terminal (status=%s)", e.Status)
}

// RunNotFoundError reports a lookup for an unknown run id.
type RunNotFoundError struct {
	RunID string
}

func (e *RunNotFoundError) Error() string {
	return fmt.Sprintf("run not found: %s", e.RunID)
}

// InvalidStatusTransitionError reports an illegal run lifecycle transition.
type InvalidStatusTransitionError struct {
	Current   string
	Requested string
}

func (e *InvalidStatusTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.Current, e.Requested)
}

// ReleaseNotFoundError reports an unknown agent name in the release registry.
type ReleaseNotFoundError struct {
	Agent string
}

func (e *ReleaseNotFoundError) Error() string {
	return fmt.Sprintf("no releases found for agent %q", e.Agent)
}

// NoPreviousReleaseError reports a rollback attempted with fewer than two
// history entries.
type NoPreviousReleaseError struct {
	Agent string
}

func (e *NoPreviousReleaseError) Error() string {
	return fmt.Sprintf("no previous release to roll back to for agent %q", e.Agent)
}

// ReleaseConflictError reports an invalid or contradictory promotion
// request, or deploy_by_digest finding no current release.
type ReleaseConflictError struct {
	Msg string
}

func (e *ReleaseConflictError) Error() string {
	return fmt.Sprintf("release conflict: %s", e.Msg)
}

// StorageError wraps an underlying storage-backend error so that callers
// across trait boundaries only ever see this one stable variant, per the
// opacity requirement of the CasStore/RunLedger/ReleaseRegistry contracts.
type StorageError struct {
	Msg string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("storage error: %s", e.Msg)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err as a StorageError with the given context msg.
func NewStorageError(msg string, err error) *StorageError {
	return &StorageError{Msg: msg, Err: err}
}
