package domain

import (
	"time"

	"github.com/google/uuid"
)

// AgentSpecFields are the five components that make up an AgentSpec's
// digest input. Their JSON encoding, canonicalised, is what spec_digest
// commits to.
type AgentSpecFields struct {
	GitSHA        string `json:"git_sha"`
	GraphDigest   string `json:"graph_digest"`
	PromptsDigest string `json:"prompts_digest"`
	ToolsDigest   string `json:"tools_digest"`
	ConfigDigest  string `json:"config_digest"`
}

// AgentSpec is the immutable identity of an agent version. It is created
// once when an agent version is registered and never mutated; runs and
// releases reference it by spec_digest.
type AgentSpec struct {
	SpecID        uuid.UUID `json:"spec_id"`
	SpecDigest    string    `json:"spec_digest"`
	GitSHA        string    `json:"git_sha"`
	GraphDigest   string    `json:"graph_digest"`
	PromptsDigest string    `json:"prompts_digest"`
	ToolsDigest   string    `json:"tools_digest"`
	ConfigDigest  string    `json:"config_digest"`
	CreatedAt     time.Time `json:"created_at"`
	Metadata      any       `json:"metadata,omitempty"`
}

// NewAgentSpec creates an AgentSpec from its five digest components,
// rejecting an empty git_sha.
func NewAgentSpec(fields AgentSpecFields, metadata any) (*AgentSpec, error) {
	if fields.GitSHA == "" {
		return nil, &InvalidAgentSpecError{Reason: "git_sha cannot be empty"}
	}

	digest, err := ComputeAgentSpecDigest(fields)
	if err != nil {
		return nil, err
	}

	return &AgentSpec{
		SpecID:        uuid.New(),
		SpecDigest:    digest,
		GitSHA:        fields.GitSHA,
		GraphDigest:   fields.GraphDigest,
		PromptsDigest: fields.PromptsDigest,
		ToolsDigest:   fields.ToolsDigest,
		ConfigDigest:  fields.ConfigDigest,
		CreatedAt:     time.Now().UTC(),
		Metadata:      metadata,
	}, nil
}

// ComputeAgentSpecDigest computes the stable canonical-JSON digest over an
// AgentSpec's five identity fields.
func ComputeAgentSpecDigest(fields AgentSpecFields) (string, error) {
	d, err := CanonicalDigest(fields)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// VerifyDigest recomputes the spec digest from a's own fields and compares
// it against the stored SpecDigest.
func (a *AgentSpec) VerifyDigest() error {
	computed, err := ComputeAgentSpecDigest(AgentSpecFields{
		GitSHA:        a.GitSHA,
		GraphDigest:   a.GraphDigest,
		PromptsDigest: a.PromptsDigest,
		ToolsDigest:   a.ToolsDigest,
		ConfigDigest:  a.ConfigDigest,
	})
	if err != nil {
		return err
	}
	if computed != a.SpecDigest {
		return &DigestMismatchError{Expected: a.SpecDigest, Actual: computed}
	}
	return nil
}
