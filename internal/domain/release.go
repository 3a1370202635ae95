package domain

import "time"

// ReleaseEnvironment optionally scopes a Release to a deployment
// environment. It supplements the core Release shape (original_source's
// domain/release.rs carried this field; the distilled spec's Release does
// not require it) — no gate in this system requires it to be set.
type ReleaseEnvironment string

const (
	EnvDev        ReleaseEnvironment = "DEV"
	EnvStaging    ReleaseEnvironment = "STAGING"
	EnvProduction ReleaseEnvironment = "PRODUCTION"
)

// Release is an append-only promotion record binding an agent name to a
// spec digest. History is ordered by CreatedAt; the most recent entry is
// "current".
type Release struct {
	AgentName    string             `json:"agent_name"`
	SpecDigest   string             `json:"spec_digest"`
	VersionLabel string             `json:"version_label,omitempty"`
	PromotedBy   string             `json:"promoted_by"`
	Notes        string             `json:"notes,omitempty"`
	Environment  ReleaseEnvironment `json:"environment,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}
