// Package sandbox implements the tool-request authorisation layer:
// first-match-wins (role, capability) policy evaluation plus bounded
// execution (timeout, retry, circuit breaker) around an opaque executor.
package sandbox

import "fmt"

// ToolCapability is the permission axis a policy rule matches against.
type ToolCapability struct {
	kind   string
	custom string
}

var (
	CapabilityShell     = ToolCapability{kind: "shell"}
	CapabilityFileRead  = ToolCapability{kind: "file_read"}
	CapabilityFileWrite = ToolCapability{kind: "file_write"}
	CapabilityGitRead   = ToolCapability{kind: "git_read"}
	CapabilityGitWrite  = ToolCapability{kind: "git_write"}
	CapabilityHTTPFetch = ToolCapability{kind: "http_fetch"}
)

// CustomCapability builds a project-specific capability, the escape hatch
// for capabilities not in the standard set.
func CustomCapability(name string) ToolCapability {
	return ToolCapability{kind: "custom", custom: name}
}

// String renders the capability the way policy reasons quote it.
func (c ToolCapability) String() string {
	if c.kind == "custom" {
		return fmt.Sprintf("custom(%s)", c.custom)
	}
	return c.kind
}

// AgentRole is the requesting party in a tool request.
type AgentRole string

const (
	RolePlanner  AgentRole = "Planner"
	RoleCoder    AgentRole = "Coder"
	RoleReviewer AgentRole = "Reviewer"
	RoleTester   AgentRole = "Tester"
	RoleFixer    AgentRole = "Fixer"
)
