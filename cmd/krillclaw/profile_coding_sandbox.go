//go:build sandbox && !iot && !robotics

package main

import "github.com/bhardwajRahul/KrillClaw/pkg/tools"

// sandboxDir is the single fixed directory sandbox mode confines the
// coding profile's file/path tools to (spec §4.5, glossary's "Sandbox
// mode — build-time flag tightening the file/path/shell policy").
const sandboxDir = "/var/lib/krillclaw/sandbox"

// buildProfileTable wires the coding profile in sandbox mode: bash
// chdirs into sandboxDir with PATH cleared, and every file tool's
// allowlist is that single directory instead of the CWD/temp pair the
// unsandboxed build uses.
func buildProfileTable() *tools.Table {
	return tools.NewProfileTable(tools.CodingOptions{
		Policy:     tools.NewSandboxPolicy(sandboxDir),
		Sandbox:    true,
		SandboxDir: sandboxDir,
	})
}
