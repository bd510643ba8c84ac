//go:build !iot && !robotics && !sandbox

package main

import (
	"os"

	"github.com/bhardwajRahul/KrillClaw/pkg/tools"
)

// buildProfileTable wires the coding profile: a host policy rooted at
// the process CWD and the OS temp directory (spec §4.5's non-sandbox
// allowlist). Sandbox mode, if needed, is a separate build with its
// own fixed directory — this default build runs unsandboxed.
func buildProfileTable() *tools.Table {
	policy, err := tools.NewHostPolicy()
	if err != nil {
		// os.Getwd failing is an environment problem no flag can fix;
		// fall back to a policy with only the temp root so file tools
		// still fail closed rather than panic.
		policy = &tools.PathPolicy{Roots: []string{os.TempDir()}}
	}
	return tools.NewProfileTable(tools.CodingOptions{Policy: policy})
}
