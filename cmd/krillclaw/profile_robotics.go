//go:build robotics

package main

import "github.com/bhardwajRahul/KrillClaw/pkg/tools"

// buildProfileTable wires the robotics profile. Send is nil: this
// binary has no default robot-control transport, so robot_cmd validates
// and rate-limits but performs no I/O until a driver supplies one.
func buildProfileTable() *tools.Table {
	return tools.NewProfileTable(tools.RoboticsOptions{})
}
