//go:build iot

package main

import "github.com/bhardwajRahul/KrillClaw/pkg/tools"

// buildProfileTable wires the IoT profile. This binary attaches no
// bridge, and --transport does not attach one, so publish_mqtt and
// subscribe_mqtt report themselves unavailable.
func buildProfileTable() *tools.Table {
	return tools.NewProfileTable(tools.IoTOptions{})
}
