//go:build robotics

package tools

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bhardwajRahul/KrillClaw/pkg/jsonlite"
)

// ProfileName identifies the compile-time-selected tool set.
const ProfileName = "robotics"

const (
	poseBound     = 1000.0
	velocityBound = 500.0
)

// estopLatch is the mutable estop flag spec §4.5/§5 defines:
// once set by an estop call, every robot command is refused until an
// explicit reset. A single-threaded ReAct loop makes this race-free
// by construction (spec §5); the mutex only guards against a
// misbehaving caller running two loops against one profile table.
type estopLatch struct {
	mu     sync.Mutex
	active bool
}

func (e *estopLatch) trip() {
	e.mu.Lock()
	e.active = true
	e.mu.Unlock()
}

func (e *estopLatch) reset() {
	e.mu.Lock()
	e.active = false
	e.mu.Unlock()
}

func (e *estopLatch) isActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// RoboticsOptions configures the robotics profile's tool table. Rate
// and estop state are not held here: NewProfileTable creates them for
// each table rather than as package globals (spec §9: "avoid true
// global state even though the source uses it"), so a driver
// constructing multiple profile tables gets independent state.
type RoboticsOptions struct {
	Send func(ctx context.Context, cmdType, payloadRaw string) error
}

// NewProfileTable builds the robotics profile's tool table:
// robot_cmd, estop, telemetry_snapshot (spec §4.5). Bash and file
// tools have no entry at all, matching the IoT profile's
// register-nothing convention for capabilities a profile forbids.
func NewProfileTable(opts RoboticsOptions) *Table {
	t := NewTable()
	ring := NewCommandRing()
	latch := &estopLatch{}

	t.Register(ToolDef{
		Name:        "robot_cmd",
		Description: "Issue a robot command: pose, velocity, or gripper.",
		InputSchema: `{"type":"object","properties":{"cmd_type":{"type":"string","enum":["pose","velocity","gripper"]}},"required":["cmd_type"]}`,
	}, func(ctx context.Context, inputRaw string) *ToolResult {
		return robotCmd(ctx, inputRaw, opts, ring, latch)
	})

	t.Register(ToolDef{
		Name:        "estop",
		Description: "Immediately trip the emergency stop, blocking all further robot commands until reset.",
		InputSchema: `{"type":"object","properties":{}}`,
	}, func(ctx context.Context, inputRaw string) *ToolResult {
		latch.trip()
		return OK("emergency stop engaged")
	})

	t.Register(ToolDef{
		Name:        "estop_reset",
		Description: "Clear a previously engaged emergency stop.",
		InputSchema: `{"type":"object","properties":{}}`,
	}, func(ctx context.Context, inputRaw string) *ToolResult {
		latch.reset()
		return OK("emergency stop cleared")
	})

	t.Register(ToolDef{
		Name:        "telemetry_snapshot",
		Description: "Report a snapshot of the estop state.",
		InputSchema: `{"type":"object","properties":{}}`,
	}, func(ctx context.Context, inputRaw string) *ToolResult {
		return telemetrySnapshot(latch)
	})

	return t
}

func robotArgString(inputRaw, key string) (string, bool) {
	v, ok := jsonlite.String([]byte(inputRaw), key)
	if !ok {
		return "", false
	}
	return jsonlite.Unescape(v), true
}

func robotCmd(ctx context.Context, inputRaw string, opts RoboticsOptions, ring *CommandRing, latch *estopLatch) *ToolResult {
	if latch.isActive() {
		return Err("estop engaged: robot commands are blocked until reset")
	}

	cmdType, ok := robotArgString(inputRaw, "cmd_type")
	if !ok {
		return Err("missing required parameter: cmd_type")
	}

	switch cmdType {
	case "pose":
		if err := checkBounds(inputRaw, []string{"x", "y", "z"}, poseBound); err != nil {
			return Err(err.Error())
		}
	case "velocity":
		if err := checkBounds(inputRaw, []string{"vx", "vy", "vz"}, velocityBound); err != nil {
			return Err(err.Error())
		}
	case "gripper":
		grip, ok := jsonlite.Float([]byte(inputRaw), "grip")
		if !ok {
			return Err("missing required parameter: grip")
		}
		if grip < 0 || grip > 1 {
			return Err(fmt.Sprintf("grip %.3f out of bounds [0,1]", grip))
		}
	default:
		return Err(fmt.Sprintf("unknown cmd_type %q", cmdType))
	}

	if !ring.Allow(time.Now()) {
		return Err("robot command rate limit exceeded (10/s)")
	}

	if opts.Send != nil {
		if err := opts.Send(ctx, cmdType, inputRaw); err != nil {
			return Err(err.Error())
		}
	}
	return OK(cmdType + " command accepted")
}

// checkBounds validates every field named in fields is present and
// within [-bound, bound], per §4.5's |pose| ≤ 1000, |velocity| ≤ 500.
func checkBounds(inputRaw string, fields []string, bound float64) error {
	for _, field := range fields {
		v, ok := jsonlite.Float([]byte(inputRaw), field)
		if !ok {
			return fmt.Errorf("missing required parameter: %s", field)
		}
		if v < -bound || v > bound {
			return fmt.Errorf("%s=%.3f out of bounds [-%.0f,%.0f]", field, v, bound, bound)
		}
	}
	return nil
}

func telemetrySnapshot(latch *estopLatch) *ToolResult {
	w := jsonlite.NewWriter(64)
	w.Byte('{')
	w.Key("estop_active").Bool(latch.isActive()).Byte(',')
	w.Key("reported_at").QuotedString(time.Now().UTC().Format(time.RFC3339))
	w.Byte('}')
	return OK(w.String())
}
