//go:build !iot && !robotics

package tools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ProfileName identifies the compile-time-selected tool set (spec
// §4.5, §9's "compile-time profile selection").
const ProfileName = "coding"

// bashOutputCap and patchOutputCap are the output-bytes ceilings spec
// §5 assigns to external process execution.
const (
	bashOutputCap  = 256 * 1024
	patchOutputCap = 64 * 1024
	readFileCap    = 64 * 1024
)

// CodingOptions configures the coding profile's tool table.
type CodingOptions struct {
	Policy  *PathPolicy
	Sandbox bool   // clears PATH and shell-quotes when true, per §4.5
	SandboxDir string
}

// NewProfileTable builds the coding profile's tool table: bash,
// read_file, write_file, edit_file, search, list_files, apply_patch —
// grounded on the teacher's pkg/tools/shell.go (process exec shape,
// stdout+stderr combination, output cap) and pkg/tools/filesystem.go
// (atomic write-via-temp-rename, path allowlisting).
func NewProfileTable(opts CodingOptions) *Table {
	t := NewTable()

	t.Register(ToolDef{
		Name:        "bash",
		Description: "Run a shell command and return combined stdout+stderr.",
		InputSchema: `{"type":"object","properties":{"command":{"type":"string"}},"required":["command"]}`,
	}, func(ctx context.Context, inputRaw string) *ToolResult {
		return execBash(ctx, inputRaw, opts)
	})

	t.Register(ToolDef{
		Name:        "read_file",
		Description: "Read the contents of a file, up to 64 KiB.",
		InputSchema: `{"type":"object","properties":{"path":{"type":"string"}},"required":["path"]}`,
	}, func(ctx context.Context, inputRaw string) *ToolResult {
		return readFile(inputRaw, opts.Policy)
	})

	t.Register(ToolDef{
		Name:        "write_file",
		Description: "Create or overwrite a file, creating parent directories as needed.",
		InputSchema: `{"type":"object","properties":{"path":{"type":"string"},"content":{"type":"string"}},"required":["path","content"]}`,
	}, func(ctx context.Context, inputRaw string) *ToolResult {
		return writeFile(inputRaw, opts.Policy)
	})

	t.Register(ToolDef{
		Name:        "edit_file",
		Description: "Replace exactly one occurrence of old_string with new_string in a file.",
		InputSchema: `{"type":"object","properties":{"path":{"type":"string"},"old_string":{"type":"string"},"new_string":{"type":"string"}},"required":["path","old_string","new_string"]}`,
	}, func(ctx context.Context, inputRaw string) *ToolResult {
		return editFile(inputRaw, opts.Policy)
	})

	t.Register(ToolDef{
		Name:        "search",
		Description: "Recursively substring-search files under a path, max depth 10, capped at 100 matches.",
		InputSchema: `{"type":"object","properties":{"path":{"type":"string"},"query":{"type":"string"}},"required":["path","query"]}`,
	}, func(ctx context.Context, inputRaw string) *ToolResult {
		return searchFiles(inputRaw, opts.Policy)
	})

	t.Register(ToolDef{
		Name:        "list_files",
		Description: "Recursively list files under a path, max depth 10, capped at 200 entries; pattern may have a leading or trailing '*'.",
		InputSchema: `{"type":"object","properties":{"path":{"type":"string"},"pattern":{"type":"string"}},"required":["path"]}`,
	}, func(ctx context.Context, inputRaw string) *ToolResult {
		return listFiles(inputRaw, opts.Policy)
	})

	t.Register(ToolDef{
		Name:        "apply_patch",
		Description: "Apply a unified diff with `patch -p0` against a file under the allowed root.",
		InputSchema: `{"type":"object","properties":{"path":{"type":"string"},"diff":{"type":"string"}},"required":["path","diff"]}`,
	}, func(ctx context.Context, inputRaw string) *ToolResult {
		return applyPatch(ctx, inputRaw, opts)
	})

	return t
}

func execBash(ctx context.Context, inputRaw string, opts CodingOptions) *ToolResult {
	command, ok := argString(inputRaw, "command")
	if !ok {
		return Err("missing required parameter: command")
	}

	cmdCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	var cmd *exec.Cmd
	if opts.Sandbox {
		// Sandbox mode: chdir to the fixed sandbox dir and clear PATH,
		// per §4.5's coding-profile policy for bash.
		cmd = exec.CommandContext(cmdCtx, "sh", "-c", shellQuote(command))
		cmd.Dir = opts.SandboxDir
		cmd.Env = []string{}
	} else {
		cmd = exec.CommandContext(cmdCtx, "sh", "-c", command)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	output := stdout.String()
	if stderr.Len() > 0 {
		if output != "" {
			output += "\n"
		}
		output += stderr.String()
	}
	if len(output) > bashOutputCap {
		output = output[:bashOutputCap] + fmt.Sprintf("\n... (truncated, %d more bytes)", len(output)-bashOutputCap)
	}
	if output == "" {
		output = "(no output)"
	}

	if cmdCtx.Err() == context.DeadlineExceeded {
		return Err("command timed out after 60s")
	}
	if err != nil {
		return Err(output)
	}
	return OK(output)
}

// shellQuote wraps command in single quotes, escaping any embedded
// single quote, for the sandboxed bash path (§4.5: "shell-quote the
// command").
func shellQuote(command string) string {
	return "'" + strings.ReplaceAll(command, "'", `'\''`) + "'"
}

func readFile(inputRaw string, policy *PathPolicy) *ToolResult {
	path, ok := argString(inputRaw, "path")
	if !ok {
		return Err("missing required parameter: path")
	}
	real, err := policy.Resolve(path)
	if err != nil {
		return Err("Path not allowed")
	}
	data, err := os.ReadFile(real)
	if err != nil {
		return Err(err.Error())
	}
	if len(data) > readFileCap {
		data = data[:readFileCap]
	}
	return OK(string(data))
}

func writeFile(inputRaw string, policy *PathPolicy) *ToolResult {
	path, ok := argString(inputRaw, "path")
	if !ok {
		return Err("missing required parameter: path")
	}
	content, ok := argString(inputRaw, "content")
	if !ok {
		return Err("missing required parameter: content")
	}
	real, err := policy.Resolve(path)
	if err != nil {
		return Err("Path not allowed")
	}
	if err := os.MkdirAll(filepath.Dir(real), 0755); err != nil {
		return Err(err.Error())
	}
	tmp := fmt.Sprintf("%s.%d.tmp", real, time.Now().UnixNano())
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return Err(err.Error())
	}
	if err := os.Rename(tmp, real); err != nil {
		os.Remove(tmp)
		return Err(err.Error())
	}
	return OK("File written: " + path)
}

func editFile(inputRaw string, policy *PathPolicy) *ToolResult {
	path, ok := argString(inputRaw, "path")
	if !ok {
		return Err("missing required parameter: path")
	}
	oldStr, ok := argString(inputRaw, "old_string")
	if !ok {
		return Err("missing required parameter: old_string")
	}
	newStr, ok := argString(inputRaw, "new_string")
	if !ok {
		return Err("missing required parameter: new_string")
	}

	real, err := policy.Resolve(path)
	if err != nil {
		return Err("Path not allowed")
	}
	data, err := os.ReadFile(real)
	if err != nil {
		return Err(err.Error())
	}
	content := string(data)

	count := strings.Count(content, oldStr)
	if count == 0 {
		return Err("old_string not found in file")
	}
	if count > 1 {
		return Err(fmt.Sprintf("old_string matches %d times; edit_file requires exactly one match", count))
	}

	updated := strings.Replace(content, oldStr, newStr, 1)
	tmp := fmt.Sprintf("%s.%d.tmp", real, time.Now().UnixNano())
	if err := os.WriteFile(tmp, []byte(updated), 0644); err != nil {
		return Err(err.Error())
	}
	if err := os.Rename(tmp, real); err != nil {
		os.Remove(tmp)
		return Err(err.Error())
	}
	return OK("File edited: " + path)
}

const (
	maxWalkDepth  = 10
	searchCap     = 100
	listFilesCap  = 200
	sniffLen      = 512
)

func searchFiles(inputRaw string, policy *PathPolicy) *ToolResult {
	root, ok := argString(inputRaw, "path")
	if !ok {
		return Err("missing required parameter: path")
	}
	query, ok := argString(inputRaw, "query")
	if !ok {
		return Err("missing required parameter: query")
	}
	real, err := policy.Resolve(root)
	if err != nil {
		return Err("Path not allowed")
	}

	var matches []string
	err = walkLimited(real, maxWalkDepth, func(path string, depth int) error {
		if len(matches) >= searchCap {
			return errStop
		}
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil
		}
		sniff := data
		if len(sniff) > sniffLen {
			sniff = sniff[:sniffLen]
		}
		if bytes.IndexByte(sniff, 0) >= 0 {
			return nil
		}
		if bytes.Contains(data, []byte(query)) {
			rel, _ := filepath.Rel(real, path)
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil && err != errStop {
		return Err(err.Error())
	}
	if len(matches) == 0 {
		return OK("no matches")
	}
	return OK(strings.Join(matches, "\n"))
}

func listFiles(inputRaw string, policy *PathPolicy) *ToolResult {
	root, ok := argString(inputRaw, "path")
	if !ok {
		return Err("missing required parameter: path")
	}
	pattern, _ := argString(inputRaw, "pattern")
	real, err := policy.Resolve(root)
	if err != nil {
		return Err("Path not allowed")
	}

	var names []string
	err = walkLimited(real, maxWalkDepth, func(path string, depth int) error {
		if len(names) >= listFilesCap {
			return errStop
		}
		rel, _ := filepath.Rel(real, path)
		if matchGlob(pattern, filepath.Base(rel)) {
			names = append(names, rel)
		}
		return nil
	})
	if err != nil && err != errStop {
		return Err(err.Error())
	}
	return OK(strings.Join(names, "\n"))
}

var errStop = fmt.Errorf("tools: walk limit reached")

// walkLimited visits regular files under root up to maxDepth, calling
// fn(path, depth) for each. Dot-entries and common build directories
// are skipped, per §4.5.
func walkLimited(root string, maxDepth int, fn func(path string, depth int) error) error {
	var walk func(dir string, depth int) error
	walk = func(dir string, depth int) error {
		if depth > maxDepth {
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor" || name == "target" {
				continue
			}
			full := filepath.Join(dir, name)
			if e.IsDir() {
				if err := walk(full, depth+1); err != nil {
					return err
				}
				continue
			}
			if err := fn(full, depth); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root, 0)
}

// matchGlob supports only a leading or trailing '*' (no general glob),
// per §4.5's list_files contract.
func matchGlob(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	switch {
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(name, pattern[1:])
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	default:
		return name == pattern
	}
}

func applyPatch(ctx context.Context, inputRaw string, opts CodingOptions) *ToolResult {
	path, ok := argString(inputRaw, "path")
	if !ok {
		return Err("missing required parameter: path")
	}
	diff, ok := argString(inputRaw, "diff")
	if !ok {
		return Err("missing required parameter: diff")
	}
	real, err := opts.Policy.Resolve(path)
	if err != nil {
		return Err("Path not allowed")
	}

	tmpDiff := filepath.Join(os.TempDir(), fmt.Sprintf("krillclaw-patch-%d.diff", time.Now().UnixNano()))
	if err := os.WriteFile(tmpDiff, []byte(diff), 0600); err != nil {
		return Err(err.Error())
	}
	defer os.Remove(tmpDiff)

	cmdCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "patch", "-p0", real, tmpDiff)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	runErr := cmd.Run()

	output := out.String()
	if len(output) > patchOutputCap {
		output = output[:patchOutputCap] + fmt.Sprintf("\n... (truncated, %d more bytes)", len(output)-patchOutputCap)
	}
	if runErr != nil {
		if output == "" {
			output = runErr.Error()
		}
		return Err(output)
	}
	if output == "" {
		output = "patch applied"
	}
	return OK(output)
}
