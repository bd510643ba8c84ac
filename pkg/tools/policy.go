package tools

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathNotAllowed is returned by PathPolicy.Resolve when a path
// canonicalises outside every allowed root.
var ErrPathNotAllowed = errors.New("tools: path not allowed")

// PathPolicy is the coding profile's file-tool allowlist, grounded on
// the teacher's getSafeRelPath/executeInRoot pattern in
// pkg/tools/filesystem.go, generalized from a single os.Root workspace
// to spec §4.5's rule: in sandbox mode, one fixed directory; otherwise
// the process CWD plus a conventional temp prefix.
type PathPolicy struct {
	Roots []string
}

// NewSandboxPolicy returns a policy allowing only dir.
func NewSandboxPolicy(dir string) *PathPolicy {
	return &PathPolicy{Roots: []string{dir}}
}

// NewHostPolicy returns a policy allowing the process CWD and the
// conventional OS temp directory.
func NewHostPolicy() (*PathPolicy, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return &PathPolicy{Roots: []string{cwd, os.TempDir()}}, nil
}

// Resolve canonicalises path (resolving "..", symlinks, and platform
// prefixes) and checks it falls under one of the policy's roots. When
// path does not yet exist — the write_file case — its parent is
// canonicalised instead and the original basename rejoined before the
// root check, since EvalSymlinks requires an existing target.
func (p *PathPolicy) Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		parentReal, perr := filepath.EvalSymlinks(filepath.Dir(abs))
		if perr != nil {
			return "", perr
		}
		real = filepath.Join(parentReal, filepath.Base(abs))
	}

	for _, root := range p.Roots {
		rootReal, err := filepath.EvalSymlinks(root)
		if err != nil {
			continue
		}
		if withinRoot(real, rootReal) {
			return real, nil
		}
	}
	return "", ErrPathNotAllowed
}

func withinRoot(path, root string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
