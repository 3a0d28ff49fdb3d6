// Package gitops versions the ledger directory with the git CLI.
package gitops

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Author identifies who commits ledger changes.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// env makes the author the committer too, so commits work without a
// global git identity.
func (a Author) env() []string {
	return append(os.Environ(),
		"GIT_COMMITTER_NAME="+a.Name,
		"GIT_COMMITTER_EMAIL="+a.Email,
	)
}

// Init initializes a new git repository at dir, reporting progress to out.
func Init(dir string, out io.Writer) error {
	cmd := exec.Command("git", "init", "--quiet")
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	return nil
}

// HasChanges reports whether any of paths differ from HEAD or are untracked.
func HasChanges(dir string, paths ...string) (bool, error) {
	args := append([]string{"status", "--porcelain", "--"}, paths...)
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// CommitPaths stages paths and commits them. It returns the short commit
// hash, or "" when nothing changed.
func CommitPaths(dir, message string, author Author, paths ...string) (string, error) {
	changed, err := HasChanges(dir, paths...)
	if err != nil {
		return "", err
	}
	if !changed {
		return "", nil
	}

	add := exec.Command("git", append([]string{"add", "-A", "--"}, paths...)...)
	add.Dir = dir
	if out, err := add.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}
	return commit(dir, message, author)
}

// CommitAll stages all files and creates a commit. Returns the short commit hash.
func CommitAll(dir, message string, author Author) (string, error) {
	add := exec.Command("git", "add", "-A")
	add.Dir = dir
	if out, err := add.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}
	return commit(dir, message, author)
}

func commit(dir, message string, author Author) (string, error) {
	c := exec.Command("git", "commit", "--quiet", "-m", message, "--author", author.String())
	c.Dir = dir
	c.Env = author.env()
	if out, err := c.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	rev := exec.Command("git", "rev-parse", "--short", "HEAD")
	rev.Dir = dir
	out, err := rev.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
