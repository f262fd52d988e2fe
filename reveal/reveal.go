// Package reveal opens the system file manager positioned at a file.
package reveal

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrUnsupported is returned on platforms without a known file manager
var ErrUnsupported = errors.New("reveal is not supported on this platform")

// Revealer shows a single file in the system file manager
type Revealer interface {
	Reveal(path string) error
}

// Func adapts a plain function to a Revealer
type Func func(path string) error

// Reveal calls f(path)
func (f Func) Reveal(path string) error {
	return f(path)
}

// commandRevealer runs a platform command built from the path
type commandRevealer struct {
	build func(path string) (string, []string)
	start func(cmd *exec.Cmd) error
}

// System returns the Revealer for the current platform
func System() Revealer {
	build := platformCommand()
	if build == nil {
		return Func(func(string) error { return ErrUnsupported })
	}
	return &commandRevealer{
		build: build,
		start: (*exec.Cmd).Start,
	}
}

// Reveal launches the file manager without waiting for it to exit
func (r *commandRevealer) Reveal(path string) error {
	name, args := r.build(path)
	cmd := exec.Command(name, args...)
	if err := r.start(cmd); err != nil {
		return fmt.Errorf("failed to reveal %s: %w", path, err)
	}
	// Reap the child in the background
	go func() { _ = cmd.Wait() }()
	return nil
}
