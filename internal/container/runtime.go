// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs one-shot filter containers: the image reads a
// document on stdin and writes the converted document to stdout. Docker
// and Podman are supported. The Markdown to HTML chain uses it to reach
// pandoc without a host install.
package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runtime names accepted by Detect.
const (
	Docker = "docker"
	Podman = "podman"
)

// Runtime runs filter containers.
type Runtime interface {
	// Name returns the runtime binary ("docker" or "podman").
	Name() string

	// Available reports whether the binary is on PATH and its daemon or
	// service answers.
	Available() bool

	// ImageExists returns nil when image is present locally. It never pulls.
	ImageExists(image string) error

	// Run starts image with args, feeds stdin and copies the container's
	// stdout to stdout. The container has no network and is removed on
	// exit. Cancelling ctx kills it.
	Run(ctx context.Context, image string, args []string, stdin io.Reader, stdout io.Writer) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// cli drives a container binary. Docker and Podman differ only in the
// subcommand that checks for a local image.
type cli struct {
	bin        string
	imageCheck []string
	exec       executor
}

func newCLI(name string, exec executor) (*cli, error) {
	switch name {
	case Docker:
		return &cli{bin: Docker, imageCheck: []string{"image", "inspect"}, exec: exec}, nil
	case Podman:
		return &cli{bin: Podman, imageCheck: []string{"image", "exists"}, exec: exec}, nil
	}
	return nil, fmt.Errorf("unknown container runtime %q (want %s or %s)", name, Docker, Podman)
}

func (c *cli) Name() string { return c.bin }

func (c *cli) Available() bool {
	if _, err := c.exec.LookPath(c.bin); err != nil {
		return false
	}
	return c.exec.RunSilent(c.bin, "info") == nil
}

func (c *cli) ImageExists(image string) error {
	args := append(append([]string{}, c.imageCheck...), image)
	if err := c.exec.RunSilent(c.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, c.bin, err)
	}
	return nil
}

func (c *cli) Run(ctx context.Context, image string, args []string, stdin io.Reader, stdout io.Writer) error {
	full := append([]string{"run", "--rm", "-i", "--network", "none", image}, args...)

	var stderr bytes.Buffer
	err := c.exec.RunPiped(ctx, c.bin, full, stdin, stdout, &stderr)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%s container %s: %w", c.bin, image, ctx.Err())
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("%s container %s: %w: %s", c.bin, image, err, msg)
	}
	return fmt.Errorf("%s container %s: %w", c.bin, image, err)
}

// Detect returns the named runtime, or with an empty name the first of
// docker and podman that is available.
func Detect(preferred string) (Runtime, error) {
	return detect(osExecutor{}, preferred)
}

func detect(exec executor, preferred string) (Runtime, error) {
	candidates := []string{Docker, Podman}
	if preferred != "" {
		candidates = []string{preferred}
	}
	for _, name := range candidates {
		c, err := newCLI(name, exec)
		if err != nil {
			return nil, err
		}
		if c.Available() {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no container runtime available (tried %s)", strings.Join(candidates, ", "))
}
