package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoDetector is returned when no presence command is configured.
var ErrNoDetector = errors.New("collector: no presence command configured")

// CommandPresence runs an external detector that captures a frame and
// prints the number of faces it found.
type CommandPresence struct {
	Command []string
}

// NewCommandPresence splits a shell-style command line on whitespace.
func NewCommandPresence(command string) *CommandPresence {
	return &CommandPresence{Command: strings.Fields(command)}
}

// FaceCount runs the detector and parses the first integer token of its
// output.
func (p *CommandPresence) FaceCount(ctx context.Context) (int, error) {
	if len(p.Command) == 0 {
		return 0, ErrNoDetector
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.Command[0], p.Command[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return 0, fmt.Errorf("collector: presence: %w: %s", err, msg)
		}
		return 0, fmt.Errorf("collector: presence: %w", err)
	}

	return ParseFaceCount(stdout.String())
}

// ParseFaceCount extracts a non-negative face count from detector output.
func ParseFaceCount(out string) (int, error) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, fmt.Errorf("collector: presence: empty detector output")
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("collector: presence: parse %q: %w", fields[0], err)
	}
	if n < 0 {
		return 0, fmt.Errorf("collector: presence: negative face count %d", n)
	}
	return n, nil
}

// StaticPresence always reports the same face count. It is used by dry runs.
type StaticPresence int

func (s StaticPresence) FaceCount(context.Context) (int, error) { return int(s), nil }
