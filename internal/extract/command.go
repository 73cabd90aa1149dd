package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		slog.Error("exec failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), 8<<10),
		)
	} else {
		slog.Debug("exec ok",
			"cmd", name,
			"duration_ms", dur.Milliseconds(),
			"stdout_bytes", out.Len(),
		)
	}

	return out.Bytes(), errb.Bytes(), err
}

// CommandOCR recognizes images with the tesseract CLI.
type CommandOCR struct {
	Binary      string
	TessdataDir string
	runner      Runner
}

// NewCommandOCR returns a CommandOCR. An empty binary means "tesseract"
// on PATH; a nil runner means ExecRunner.
func NewCommandOCR(binary, tessdataDir string, runner Runner) *CommandOCR {
	if binary == "" {
		binary = "tesseract"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &CommandOCR{Binary: binary, TessdataDir: tessdataDir, runner: runner}
}

// Recognize runs `tesseract <path> stdout -l <lang>`.
func (c *CommandOCR) Recognize(ctx context.Context, path, language string) (string, error) {
	args := []string{path, "stdout", "-l", language}
	if c.TessdataDir != "" {
		args = append(args, "--tessdata-dir", c.TessdataDir)
	}
	out, errb, err := c.runner.Run(ctx, c.Binary, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w - %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// LookPath checks whether the OCR binary is available.
func (c *CommandOCR) LookPath() error {
	if _, err := exec.LookPath(c.Binary); err != nil {
		return fmt.Errorf("tesseract binary not found (%s): %w", c.Binary, err)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
