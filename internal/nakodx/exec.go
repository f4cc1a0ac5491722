package nakodx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/dnakoni/nakodx-file-retriever/internal/log"
)

// Invoke runs the external CLI with --json appended, captures both
// streams in full, and returns the raw JSON payload or a *CLIError.
// Non-empty stderr lines are logged as warnings while they arrive.
// Cancelling ctx terminates the process and returns ctx.Err().
func Invoke(ctx context.Context, dir, name string, args ...string) (json.RawMessage, error) {
	l := log.FromContext(ctx)
	args = append(args[:len(args):len(args)], "--json")

	logDone := l.Command(dir, name, args...)
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	lines := &lineWriter{logf: l.Warnf, prefix: name}
	cmd.Stdout = &stdout
	cmd.Stderr = io.MultiWriter(&stderr, lines)

	runErr := cmd.Run()
	lines.flush()
	logDone(time.Since(start))

	// A killed child reports an opaque exit error; surface the
	// cancellation instead so callers can end the workflow silently.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("start %s: %w", name, runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	return interpret(stdout.Bytes(), stderr.String(), exitCode)
}

// envelope is the common wrapper the CLI prints around every result.
// Fields are decoded leniently since shapes vary by subcommand.
type envelope struct {
	Status  any    `json:"status"`
	Code    any    `json:"code"`
	Context string `json:"context"`
}

// interpret decides success vs failure from the exit code and payload.
// The CLI may emit structured error payloads even on failure, so stdout
// is parsed regardless of the exit code.
func interpret(stdout []byte, stderr string, exitCode int) (json.RawMessage, error) {
	var env envelope
	parseErr := json.Unmarshal(stdout, &env)
	trimmed := strings.TrimSpace(stderr)

	if parseErr != nil {
		if exitCode != 0 {
			msg := trimmed
			if msg == "" {
				msg = fmt.Sprintf("command failed with exit %d", exitCode)
			}
			return nil, &CLIError{Message: msg, ExitCode: exitCode, Stderr: stderr}
		}
		return nil, &CLIError{Message: "invalid output: expected JSON", Stderr: stderr}
	}

	payload := json.RawMessage(bytes.TrimSpace(stdout))
	status := intish(env.Status)

	if exitCode != 0 || status != 0 {
		msg, ok := ExtractMessage(payload)
		if !ok {
			switch {
			case trimmed != "":
				msg = trimmed
			case exitCode != 0:
				msg = fmt.Sprintf("command failed with exit %d", exitCode)
			default:
				msg = fmt.Sprintf("command reported status %d", status)
			}
		}
		code, _ := stringish(env.Code)
		return nil, &CLIError{
			Message:  msg,
			Code:     code,
			Context:  env.Context,
			Status:   status,
			ExitCode: exitCode,
			Stderr:   stderr,
			Payload:  payload,
		}
	}

	return payload, nil
}

// lineWriter logs each completed non-empty line written through it.
type lineWriter struct {
	logf   func(format string, args ...any)
	prefix string
	buf    bytes.Buffer
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			return len(p), nil
		}
		w.emit(string(w.buf.Next(i + 1)))
	}
}

// flush logs any trailing partial line after the process exits.
func (w *lineWriter) flush() {
	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

func (w *lineWriter) emit(line string) {
	if line = strings.TrimSpace(line); line != "" {
		w.logf("%s: %s", w.prefix, line)
	}
}
