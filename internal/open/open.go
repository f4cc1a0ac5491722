// Package open launches retrieved files in the user's editor or the
// platform opener.
package open

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/dnakoni/nakodx-file-retriever/internal/log"
)

// File opens path for display. $VISUAL and $EDITOR take precedence;
// otherwise the platform opener is used.
func File(ctx context.Context, path string) error {
	name, args := openerCommand(path)

	l := log.FromContext(ctx)
	logDone := l.Command("", name, args...)
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	logDone(time.Since(start))
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return err
	}
	return nil
}

func openerCommand(path string) (string, []string) {
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor, []string{path}
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor, []string{path}
	}
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "cmd", []string{"/c", "start", "", path}
	default:
		return "xdg-open", []string{path}
	}
}

// OS is an Opener backed by [File].
type OS struct{}

// Open implements the retrieve.Opener interface.
func (OS) Open(ctx context.Context, path string) error {
	return File(ctx, path)
}
