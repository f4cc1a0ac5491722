package nakodx

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dnakoni/nakodx-file-retriever/internal/log"
)

func TestInterpret(t *testing.T) {
	t.Parallel()

	t.Run("zero exit with status zero resolves", func(t *testing.T) {
		t.Parallel()
		payload, err := interpret([]byte(`{"status":0,"result":[1,2]}`), "", 0)
		if err != nil {
			t.Fatalf("interpret: %v", err)
		}
		if !strings.Contains(string(payload), `"result":[1,2]`) {
			t.Errorf("payload = %s", payload)
		}
	})

	t.Run("zero exit with absent status resolves", func(t *testing.T) {
		t.Parallel()
		if _, err := interpret([]byte(`{"result":{}}`), "", 0); err != nil {
			t.Fatalf("interpret: %v", err)
		}
	})

	t.Run("logical failure on zero exit", func(t *testing.T) {
		t.Parallel()
		_, err := interpret([]byte(`{"status":1,"message":"INVALID_TYPE","code":"INVALID_TYPE"}`), "", 0)
		var cerr *CLIError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected *CLIError, got %v", err)
		}
		if cerr.Message != "INVALID_TYPE [INVALID_TYPE]" {
			t.Errorf("Message = %q, want %q", cerr.Message, "INVALID_TYPE [INVALID_TYPE]")
		}
		if cerr.ExitCode != 0 {
			t.Errorf("ExitCode = %d, want 0 for a logical failure", cerr.ExitCode)
		}
		if cerr.Status != 1 {
			t.Errorf("Status = %d, want 1", cerr.Status)
		}
		if cerr.Code != "INVALID_TYPE" {
			t.Errorf("Code = %q", cerr.Code)
		}
	})

	t.Run("non-zero exit with parseable payload", func(t *testing.T) {
		t.Parallel()
		_, err := interpret([]byte(`{"status":1,"message":"no auth","code":"NO_AUTH","context":"MetadataApi"}`), "login first\n", 1)
		var cerr *CLIError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected *CLIError, got %v", err)
		}
		if cerr.Message != "no auth [NO_AUTH]" {
			t.Errorf("Message = %q", cerr.Message)
		}
		if cerr.ExitCode != 1 {
			t.Errorf("ExitCode = %d, want 1", cerr.ExitCode)
		}
		if cerr.Context != "MetadataApi" {
			t.Errorf("Context = %q", cerr.Context)
		}
		if cerr.Stderr != "login first\n" {
			t.Errorf("Stderr = %q", cerr.Stderr)
		}
		if len(cerr.Payload) == 0 {
			t.Error("Payload should carry the raw JSON body")
		}
	})

	t.Run("non-zero exit with unparseable output uses stderr", func(t *testing.T) {
		t.Parallel()
		_, err := interpret([]byte("not json"), "  fatal: broken  \n", 2)
		var cerr *CLIError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected *CLIError, got %v", err)
		}
		if cerr.Message != "fatal: broken" {
			t.Errorf("Message = %q", cerr.Message)
		}
		if cerr.ExitCode != 2 {
			t.Errorf("ExitCode = %d, want 2", cerr.ExitCode)
		}
	})

	t.Run("non-zero exit with empty stderr gets generic message", func(t *testing.T) {
		t.Parallel()
		_, err := interpret(nil, "", 127)
		var cerr *CLIError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected *CLIError, got %v", err)
		}
		if cerr.Message != "command failed with exit 127" {
			t.Errorf("Message = %q", cerr.Message)
		}
	})

	t.Run("zero exit with unparseable output", func(t *testing.T) {
		t.Parallel()
		_, err := interpret([]byte("hello"), "", 0)
		var cerr *CLIError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected *CLIError, got %v", err)
		}
		if !strings.Contains(cerr.Message, "invalid output") {
			t.Errorf("Message = %q, want invalid output error", cerr.Message)
		}
	})
}

func TestInvoke(t *testing.T) {
	t.Parallel()

	t.Run("success returns payload", func(t *testing.T) {
		t.Parallel()
		// --json lands in $0 for sh -c, so the script ignores it
		payload, err := Invoke(context.Background(), t.TempDir(), "sh", "-c", `echo '{"status":0,"result":["ok"]}'`)
		if err != nil {
			t.Fatalf("Invoke: %v", err)
		}
		if !strings.Contains(string(payload), `"ok"`) {
			t.Errorf("payload = %s", payload)
		}
	})

	t.Run("stderr lines stream as warnings", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		ctx := log.WithLogger(context.Background(), log.New(&buf, false, false))

		_, err := Invoke(ctx, "", "sh", "-c", `echo "first issue" >&2; echo "second issue" >&2; exit 3`)
		var cerr *CLIError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected *CLIError, got %v", err)
		}
		if cerr.ExitCode != 3 {
			t.Errorf("ExitCode = %d, want 3", cerr.ExitCode)
		}
		logged := buf.String()
		if !strings.Contains(logged, "warning: sh: first issue") {
			t.Errorf("log = %q, want streamed first warning", logged)
		}
		if !strings.Contains(logged, "warning: sh: second issue") {
			t.Errorf("log = %q, want streamed second warning", logged)
		}
	})

	t.Run("cancellation rejects with context error", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		_, err := Invoke(ctx, "", "sh", "-c", "sleep 10")
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("missing binary is a transport failure", func(t *testing.T) {
		t.Parallel()
		_, err := Invoke(context.Background(), "", "definitely-not-a-real-binary-xyz")
		if err == nil {
			t.Fatal("expected error for missing binary")
		}
		var cerr *CLIError
		if errors.As(err, &cerr) {
			t.Errorf("spawn failures should not be CLIErrors, got %+v", cerr)
		}
	})
}

func TestLineWriter(t *testing.T) {
	t.Parallel()

	var lines []string
	w := &lineWriter{
		logf:   func(format string, args ...any) { lines = append(lines, args[1].(string)) },
		prefix: "nakodx",
	}

	w.Write([]byte("partial"))
	if len(lines) != 0 {
		t.Fatalf("incomplete line should not be logged yet, got %v", lines)
	}
	w.Write([]byte(" line\nnext\n\n  \n"))
	w.Write([]byte("tail"))
	w.flush()

	want := []string{"partial line", "next", "tail"}
	if len(lines) != len(want) {
		t.Fatalf("logged %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
