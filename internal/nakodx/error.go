package nakodx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CLIError is a failed CLI invocation, normalized from either a
// non-zero process exit or a logical failure reported inside an
// otherwise successful payload.
type CLIError struct {
	Message  string          // human-readable message
	Code     string          // machine-readable code, if the payload had one
	Context  string          // context tag, if the payload had one
	Status   int             // the payload's internal status field
	ExitCode int             // process exit code; 0 means the process itself succeeded
	Stderr   string          // raw stderr text
	Payload  json.RawMessage // raw parsed payload, nil if output was unparseable
}

func (e *CLIError) Error() string {
	return e.Message
}

// Detail returns the full structured detail for the diagnostic log.
func (e *CLIError) Detail() string {
	var b strings.Builder
	fmt.Fprintf(&b, "message: %s\n", e.Message)
	if e.Code != "" {
		fmt.Fprintf(&b, "code: %s\n", e.Code)
	}
	if e.Context != "" {
		fmt.Fprintf(&b, "context: %s\n", e.Context)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, "status: %d\n", e.Status)
	}
	if e.ExitCode != 0 {
		fmt.Fprintf(&b, "exit code: %d\n", e.ExitCode)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, "stderr:\n%s\n", s)
	}
	if len(e.Payload) > 0 {
		fmt.Fprintf(&b, "payload:\n%s\n", e.Payload)
	}
	return b.String()
}
