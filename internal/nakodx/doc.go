// Package nakodx wraps the nakodx CLI, the metadata tool for remote orgs.
//
// Every remote operation shells out to the CLI with --json appended and
// interprets the envelope it prints on stdout:
//
//	{"status": 0, "result": ...}
//
// The tool may exit non-zero and still print a structured payload, or
// exit zero with a non-zero internal status; both cases are normalized
// into a [*CLIError] carrying the best available human message plus the
// raw stderr and payload for diagnostics.
//
// # Design Notes
//
// ndxr shells out rather than speaking the server protocol directly.
// This keeps it compatible with the user's nakodx installation and
// authentication state (tokens, target org config, plugins).
package nakodx
