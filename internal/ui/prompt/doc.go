// Package prompt provides simple interactive prompts.
//
// Prompts render to stderr so stdout remains available for data output.
//
// Available prompts:
//   - [Select]: single selection from a fuzzy-filterable list
//   - [Confirm]: Yes/No confirmation prompt
package prompt
