// Package retrieve sequences one user-facing retrieval operation:
// resolve the active org, pick a metadata type, pick an item, retrieve
// it, and optionally open the downloaded file.
//
// Type catalogs and item lists go through the metacache read path and
// are written back after a successful fetch. Concurrent item-list
// fetches for the same (org, type) key are coalesced into a single CLI
// invocation via singleflight; all callers observe the same result.
package retrieve
