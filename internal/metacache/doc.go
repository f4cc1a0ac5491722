// Package metacache caches metadata fetched from remote orgs.
//
// Two independent partitions exist, one for type catalogs and one for
// item lists, each with a memory tier and a disk mirror:
//
//	<dir>/types/<orgID>.json
//	<dir>/items/<orgID>-<sanitized type>.json
//
// The memory tier is authoritative at runtime; disk files are loaded at
// startup (item lists) or on demand (type catalogs) and written after
// every successful fetch. Disk writes are best-effort: failures are
// logged and swallowed because the memory tier already holds the value
// for this process lifetime.
//
// Entries are partitioned by org identity and stamped at write time.
// An entry with no timestamp (written by older versions) is always
// fresh; otherwise it expires once its age reaches the TTL. There is no
// LRU or size eviction, only TTL expiry and explicit invalidation.
package metacache
