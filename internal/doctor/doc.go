// Package doctor performs diagnostic checks on the ndxr environment and
// the on-disk metadata cache, and optionally repairs what it finds.
//
// Checks fall into three categories:
//
//   - environment: the external CLI is installed and an org is reachable
//   - config: the config file parses
//   - cache: cache files are readable, well-formed and within the TTL
//
// Cache issues are fixable by deleting the offending file; environment
// and config issues only get reported.
package doctor
