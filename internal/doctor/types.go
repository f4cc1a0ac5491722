package doctor

// IssueCategory groups issues by type.
type IssueCategory string

const (
	// CategoryEnv represents problems with the external CLI or org access.
	CategoryEnv IssueCategory = "environment"
	// CategoryConfig represents problems with the config file.
	CategoryConfig IssueCategory = "config"
	// CategoryCache represents problems with on-disk cache files.
	CategoryCache IssueCategory = "cache"
)

// Issue represents a problem detected by doctor.
type Issue struct {
	Key         string        // file path, setting name or tool name
	Description string        // human-readable description
	Category    IssueCategory // issue category
	Fixable     bool          // whether --fix can repair it
	FixPath     string        // file to delete when fixing
}

// Stats tracks check results by category.
type Stats struct {
	CacheValid  int // readable, fresh cache files
	CacheIssues int // cache files with issues
}
