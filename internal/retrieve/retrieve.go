package retrieve

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/dnakoni/nakodx-file-retriever/internal/log"
	"github.com/dnakoni/nakodx-file-retriever/internal/metacache"
	"github.com/dnakoni/nakodx-file-retriever/internal/nakodx"
)

// Client is the subset of CLI operations the orchestrator needs.
type Client interface {
	ResolveOrgID(ctx context.Context) string
	ListTypes(ctx context.Context) ([]nakodx.MetadataType, error)
	ListItems(ctx context.Context, typeName string) ([]nakodx.MetadataItem, error)
	Retrieve(ctx context.Context, typeName, fullName string) (*nakodx.RetrieveResult, json.RawMessage, error)
}

// Option is one selectable entry shown by the picker.
type Option struct {
	Label       string
	Description string
	Detail      string
}

// Picker presents options and returns the chosen index, or cancelled.
// A cancelled selection aborts the workflow cleanly, not as an error.
type Picker interface {
	Pick(ctx context.Context, title string, options []Option) (index int, cancelled bool, err error)
}

// Opener opens a downloaded file for display.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// Service runs retrieval operations against one workspace.
type Service struct {
	Client Client
	Cache  *metacache.Store
	Picker Picker
	Opener Opener

	WorkDir  string // paths in retrieve results are relative to this
	AutoOpen bool

	flight singleflight.Group
}

// Result reports the outcome of one retrieval run.
type Result struct {
	Cancelled bool
	OrgID     string
	TypeName  string
	ItemName  string
	Files     []nakodx.RetrievedFile
	Opened    string // absolute path opened, if any
}

// Run executes the full workflow. presetType and presetItem skip the
// corresponding picker step when non-empty. The identity is re-resolved
// on every run since the active target can change between commands.
func (s *Service) Run(ctx context.Context, presetType, presetItem string) (*Result, error) {
	l := log.FromContext(ctx)

	orgID := s.Client.ResolveOrgID(ctx)
	if orgID == "" {
		l.Debug("no org identity; caching bypassed for this run")
	}

	types, err := s.TypeCatalog(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("the org reports no metadata types")
	}

	typeName := presetType
	if typeName == "" {
		opts := make([]Option, len(types))
		for i, mt := range types {
			opts[i] = Option{Label: mt.XMLName, Description: mt.DirectoryName}
		}
		idx, cancelled, err := s.Picker.Pick(ctx, "Select metadata type", opts)
		if err != nil {
			return nil, err
		}
		if cancelled {
			return &Result{Cancelled: true}, nil
		}
		typeName = types[idx].XMLName
	}

	items, err := s.ItemList(ctx, orgID, typeName)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no %s items found in the org", typeName)
	}

	itemName := presetItem
	if itemName == "" {
		opts := make([]Option, len(items))
		for i, it := range items {
			opts[i] = Option{Label: it.FullName, Description: it.FileName, Detail: it.CreatedDate}
		}
		idx, cancelled, err := s.Picker.Pick(ctx, fmt.Sprintf("Select %s item", typeName), opts)
		if err != nil {
			return nil, err
		}
		if cancelled {
			return &Result{Cancelled: true}, nil
		}
		itemName = items[idx].FullName
	}

	res, raw, err := s.Client.Retrieve(ctx, typeName, itemName)
	if err != nil {
		return nil, err
	}

	// The CLI can report success at the transport level while individual
	// files failed; surface the first problem with the payload attached.
	if problems := res.Problems(); len(problems) > 0 {
		return nil, &nakodx.CLIError{Message: problems[0], Payload: raw}
	}
	if !res.Success {
		msg, ok := nakodx.ExtractMessage(raw)
		if !ok {
			msg = fmt.Sprintf("retrieve of %s %s failed", typeName, itemName)
		}
		return nil, &nakodx.CLIError{Message: msg, Payload: raw}
	}

	result := &Result{OrgID: orgID, TypeName: typeName, ItemName: itemName, Files: res.Files}

	if s.AutoOpen && s.Opener != nil {
		if rel := primaryFile(res.Files); rel != "" {
			abs := rel
			if !filepath.IsAbs(abs) {
				abs = filepath.Join(s.WorkDir, rel)
			}
			if _, err := os.Stat(abs); err != nil {
				l.Warnf("retrieved file not found: %s", abs)
			} else if err := s.Opener.Open(ctx, abs); err != nil {
				l.Warnf("open %s: %v", abs, err)
			} else {
				result.Opened = abs
			}
		}
	}

	return result, nil
}

// TypeCatalog returns the org's type catalog via the cache read path,
// fetching and writing through on a miss.
func (s *Service) TypeCatalog(ctx context.Context, orgID string) ([]nakodx.MetadataType, error) {
	if types, ok := s.Cache.Types(ctx, orgID); ok {
		log.FromContext(ctx).Debug("type catalog cache hit", "org", orgID)
		return types, nil
	}
	types, err := s.Client.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	s.Cache.PutTypes(ctx, orgID, types)
	return types, nil
}

// ItemList returns the item list for one type via the cache read path.
// On a miss the fetch is coalesced: at most one CLI invocation per
// (org, type) key is in flight and all callers share its outcome. The
// flight entry is dropped once it settles, so later calls start fresh.
func (s *Service) ItemList(ctx context.Context, orgID, typeName string) ([]nakodx.MetadataItem, error) {
	if items, ok := s.Cache.Items(ctx, orgID, typeName); ok {
		log.FromContext(ctx).Debug("item list cache hit", "org", orgID, "type", typeName)
		return items, nil
	}

	if !s.Cache.Enabled() || orgID == "" {
		return s.Client.ListItems(ctx, typeName)
	}

	key := metacache.ItemKey(orgID, typeName)
	v, err, _ := s.flight.Do(key, func() (any, error) {
		// Another caller may have populated the cache while this one
		// waited on the flight group.
		if items, ok := s.Cache.Items(ctx, orgID, typeName); ok {
			return items, nil
		}
		items, err := s.Client.ListItems(ctx, typeName)
		if err != nil {
			return nil, err
		}
		s.Cache.PutItems(ctx, orgID, typeName, items)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]nakodx.MetadataItem), nil
}

// primaryFile picks the file to open: the first file that is not a
// secondary metadata descriptor, falling back to the first file.
func primaryFile(files []nakodx.RetrievedFile) string {
	for _, f := range files {
		if f.FilePath == "" {
			continue
		}
		if !strings.HasSuffix(f.FilePath, "-meta.xml") {
			return f.FilePath
		}
	}
	for _, f := range files {
		if f.FilePath != "" {
			return f.FilePath
		}
	}
	return ""
}
