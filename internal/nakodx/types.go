package nakodx

import (
	"encoding/json"
	"fmt"
)

// MetadataType is one retrievable category in an org's type catalog.
// A catalog is always fetched as a whole and is immutable once fetched.
type MetadataType struct {
	XMLName       string   `json:"xmlName"`
	DirectoryName string   `json:"directoryName,omitempty"`
	ChildXMLNames []string `json:"childXmlNames,omitempty"`
}

// MetadataItem is one retrievable artifact of a given type.
type MetadataItem struct {
	FullName    string `json:"fullName"`
	FileName    string `json:"fileName,omitempty"`
	Type        string `json:"type,omitempty"`
	CreatedDate string `json:"createdDate,omitempty"`
}

// FileStateFailed marks a file the server could not retrieve.
const FileStateFailed = "Failed"

// RetrievedFile describes one file returned by a retrieve operation.
type RetrievedFile struct {
	FilePath string `json:"filePath"`
	State    string `json:"state"`
	Error    string `json:"error,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Type     string `json:"type,omitempty"`
}

// RetrieveResult is the result payload of a retrieve operation.
type RetrieveResult struct {
	Success  bool            `json:"success"`
	Files    []RetrievedFile `json:"files"`
	Messages json.RawMessage `json:"messages,omitempty"`
}

// Problems scans the file list for per-file failures. A retrieve can
// exit zero with status zero and still fail per file, so callers must
// check this even on a successful invocation.
func (r *RetrieveResult) Problems() []string {
	var problems []string
	for _, f := range r.Files {
		if f.State != FileStateFailed && f.Error == "" {
			continue
		}
		msg := f.Error
		if msg == "" {
			msg = "retrieve failed"
		}
		problems = append(problems, fmt.Sprintf("%s [%s %s]", msg, f.Type, f.FullName))
	}
	return problems
}
