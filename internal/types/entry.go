// Package types defines the data structures shared across fsexport.
package types

import "strings"

// EntryKind tells files and directories apart.
type EntryKind int

const (
	EntryFile EntryKind = iota
	EntryDirectory
)

func (k EntryKind) String() string {
	if k == EntryDirectory {
		return "directory"
	}
	return "file"
}

type (
	// DirectoryEntry is one name discovered while listing a directory.
	DirectoryEntry struct {
		Name      string    `json:"name"`
		Kind      EntryKind `json:"kind"`
		Extension string    `json:"extension,omitempty"`
	}

	// EntryInfo is the result of a stat call.
	EntryInfo struct {
		Path        string `json:"path"`
		IsDirectory bool   `json:"isDirectory"`
		Size        int64  `json:"size"`
		Modified    int64  `json:"modified"` // timestamp in milliseconds
	}
)

// NewDirectoryEntry classifies name. Directories never carry an extension.
func NewDirectoryEntry(name string, isDir bool) DirectoryEntry {
	if isDir {
		return DirectoryEntry{Name: name, Kind: EntryDirectory}
	}
	_, ext := SplitName(name)
	return DirectoryEntry{Name: name, Kind: EntryFile, Extension: ext}
}

// IsDir reports whether the entry is a directory.
func (e DirectoryEntry) IsDir() bool {
	return e.Kind == EntryDirectory
}

// Basename is the result key for the entry: the name without its extension
// for files, the full name for directories.
func (e DirectoryEntry) Basename() string {
	if e.IsDir() || e.Extension == "" {
		return e.Name
	}
	return strings.TrimSuffix(e.Name, "."+e.Extension)
}

// SplitName splits a file name at its last dot. A leading dot starts a
// hidden name, not an extension, so ".env" has none.
func SplitName(name string) (base, ext string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i+1:]
}
