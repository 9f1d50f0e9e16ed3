// Package filesystem provides the host file operations fsexport builds on.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/taigrr/fsexport/internal/codec"
	"github.com/taigrr/fsexport/internal/errs"
	"github.com/taigrr/fsexport/internal/types"
)

// Service provides file system operations, optionally confined to a root.
type Service struct {
	root string
}

// New creates a Service. An empty root leaves paths unconfined; otherwise
// every path must resolve inside root.
func New(root string) *Service {
	if root == "" {
		return &Service{}
	}
	absPath, err := filepath.Abs(root)
	if err != nil {
		absPath = filepath.Clean(root)
	}
	return &Service{root: absPath}
}

// Root returns the confinement root, or "" when unconfined.
func (s *Service) Root() string {
	return s.root
}

// ResolvePath validates path and returns the absolute path it refers to.
func (s *Service) ResolvePath(op, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errs.InvalidArgument(op, "path", "must be a non-empty string")
	}

	if s.root == "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", errs.InvalidArgument(op, "path", err.Error())
		}
		return absPath, nil
	}

	fullPath := path
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(s.root, strings.TrimSpace(path))
	}
	absPath := filepath.Clean(fullPath)

	// Security check: ensure path is within root
	relPath, err := filepath.Rel(s.root, absPath)
	if err != nil {
		return "", errs.InvalidArgument(op, "path", err.Error())
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", errs.InvalidArgument(op, "path", fmt.Sprintf("path traversal not allowed: %s", path))
	}

	return absPath, nil
}

// ReadDir lists path and classifies each entry. Symlinks are classified by
// their target; a dangling symlink is reported as a file.
func (s *Service) ReadDir(path string) ([]types.DirectoryEntry, error) {
	const op = "readdir"

	fullPath, err := s.resolveDir(op, path)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, classifyRead(op, path, err)
	}

	entries := make([]types.DirectoryEntry, 0, len(dirEntries))
	for _, entry := range dirEntries {
		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(fullPath, entry.Name())); err == nil {
				isDir = info.IsDir()
			}
		}
		entries = append(entries, types.NewDirectoryEntry(entry.Name(), isDir))
	}

	return entries, nil
}

// ListDirectory returns the entry names of path in lexicographic order.
func (s *Service) ListDirectory(path string) ([]string, error) {
	entries, err := s.ReadDir(path)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Stat describes the entry at path, following symlinks.
func (s *Service) Stat(path string) (types.EntryInfo, error) {
	const op = "stat"

	fullPath, err := s.ResolvePath(op, path)
	if err != nil {
		return types.EntryInfo{}, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return types.EntryInfo{}, classifyRead(op, path, err)
	}

	return types.EntryInfo{
		Path:        path,
		IsDirectory: info.IsDir(),
		Size:        info.Size(),
		Modified:    info.ModTime().UnixMilli(),
	}, nil
}

// RealPath returns the absolute path of path with every symlink resolved.
func (s *Service) RealPath(path string) (string, error) {
	const op = "realpath"

	fullPath, err := s.ResolvePath(op, path)
	if err != nil {
		return "", err
	}

	realPath, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		return "", classifyRead(op, path, err)
	}
	return realPath, nil
}

// ReadFile reads the raw bytes of a file.
func (s *Service) ReadFile(path string) ([]byte, error) {
	const op = "read"

	fullPath, err := s.ResolvePath(op, path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, classifyRead(op, path, err)
	}
	return data, nil
}

// ReadFileText reads a file as UTF-8 text. Each run of invalid bytes
// becomes U+FFFD.
func (s *Service) ReadFileText(path string) (string, error) {
	data, err := s.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}

// WriteFile writes data to path, creating parent directories as needed.
func (s *Service) WriteFile(path string, data []byte) error {
	const op = "write"

	fullPath, err := s.ResolvePath(op, path)
	if err != nil {
		return err
	}

	// Create directories if they don't exist
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return errs.Write(op, path, fmt.Errorf("failed to create directory: %w", err))
	}

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return errs.Write(op, path, err)
	}
	return nil
}

// WriteFileText writes content to path as UTF-8 text.
func (s *Service) WriteFileText(path, content string) error {
	return s.WriteFile(path, []byte(content))
}

// Exists reports whether path exists. It never fails: invalid paths,
// paths outside the root and access errors all report false.
func (s *Service) Exists(path string) bool {
	if strings.ContainsRune(path, 0) {
		return false
	}

	fullPath, err := s.ResolvePath("exists", path)
	if err != nil {
		return false
	}

	_, err = os.Stat(fullPath)
	return err == nil
}

// ReadJSON reads and parses a JSON file. Malformed content fails with a
// parse error rather than a read error.
func (s *Service) ReadJSON(path string) (any, error) {
	data, err := s.ReadFile(path)
	if err != nil {
		return nil, relabel(err, "readJson")
	}

	v, err := codec.Parse(data)
	if err != nil {
		return nil, errs.Parse("readJson", path, err)
	}
	return v, nil
}

// ReadJSONInto reads a JSON file and decodes it into v.
func (s *Service) ReadJSONInto(path string, v any) error {
	data, err := s.ReadFile(path)
	if err != nil {
		return relabel(err, "readJson")
	}

	if err := codec.Decode(data, v); err != nil {
		return errs.Parse("readJson", path, err)
	}
	return nil
}

// WriteJSON writes v to path as indented JSON.
func (s *Service) WriteJSON(path string, v any) error {
	data, err := codec.Stringify(v, true)
	if err != nil {
		return errs.Write("writeJson", path, err)
	}

	if err := s.WriteFile(path, data); err != nil {
		return relabel(err, "writeJson")
	}
	return nil
}

func (s *Service) resolveDir(op, path string) (string, error) {
	fullPath, err := s.ResolvePath(op, path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return "", classifyRead(op, path, err)
	}
	if !info.IsDir() {
		return "", errs.NotFound(op, path, fmt.Errorf("not a directory"))
	}
	return fullPath, nil
}

func classifyRead(op, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return errs.NotFound(op, path, err)
	}
	if errors.Is(err, fs.ErrPermission) {
		return errs.Read(op, path, fmt.Errorf("permission denied: %w", err))
	}
	return errs.Read(op, path, err)
}

// relabel reports err under op, keeping its kind.
func relabel(err error, op string) error {
	var e *errs.Error
	if errors.As(err, &e) {
		c := *e
		c.Op = op
		return &c
	}
	return err
}
